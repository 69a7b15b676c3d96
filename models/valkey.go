package models

import (
	valkey "github.com/redis/go-redis/v9"
)

// ConnectValkey opens a client against the Valkey/Redis instance backing
// the generated-SQL cache.
func ConnectValkey(valkeyURL string) (*valkey.Client, error) {
	opts, err := valkey.ParseURL(valkeyURL)
	if err != nil {
		return nil, err
	}

	return valkey.NewClient(opts), nil
}
