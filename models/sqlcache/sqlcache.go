// Package sqlcache stores standardized SQL statements in Valkey keyed by
// the (table, question) pair that produced them, so repeated questions skip
// the generation model entirely.
package sqlcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	valkey "github.com/redis/go-redis/v9"
)

const keyPrefix = "tagbot:sql:"

// DefaultTTL bounds how long a generated statement stays valid. Schema
// changes land within this window without an explicit invalidation.
const DefaultTTL = 300 * time.Second

// New constructs a Cache on an already configured Valkey client.
func New(rdb *valkey.Client) *Cache {
	return &Cache{rdb: rdb, ttl: DefaultTTL}
}

type Cache struct {
	rdb *valkey.Client
	ttl time.Duration
}

func key(table, question string) string {
	h := sha256.New()
	h.Write([]byte(table))
	h.Write([]byte{0})
	h.Write([]byte(question))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached statement for the question, if any. A miss is not
// an error.
func (c *Cache) Get(ctx context.Context, table, question string) (string, bool, error) {
	res, err := c.rdb.Get(ctx, key(table, question)).Result()
	if err == valkey.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return res, true, nil
}

// Store caches the standardized statement for the question.
func (c *Cache) Store(ctx context.Context, table, question, sql string) error {
	return c.rdb.Set(ctx, key(table, question), sql, c.ttl).Err()
}

// Invalidate drops every cached statement. Called after a schema reindex.
func (c *Cache) Invalidate(ctx context.Context) error {
	var (
		cursor uint64
		keys   []string
	)
	for {
		var (
			k   []string
			err error
		)
		k, cursor, err = c.rdb.Scan(ctx, cursor, keyPrefix+"*", 0).Result()
		if err != nil {
			return err
		}
		keys = append(keys, k...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if _, err := c.rdb.Del(ctx, keys...).Result(); err != nil {
			return err
		}
	}
	return nil
}
