// Package modelstest spawns throwaway postgres instances for tests that
// need a real database.
package modelstest

import (
	"fmt"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/apooravmalik/tagbot/internal"
)

func init() {
	internal.UnbreakDocker()
}

const (
	postgresDB       = "tagbot"
	postgresUser     = "tagbot"
	postgresPassword = "hunter2"
)

// MaybeSpawnDB returns a postgres URL for the test to use: DATABASE_URL
// when set, otherwise a fresh container with the pgvector extension
// available. Tests skip when neither is possible.
func MaybeSpawnDB(t *testing.T) string {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		if os.Getenv("USE_TEST_CONTAINERS") == "" {
			t.Skip("test requires test containers")
			return ""
		}

		testcontainers.SkipIfProviderIsNotHealthy(t)

		req := testcontainers.ContainerRequest{
			// SchemaDoc embeddings need the vector extension, which the
			// stock postgres image doesn't ship.
			Image:      "pgvector/pgvector:pg17",
			WaitingFor: wait.ForLog("database system is ready to accept connections"),
			Env: map[string]string{
				"POSTGRES_DB":       postgresDB,
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
			},
		}
		postgresC, err := testcontainers.GenericContainer(t.Context(), testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		testcontainers.CleanupContainer(t, postgresC)
		if err != nil {
			t.Fatal(err)
		}

		containerIP, err := postgresC.ContainerIP(t.Context())
		if err != nil {
			t.Fatal(err)
		}

		dbURL = fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=disable", postgresUser, postgresPassword, containerIP, postgresDB)
	}

	return dbURL
}
