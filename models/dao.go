package models

import (
	"fmt"
	"log/slog"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// migrationLockID is the advisory lock key guarding schema migrations so
// that multiple replicas starting at once don't race AutoMigrate.
const migrationLockID = 48291

type DAO struct {
	db *gorm.DB
}

func (d *DAO) DB() *gorm.DB {
	return d.db
}

// QueryLogs returns the DAO for generated-query audit records.
func (d *DAO) QueryLogs() *QueryLogDAO {
	return NewQueryLogDAO(d.db)
}

// SchemaDocs returns the DAO for the schema vector index.
func (d *DAO) SchemaDocs() *SchemaDocDAO {
	return NewSchemaDocDAO(d.db)
}

func New(dbURL string) (*DAO, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: slogGorm.New(
			slogGorm.WithErrorField("err"),
			slogGorm.WithRecordNotFoundError(),
			slogGorm.SetLogLevel(slogGorm.DefaultLogType, slog.LevelDebug),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// SchemaDoc embeddings need the pgvector extension before migration.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("can't enable pgvector extension: %w", err)
	}

	// Use advisory lock to prevent concurrent migrations with exponential backoff
	var lockResult bool
	backoff := 125 * time.Millisecond
	maxRetries := 5

	for attempt := 0; attempt < maxRetries; attempt++ {
		err = db.Raw("SELECT pg_try_advisory_lock(?)", migrationLockID).Scan(&lockResult).Error
		if err != nil {
			return nil, fmt.Errorf("can't acquire migration lock: %w", err)
		}

		if lockResult {
			break
		}

		if attempt < maxRetries-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	if !lockResult {
		return nil, fmt.Errorf("failed to acquire migration lock after %d attempts", maxRetries)
	}

	defer func() {
		db.Raw("SELECT pg_advisory_unlock(?)", migrationLockID)
	}()

	if err := db.AutoMigrate(&QueryLog{}, &SchemaDoc{}); err != nil {
		return nil, fmt.Errorf("can't run migrations: %w", err)
	}

	return &DAO{
		db: db,
	}, nil
}
