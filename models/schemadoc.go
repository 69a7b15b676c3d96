package models

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingDim is the dimensionality of the schema description embeddings.
// It must match the output of the configured embedding model.
const EmbeddingDim = 768

// NewVector adapts a raw embedding to the pgvector column type.
func NewVector(v []float32) pgvector.Vector {
	return pgvector.NewVector(v)
}

// SchemaDoc is one entry in the schema vector index: either a table-level
// description (ColumnName empty) or a single column description. A fresh
// index is written wholesale by the reindex operation.
type SchemaDoc struct {
	gorm.Model
	TableName   string `gorm:"index"`
	ColumnName  string // empty for table-level docs
	Description string
	// The vector width in the tag must stay in sync with EmbeddingDim;
	// gorm struct tags can't reference constants.
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
}

// IsTableLevel reports whether the doc describes a whole table rather than
// one column.
func (d SchemaDoc) IsTableLevel() bool {
	return d.ColumnName == ""
}

type SchemaDocDAO struct {
	db *gorm.DB
}

func NewSchemaDocDAO(db *gorm.DB) *SchemaDocDAO {
	return &SchemaDocDAO{db: db}
}

// ReplaceAll swaps the whole index for a new set of docs in one
// transaction, so searches never observe a half-built index.
func (dao *SchemaDocDAO) ReplaceAll(docs []SchemaDoc) error {
	return dao.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&SchemaDoc{}).Error; err != nil {
			return fmt.Errorf("can't clear schema index: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		if err := tx.Create(&docs).Error; err != nil {
			return fmt.Errorf("can't write schema index: %w", err)
		}
		return nil
	})
}

// Nearest returns the limit docs closest to the query embedding by L2
// distance.
func (dao *SchemaDocDAO) Nearest(embedding []float32, limit int) ([]SchemaDoc, error) {
	var docs []SchemaDoc
	err := dao.db.
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []any{pgvector.NewVector(embedding)}},
		}).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("can't search schema index: %w", err)
	}
	return docs, nil
}

// Count returns the number of docs in the index.
func (dao *SchemaDocDAO) Count() (int64, error) {
	var count int64
	err := dao.db.Model(&SchemaDoc{}).Count(&count).Error
	return count, err
}
