// Package retriever maps natural-language questions onto the database
// schema: it keeps a vector index of table and column descriptions and
// picks the tables and columns a question is most likely about.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apooravmalik/tagbot/models"
)

// Embedder produces one vector per input text. Satisfied by
// *sqlgen.Client.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever answers "which tables does this question concern" using the
// SchemaDoc vector index.
type Retriever struct {
	dao      *models.DAO
	embedder Embedder

	// PriorityTable, when set, is moved to the front of every result. The
	// incident log dominates real query traffic, so ties break toward it.
	PriorityTable string
}

func New(dao *models.DAO, embedder Embedder) *Retriever {
	return &Retriever{
		dao:           dao,
		embedder:      embedder,
		PriorityTable: "incident",
	}
}

// Retrieve returns up to topK distinct table names ordered by relevance to
// the question.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	embs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}

	docs, err := r.dao.SchemaDocs().Nearest(embs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}

	var priority, rest []string
	seen := map[string]bool{}
	for _, doc := range docs {
		if seen[doc.TableName] {
			continue
		}
		seen[doc.TableName] = true
		if doc.TableName == r.PriorityTable {
			priority = append(priority, doc.TableName)
		} else {
			rest = append(rest, doc.TableName)
		}
	}

	tables := append(priority, rest...)
	if len(tables) > topK {
		tables = tables[:topK]
	}
	return tables, nil
}

// Reindex rebuilds the vector index from the live schema: one doc per
// table plus one per column, embedded in a single batch and swapped in
// atomically.
func (r *Retriever) Reindex(ctx context.Context) (int, error) {
	tables, err := r.dao.ListTables(ctx)
	if err != nil {
		return 0, fmt.Errorf("retriever: %w", err)
	}

	var docs []models.SchemaDoc
	var texts []string
	for _, table := range tables {
		schema, err := r.dao.TableSchema(ctx, table)
		if err != nil {
			return 0, fmt.Errorf("retriever: %w", err)
		}

		desc := describeTable(schema)
		docs = append(docs, models.SchemaDoc{TableName: table, Description: desc})
		texts = append(texts, desc)

		for _, col := range schema.Columns {
			colDesc := fmt.Sprintf("%s.%s (%s)", table, col.Name, col.Type)
			docs = append(docs, models.SchemaDoc{TableName: table, ColumnName: col.Name, Description: colDesc})
			texts = append(texts, colDesc)
		}
	}

	embs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("retriever: embed schema docs: %w", err)
	}
	for i := range docs {
		docs[i].Embedding = models.NewVector(embs[i])
	}

	if err := r.dao.SchemaDocs().ReplaceAll(docs); err != nil {
		return 0, fmt.Errorf("retriever: %w", err)
	}

	slog.Info("schema index rebuilt", "tables", len(tables), "docs", len(docs))
	return len(docs), nil
}

func describeTable(schema models.TableSchema) string {
	cols := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		cols[i] = fmt.Sprintf("%s (%s)", col.Name, col.Type)
	}
	return fmt.Sprintf("Table: %s. Columns: %s.", schema.TableName, strings.Join(cols, ", "))
}
