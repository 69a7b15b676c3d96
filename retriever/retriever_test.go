package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/apooravmalik/tagbot/models"
	"github.com/apooravmalik/tagbot/models/modelstest"
)

// fakeEmbedder collapses every text onto one of a few fixed directions so
// retrieval is deterministic without a real embedding model.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, models.EmbeddingDim)
		switch {
		case strings.Contains(strings.ToLower(text), "incident"):
			v[0] = 1
		case strings.Contains(strings.ToLower(text), "response"):
			v[1] = 1
		default:
			v[2] = 1
		}
		out[i] = v
	}
	return out, nil
}

func makeRetriever(t *testing.T) (*Retriever, *models.DAO) {
	t.Helper()

	dao, err := models.New(modelstest.MaybeSpawnDB(t))
	if err != nil {
		t.Fatal(err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS incident (id SERIAL PRIMARY KEY, status TEXT, created_at TIMESTAMP)`,
		`CREATE TABLE IF NOT EXISTS response (id SERIAL PRIMARY KEY, incident_id INT, status TEXT)`,
	} {
		if err := dao.DB().Exec(stmt).Error; err != nil {
			t.Fatal(err)
		}
	}

	return New(dao, fakeEmbedder{}), dao
}

func TestReindexAndRetrieve(t *testing.T) {
	r, dao := makeRetriever(t)
	ctx := t.Context()

	docs, err := r.Reindex(ctx)
	if err != nil {
		t.Fatal(err)
	}

	count, err := dao.SchemaDocs().Count()
	if err != nil {
		t.Fatal(err)
	}
	if int64(docs) != count {
		t.Fatalf("Reindex reported %d docs, index has %d", docs, count)
	}

	// incident: table doc + 3 columns, response: table doc + 3 columns,
	// plus docs for the DAO's own tables.
	if count < 8 {
		t.Fatalf("expected at least 8 docs, got %d", count)
	}

	tables, err := r.Retrieve(ctx, "Show open incidents", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) == 0 || tables[0] != "incident" {
		t.Fatalf("expected incident first, got %v", tables)
	}
}

func TestRetrievePrioritizesIncidentTable(t *testing.T) {
	r, dao := makeRetriever(t)
	ctx := t.Context()

	embed := func(text string) []float32 {
		embs, err := fakeEmbedder{}.Embed(ctx, []string{text})
		if err != nil {
			t.Fatal(err)
		}
		return embs[0]
	}

	docs := []models.SchemaDoc{
		{TableName: "response", Description: "Table: response.", Embedding: models.NewVector(embed("response"))},
		{TableName: "workflow", Description: "Table: workflow.", Embedding: models.NewVector(embed("workflow"))},
		{TableName: "incident", Description: "Table: incident.", Embedding: models.NewVector(embed("incident"))},
	}
	if err := dao.SchemaDocs().ReplaceAll(docs); err != nil {
		t.Fatal(err)
	}

	// The response doc sits closest to this query, but the incident table
	// still wins whenever it shows up in the candidate set.
	tables, err := r.Retrieve(ctx, "responses for this response", 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(tables) != 3 {
		t.Fatalf("expected 3 tables, got %v", tables)
	}
	if tables[0] != "incident" {
		t.Errorf("incident should be first, got %v", tables)
	}
	if tables[1] != "response" {
		t.Errorf("response should follow, got %v", tables)
	}
}
