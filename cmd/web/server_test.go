package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/apooravmalik/tagbot/models"
	"github.com/apooravmalik/tagbot/models/modelstest"
)

func makeServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	dbURL := modelstest.MaybeSpawnDB(t)

	s, err := New(Options{
		DatabaseURL: dbURL,
		GenModel:    "sql_gen",
		EmbedModel:  "nomic-embed-text",
	})
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	s.register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
	})

	return s, ts
}

func TestNew(t *testing.T) {
	makeServer(t)
}

func TestHealthz(t *testing.T) {
	_, ts := makeServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLogs(t *testing.T) {
	s, ts := makeServer(t)

	log := &models.QueryLog{
		UUID:      uuid.Must(uuid.NewV7()).String(),
		Question:  "Count responses by status.",
		TableName: "response",
		RawSQL:    "SELECT status, COUNT(*) as count FROM [response] GROUP BY status",
		SQL:       "SELECT status, COUNT(*) as count FROM response GROUP BY status;",
		Succeeded: true,
	}
	if err := s.dao.QueryLogs().Create(log); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/logs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Logs  []models.QueryLog `json:"logs"`
		Count int               `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count == 0 || len(body.Logs) == 0 {
		t.Fatal("expected at least one log entry")
	}
	if body.Logs[0].UUID != log.UUID {
		t.Errorf("expected newest entry first, got %q", body.Logs[0].UUID)
	}
	if body.Logs[0].RawSQL != log.RawSQL {
		t.Errorf("raw sql not preserved: %q", body.Logs[0].RawSQL)
	}
}

func TestSchemaNotFound(t *testing.T) {
	_, ts := makeServer(t)

	resp, err := http.Get(ts.URL + "/schema/no_such_table")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
