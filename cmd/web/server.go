package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/apooravmalik/tagbot/dataset"
	"github.com/apooravmalik/tagbot/models"
	"github.com/apooravmalik/tagbot/models/sqlcache"
	"github.com/apooravmalik/tagbot/retriever"
	"github.com/apooravmalik/tagbot/sqlgen"
	"github.com/apooravmalik/tagbot/web"
)

// noResultsResponse is the canned answer for a query that ran fine but
// matched nothing.
const noResultsResponse = "No results found for your query."

type Options struct {
	DatabaseURL   string
	RedisURL      string
	OllamaURL     string
	OllamaAPIKey  string
	GenModel      string
	EmbedModel    string
	DatasetBucket string
	S3Client      *s3.Client
}

func New(opts Options) (*Server, error) {
	examples, err := dataset.Default()
	if err != nil {
		return nil, fmt.Errorf("can't load training corpus: %w", err)
	}

	dao, err := models.New(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("can't create DAO: %w", err)
	}

	gen := sqlgen.New(sqlgen.Options{
		BaseURL:    opts.OllamaURL,
		APIKey:     opts.OllamaAPIKey,
		GenModel:   opts.GenModel,
		EmbedModel: opts.EmbedModel,
	})

	result := &Server{
		dao:      dao,
		gen:      gen,
		ret:      retriever.New(dao, gen),
		examples: examples,
		s3c:      opts.S3Client,
		bucket:   opts.DatasetBucket,
	}

	if opts.RedisURL != "" {
		rdb, err := models.ConnectValkey(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("can't connect to valkey: %w", err)
		}
		result.cache = sqlcache.New(rdb)
	}

	return result, nil
}

type Server struct {
	dao      *models.DAO
	cache    *sqlcache.Cache // nil when no redis URL is configured
	gen      *sqlgen.Client
	ret      *retriever.Retriever
	examples *dataset.Set
	s3c      *s3.Client
	bucket   string
}

func (s *Server) register(mux *http.ServeMux) {
	web.Mount(mux)
	mux.HandleFunc("/{$}", s.Index)
	mux.HandleFunc("/", s.NotFound)
	mux.HandleFunc("GET /healthz", s.Healthz)
	mux.HandleFunc("GET /tables", s.Tables)
	mux.HandleFunc("GET /schema/{table}", s.Schema)
	mux.HandleFunc("POST /schema/reindex", s.Reindex)
	mux.HandleFunc("POST /query", s.Query)
	mux.HandleFunc("GET /query/stream", s.QueryStream)
	mux.HandleFunc("GET /logs", s.Logs)
	mux.HandleFunc("GET /examples", s.Examples)
	mux.HandleFunc("GET /examples/{index}", s.ExampleByIndex)
	mux.HandleFunc("GET /examples.jsonl", s.ExamplesRaw)
	mux.HandleFunc("POST /dataset/export", s.ExportDataset)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("can't encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.Static, "static/index.html")
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.dao.ListTables(r.Context())
	if err != nil {
		slog.Error("can't list tables", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tables == nil {
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) Schema(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")

	schema, err := s.dao.TableSchema(r.Context(), table)
	if err != nil {
		if errors.Is(err, models.ErrTableNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("table %q not found in database", table))
			return
		}
		slog.Error("can't fetch schema", "table", table, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ret.Reindex(r.Context())
	if err != nil {
		slog.Error("can't rebuild schema index", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Cached statements may reference the old schema.
	if s.cache != nil {
		if err := s.cache.Invalidate(r.Context()); err != nil {
			slog.Error("can't invalidate sql cache", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"docs": docs})
}

type queryRequest struct {
	Query     string `json:"query"`
	TableName string `json:"table_name"`
}

type queryResponse struct {
	Query           string   `json:"query"`
	Table           string   `json:"table"`
	SQL             string   `json:"sql"`
	RelevantColumns []string `json:"relevant_columns,omitempty"`
	Response        string   `json:"response"`
	RowCount        int      `json:"row_count"`
	LogID           string   `json:"log_id"`
}

// resolveTable picks the target table: the explicit one from the request,
// or the retriever's best match when the request leaves it out.
func (s *Server) resolveTable(r *http.Request, req queryRequest) (string, error) {
	if req.TableName != "" {
		return req.TableName, nil
	}

	tables, err := s.ret.Retrieve(r.Context(), req.Query, 5)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", errors.New("no relevant table found; pass table_name or reindex the schema")
	}
	return tables[0], nil
}

func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	table, err := s.resolveTable(r, req)
	if err != nil {
		slog.Error("can't resolve table", "query", req.Query, "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	schema, err := s.dao.TableSchema(r.Context(), table)
	if err != nil {
		if errors.Is(err, models.ErrTableNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("table %q not found in database", table))
			return
		}
		slog.Error("can't fetch schema", "table", table, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lg := slog.With("query", req.Query, "table", table)

	focus := s.highlightFor(r.Context(), req.Query, schema)

	gen, fromCache, err := s.generateSQL(r, req.Query, schema, focus)
	if err != nil {
		lg.Error("can't generate SQL", "err", err)
		writeError(w, http.StatusInternalServerError, "SQL generation failed: "+err.Error())
		return
	}
	lg = lg.With("sql", gen.SQL, "cached", fromCache)
	lg.Info("generated SQL")

	// Recorded before execution so failed statements show up in the audit
	// trail too; the outcome lands via Update below.
	logEntry := &models.QueryLog{
		UUID:      uuid.Must(uuid.NewV7()).String(),
		Question:  req.Query,
		TableName: table,
		RawSQL:    gen.Raw,
		SQL:       gen.SQL,
		FromCache: fromCache,
	}
	if err := s.dao.QueryLogs().Create(logEntry); err != nil {
		lg.Error("can't record query log", "err", err)
	}

	_, rows, err := s.dao.RunQuery(r.Context(), gen.SQL)
	if err != nil {
		lg.Error("can't execute query", "err", err)
		logEntry.ErrorDetail = err.Error()
		if err := s.dao.QueryLogs().Update(logEntry); err != nil {
			lg.Error("can't update query log", "err", err)
		}
		writeError(w, http.StatusInternalServerError, "SQL execution error: "+err.Error())
		return
	}

	logEntry.RowCount = len(rows)
	logEntry.Succeeded = true

	response := noResultsResponse
	if len(rows) > 0 {
		rowsJSON, err := json.Marshal(rows)
		if err != nil {
			lg.Error("can't marshal result rows", "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		response, err = s.gen.Naturalize(r.Context(), string(rowsJSON))
		if err != nil {
			lg.Error("can't naturalize result", "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := s.dao.QueryLogs().Update(logEntry); err != nil {
		lg.Error("can't update query log", "err", err)
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:           req.Query,
		Table:           table,
		SQL:             gen.SQL,
		RelevantColumns: focus,
		Response:        response,
		RowCount:        logEntry.RowCount,
		LogID:           logEntry.UUID,
	})
}

// highlightFor picks the columns the generation prompt should concentrate
// on. Highlighting is advisory, so a failed primary-key lookup degrades to
// aspect matching alone.
func (s *Server) highlightFor(ctx context.Context, question string, schema models.TableSchema) []string {
	pk, err := s.dao.PrimaryKey(ctx, schema.TableName)
	if err != nil {
		slog.Error("can't look up primary key", "table", schema.TableName, "err", err)
	}
	return retriever.HighlightColumns(question, schema, pk)
}

// generateSQL consults the cache before asking the model, and feeds fresh
// statements back into it. Cache hits carry no raw form; only the
// standardized statement is stored.
func (s *Server) generateSQL(r *http.Request, question string, schema models.TableSchema, focus []string) (sqlgen.Generated, bool, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(r.Context(), schema.TableName, question)
		if err != nil {
			slog.Error("can't read sql cache", "err", err)
		} else if ok {
			return sqlgen.Generated{SQL: cached}, true, nil
		}
	}

	gen, err := s.gen.Generate(r.Context(), question, schema, focus)
	if err != nil {
		return sqlgen.Generated{}, false, err
	}

	if s.cache != nil {
		if err := s.cache.Store(r.Context(), schema.TableName, question, gen.SQL); err != nil {
			slog.Error("can't store sql cache", "err", err)
		}
	}
	return gen, false, nil
}

// Logs lists recent query audit records, newest first.
func (s *Server) Logs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	logs, err := s.dao.QueryLogs().Recent(limit, offset)
	if err != nil {
		slog.Error("can't list query logs", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []models.QueryLog{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "count": len(logs)})
}

func (s *Server) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    s.examples.Len(),
		"examples": s.examples.All(),
	})
}

func (s *Server) ExampleByIndex(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	ex, err := s.examples.At(i)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) ExamplesRaw(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := s.examples.WriteTo(w); err != nil {
		slog.Error("can't write corpus", "err", err)
	}
}
