package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/apooravmalik/tagbot/models"
)

var upgrader = websocket.Upgrader{}

// streamFrame is one websocket message during streamed generation. Exactly
// one of Delta, SQL, or Error is set per frame.
type streamFrame struct {
	Status string `json:"status,omitempty"`
	Delta  string `json:"delta,omitempty"`
	SQL    string `json:"sql,omitempty"`
	Done   bool   `json:"done,omitempty"`
	Error  string `json:"error,omitempty"`
}

// QueryStream generates a statement over a websocket, sending each model
// delta as it arrives. Parameters come in the query string: ?query=...
// and an optional &table=...
func (s *Server) QueryStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("query")
	if question == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter")
		return
	}

	table, err := s.resolveTable(r, queryRequest{Query: question, TableName: r.URL.Query().Get("table")})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	schema, err := s.dao.TableSchema(r.Context(), table)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrTableNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "err", err)
		return
	}
	defer conn.Close()

	lg := slog.With("query", question, "table", table)
	lg.Info("streaming generation")

	send := func(f streamFrame) error {
		return conn.WriteJSON(f)
	}

	if err := send(streamFrame{Status: "generating"}); err != nil {
		lg.Error("can't write to websocket", "err", err)
		return
	}

	focus := s.highlightFor(r.Context(), question, schema)

	gen, err := s.gen.GenerateStream(r.Context(), question, schema, focus, func(delta string) error {
		return send(streamFrame{Delta: delta})
	})
	if err != nil {
		lg.Error("can't stream generation", "err", err)
		send(streamFrame{Error: err.Error()})
		return
	}

	if s.cache != nil {
		if err := s.cache.Store(r.Context(), table, question, gen.SQL); err != nil {
			lg.Error("can't store sql cache", "err", err)
		}
	}

	lg.Info("generation done", "sql", gen.SQL)
	send(streamFrame{SQL: gen.SQL, Done: true})
}
