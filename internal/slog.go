package internal

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

var (
	// The current slog handler.
	Handler slog.Handler

	leveler = &slog.LevelVar{}
)

// InitSlog installs a JSON slog handler on stderr at the given level and
// registers a debug endpoint for changing the level at runtime.
func InitSlog(slogLevel string) {
	var programLevel slog.Level
	if err := (&programLevel).UnmarshalText([]byte(slogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %s: %v, using info\n", slogLevel, err)
		programLevel = slog.LevelInfo
	}
	leveler.Set(programLevel)

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     leveler,
	})
	slog.SetDefault(slog.New(h).With("program", filepath.Base(os.Args[0])))

	Handler = h

	http.HandleFunc("/debug/slog-level", slogLevelHandler)
}

// slogLevelHandler reports the current level on GET and switches it on
// POST, taking the new level as the request body.
func slogLevelHandler(w http.ResponseWriter, r *http.Request) {
	old := leveler.Level()

	if r.Method != http.MethodPost {
		fmt.Fprintln(w, old)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64))
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var level slog.Level
	if err := (&level).UnmarshalText(data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	leveler.Set(level)
	slog.Info("changed level", "from", old, "to", level)
	fmt.Fprintln(w, level)
}
