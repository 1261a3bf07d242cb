// Package mlog configures the zerolog logger the rest of the
// simulator writes through, tagging every line with a per-run ID so
// separate invocations interleaved in the same terminal or log
// aggregator can be told apart.
package mlog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds a logger at the given level ("trace".."error"), writing
// either a console-pretty stream (format == "console") or raw JSON
// lines (anything else) to w, stamped with a fresh run ID.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

// Default returns a console logger at info level writing to stderr,
// for callers that have not yet loaded a config.
func Default() zerolog.Logger {
	return New(os.Stderr, "info", "console")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && (fi.Mode()&os.ModeCharDevice) != 0
}
