// Package wprslog builds the leveled, component-tagged *slog.Logger used
// throughout this module: a text handler at slog.LevelInfo, switched to
// slog.LevelDebug by a DEBUG environment variable, with every logger tagged
// via slog.With("component", ...) so log lines can be scoped to a subsystem.
package wprslog

import (
	"log/slog"
	"os"
)

// New returns a text-handler logger at slog.LevelInfo, or slog.LevelDebug if
// the DEBUG environment variable is set, tagged with "component": name.
func New(component string) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	base := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return base.With("component", component)
}

// Discard returns a logger that drops everything, for tests and library
// callers that don't want wprs writing to stderr on their behalf.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
