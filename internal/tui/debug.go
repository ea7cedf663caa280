package tui

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newDebugLogger returns a logger writing to the file named by
// CYBERORGANISM_DEBUG_LOG, or a discarding logger when the variable is
// unset. Debug logging must never reach the terminal while the
// alternate screen is active.
func newDebugLogger() *slog.Logger {
	path := strings.TrimSpace(os.Getenv("CYBERORGANISM_DEBUG_LOG"))
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
