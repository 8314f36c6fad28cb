package logctx

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug|info|warn|error (case-insensitive) to a level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger on w with context decoration. Servers pass
// stderr here; stdout carries the protocol.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}
