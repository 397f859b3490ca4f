// Package log provides process-wide structured logging setup.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text-handler default logger at the given level.
// Unrecognized levels fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a logger scoped to the given module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
