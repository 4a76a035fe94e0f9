package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/mealink-backend/internal/config"
)

// NewLogger builds the process logger for the named binary (server, pantry,
// cleanup) and installs it as the slog default. Every record carries the
// binary name and build version so logs from the CLI and the server can be
// told apart when they share a sink.
//
// Format "json" writes JSON; anything else writes text with source
// locations. Output goes to stderr so the pantry CLI keeps stdout clean.
func NewLogger(cfg config.LogConfig, binary string) *slog.Logger {
	logger := newLogger(os.Stderr, cfg, binary)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, cfg config.LogConfig, binary string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("app", appName),
		slog.String("bin", binary),
		slog.String("version", Build().Version),
	)
}

func parseLevel(s string) slog.Level {
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
