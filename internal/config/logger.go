package config

import (
	"io"
	"log/slog"
)

// NewLogger builds a slog.Logger for the configured level and format.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return NewLogger(c.Log.Level, c.Log.Format, w)
}

// NewLogger creates an isolated logger; unknown levels fall back to info.
func NewLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
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

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
