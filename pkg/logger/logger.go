// Package logger wraps log/slog with the level and format switches the
// CLI exposes through configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

type options struct {
	level  slog.Level
	output io.Writer
	format string // "json" or "text"
}

// Option tweaks the logger built by New.
type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) {
		o.level = ParseLevel(level)
	}
}

func WithFormat(format string) Option {
	return func(o *options) {
		o.format = strings.ToLower(format)
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// New builds a logger writing text at WARN to stderr unless overridden.
func New(opts ...Option) *Logger {
	o := &options{
		level:  slog.LevelWarn,
		output: os.Stderr,
		format: "text",
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}
	var handler slog.Handler
	switch o.format {
	case "json":
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	default:
		handler = slog.NewTextHandler(o.output, handlerOpts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(WithOutput(io.Discard))
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a slog level.
// Unknown strings map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
