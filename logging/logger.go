// Package logging wraps slog with field names and helpers used across the cache.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with cache-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithComponent tags every record with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogReject logs a payload refused by the size guard or the byte budget.
func (l *Logger) LogReject(ctx context.Context, key string, size, limit int64, reason string) {
	l.WarnContext(ctx, "artifact not cached",
		"key", key,
		"bytes", size,
		"limit", limit,
		"reason", reason,
	)
}

// LogEviction logs a capacity eviction batch.
func (l *Logger) LogEviction(ctx context.Context, evicted, remaining int, reason string) {
	l.DebugContext(ctx, "evicted oldest entries",
		"evicted", evicted,
		"remaining", remaining,
		"reason", reason,
	)
}

// LogSweep logs one pass of the expiry sweeper.
func (l *Logger) LogSweep(ctx context.Context, removed, remaining int, took time.Duration) {
	if removed > 0 {
		l.InfoContext(ctx, "sweep removed expired entries",
			"removed", removed,
			"remaining", remaining,
			"took", took,
		)
		return
	}
	l.DebugContext(ctx, "sweep completed",
		"remaining", remaining,
		"took", took,
	)
}

// LogBulk logs a bulk render request.
func (l *Logger) LogBulk(ctx context.Context, id string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bulk render failed",
			"bulk_id", id,
			"count", count,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "bulk render completed",
		"bulk_id", id,
		"count", count,
	)
}
