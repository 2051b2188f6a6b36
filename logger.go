package svscore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the structured fields this module's
// operations emit.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, uses a text handler to stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger creates a Logger that discards all log output. The default
// when a component is constructed without an explicit logger option.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogSearch logs one engine Search call.
func (l *Logger) LogSearch(ctx context.Context, q, k int, tiles int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed", "queries", q, "k", k, "error", err)
		return
	}
	l.DebugContext(ctx, "search completed", "queries", q, "k", k, "data_tiles", tiles)
}

// LogCompact logs one Compact call.
func (l *Logger) LogCompact(ctx context.Context, n, m int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compact failed", "n", n, "m", m, "error", err)
		return
	}
	l.DebugContext(ctx, "compact completed", "n", n, "m", m)
}

// LogLoad logs a dataset load from a loader tag.
func (l *Logger) LogLoad(ctx context.Context, tag string, n, dim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed", "tag", tag, "error", err)
		return
	}
	l.InfoContext(ctx, "load completed", "tag", tag, "n", n, "dimensions", dim)
}

// LogThreadResize logs a thread pool resize request.
func (l *Logger) LogThreadResize(ctx context.Context, requested, applied int, err error) {
	if err != nil {
		l.WarnContext(ctx, "thread resize rejected", "requested", requested, "error", err)
		return
	}
	l.DebugContext(ctx, "thread resize applied", "requested", requested, "applied", applied)
}
