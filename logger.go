package pisearch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pisearch-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithIndex adds the index location to the logger.
func (l *Logger) WithIndex(location string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", location),
	}
}

// LogOpen logs opening an index.
func (l *Logger) LogOpen(ctx context.Context, digits int64, prefixDepth int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index opened",
			"digits", digits,
			"prefix_depth", prefixDepth,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, queryLen int, matches int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query_len", queryLen,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query_len", queryLen,
			"matches", matches,
			"elapsed", elapsed,
		)
	}
}

// LogBatchSearch logs a batch search.
func (l *Logger) LogBatchSearch(ctx context.Context, count int, err error) {
	if err != nil {
		l.WarnContext(ctx, "batch search failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch search completed",
			"count", count,
		)
	}
}

// LogWrite logs persisting an index.
func (l *Logger) LogWrite(ctx context.Context, digits int64, width int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write index failed",
			"digits", digits,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index written",
			"digits", digits,
			"suffix_width", width,
		)
	}
}

// LogClose logs closing an index.
func (l *Logger) LogClose(ctx context.Context, readers int, err error) {
	if err != nil {
		l.WarnContext(ctx, "close failed",
			"readers", readers,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index closed",
			"readers", readers,
		)
	}
}
