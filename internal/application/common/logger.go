package common

import (
	"context"
	"log/slog"
)

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return noOpLogger
}

// noOpLogger discards everything (fallback when no logger in context)
var noOpLogger = slog.New(slog.DiscardHandler)

// HasLogger reports whether ctx carries a logger
func HasLogger(ctx context.Context) bool {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	return ok && logger != nil
}
