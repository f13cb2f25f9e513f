// Package ctxlog carries a slog.Logger through a context.Context so that
// every layer of the engine — queue, pool, aspect manager, element,
// scheduler — logs through the same structured sink without threading a
// logger parameter through every call.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the slog.Logger in a context.Context.
var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. If none was attached,
// it falls back to slog.Default() rather than panicking, since engine
// packages (queue, pool, element) are usable as a library without a caller
// ever having called WithLogger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
