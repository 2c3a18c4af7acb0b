package core

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// WithLogger attaches a request-scoped logger to the context.
func WithLogger(parent context.Context, log *zap.Logger) context.Context {
	return context.WithValue(parent, loggerKey{}, log)
}

// WithRequestLogger derives a logger tagged with the request id and
// attaches it.
func WithRequestLogger(parent context.Context, base *zap.Logger, requestID string) context.Context {
	return WithLogger(parent, base.With(zap.String("req", requestID)))
}

// Logger returns the context's logger, or a no-op logger when none was
// attached.
func Logger(ctx context.Context) *zap.Logger {
	if log, ok := FromContext(ctx); ok {
		return log
	}
	return zap.NewNop()
}

// FromContext returns the logger attached to the context, if any.
// Callers that hold their own fallback logger use this instead of
// Logger.
func FromContext(ctx context.Context) (*zap.Logger, bool) {
	log, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	return log, ok
}
