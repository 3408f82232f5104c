package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger stores logger in ctx. A nil logger stores the default logger.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// WithField returns ctx with a logger carrying one more string field.
func WithField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithSource tags log events with a source table: anchor, survey or registry.
func WithSource(ctx context.Context, source string) context.Context {
	return WithField(ctx, "source", source)
}

// WithPair tags log events with the source pair being resolved.
func WithPair(ctx context.Context, pair string) context.Context {
	return WithField(ctx, "pair", pair)
}

// WithPeak tags log events with an anchor peak id.
func WithPeak(ctx context.Context, peakID string) context.Context {
	return WithField(ctx, "peak_id", peakID)
}

// WithOperation tags log events with the pipeline stage.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}
