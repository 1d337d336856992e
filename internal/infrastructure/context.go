package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateRunID creates a new unique run ID using UUID v4
func GenerateRunID() string {
	return uuid.New().String()
}

// EnsureRunID returns ctx carrying a run ID, generating one if needed,
// together with that ID.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := GenerateRunID()
	return WithTraceID(ctx, id), id
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
