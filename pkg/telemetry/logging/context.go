package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// SweepIDKey is the context key for the sweep report identifier.
	SweepIDKey contextKey = "sweep_id"

	// TriggerKey is the context key for what started a sweep
	// ("manual", "schedule", "start", "reload").
	TriggerKey contextKey = "trigger"

	// SourceKey is the context key for the record source description.
	SourceKey contextKey = "source"
)

// WithSweepID adds a sweep identifier to the context.
func WithSweepID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SweepIDKey, id)
}

// GetSweepID retrieves the sweep identifier from the context.
func GetSweepID(ctx context.Context) string {
	if id, ok := ctx.Value(SweepIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTrigger adds a sweep trigger to the context.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerKey, trigger)
}

// GetTrigger retrieves the sweep trigger from the context.
func GetTrigger(ctx context.Context) string {
	if trigger, ok := ctx.Value(TriggerKey).(string); ok {
		return trigger
	}
	return ""
}

// WithSource adds a source description to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the source description from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if id := GetSweepID(ctx); id != "" {
		fields = append(fields, string(SweepIDKey), id)
	}
	if trigger := GetTrigger(ctx); trigger != "" {
		fields = append(fields, string(TriggerKey), trigger)
	}
	if source := GetSource(ctx); source != "" {
		fields = append(fields, string(SourceKey), source)
	}

	return fields
}
