package services

import "context"

// Context keys are unexported struct types; values cannot collide across
// packages.
type (
	jobIDKey     struct{}
	phaseKey     struct{}
	sessionIDKey struct{}
)

// WithJobID annotates context with the export job identifier.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobIDFromContext extracts the export job identifier if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(jobIDKey{}).(int64)
	return id, ok
}

// WithPhase annotates context with the export phase name. Empty names leave
// the context untouched.
func WithPhase(ctx context.Context, phase string) context.Context {
	return withString(ctx, phaseKey{}, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, phaseKey{})
}

// WithSessionID annotates context with the export session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	return withString(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext extracts the export session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, sessionIDKey{})
}

func withString(ctx context.Context, key any, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
