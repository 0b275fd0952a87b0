package services

import "context"

type contextKey int

const (
	cycleIDKey contextKey = iota
	stageKey
	requestIDKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func valueFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithCycleID tags ctx with the wake cycle correlation id. Empty ids are
// ignored.
func WithCycleID(ctx context.Context, id string) context.Context {
	return withValue(ctx, cycleIDKey, id)
}

// CycleIDFromContext returns the wake cycle id carried by ctx.
func CycleIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, cycleIDKey)
}

// WithStage tags ctx with the controller stage currently executing.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, stageKey)
}

// WithRequestID tags ctx with the id of a single outbound API call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueFrom(ctx, requestIDKey)
}
