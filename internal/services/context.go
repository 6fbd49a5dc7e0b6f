package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	networkIDKey contextKey = "network_id"
)

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithNetworkID annotates context with the Dashboard network being rebooted.
func WithNetworkID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, networkIDKey, id)
}

// NetworkIDFromContext returns the network identifier if present.
func NetworkIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(networkIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
