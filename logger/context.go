package logger

import "context"

// Ambient context fields ride on a context.Context, the Go carrier for
// per-request and per-task state. Deriving a context with Context is
// the scoped acquisition: the parent context is the restore token, and
// restoration on every exit path is lexical. Nested derivations compose
// LIFO, and independent flows never observe each other's fields.

type contextKey struct{}

// Context returns a context carrying the parent's ambient fields merged
// with the given key-value pairs (given pairs win on collision).
func Context(ctx context.Context, kv ...any) context.Context {
	parent := FromContext(ctx)
	merged := make(map[string]any, len(parent)+len(kv)/2)
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range kwargsFromKV(kv) {
		merged[k] = v
	}
	return context.WithValue(ctx, contextKey{}, merged)
}

// FromContext returns the ambient fields carried by ctx. The returned
// map must be treated as read-only; it may be shared.
func FromContext(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	return fields
}

// snapshotContext copies the ambient fields into a record-owned map.
func snapshotContext(ctx context.Context) map[string]any {
	fields := FromContext(ctx)
	snap := make(map[string]any, len(fields))
	for k, v := range fields {
		snap[k] = v
	}
	return snap
}
