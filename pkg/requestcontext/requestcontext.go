// Package requestcontext carries per-request values that cross layer
// boundaries: the request ID assigned by middleware and an injectable clock
// so services stay deterministic under test.
package requestcontext

import (
	"context"
	"time"
)

type requestIDKey struct{}

type clockKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID from the context, or "" when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClock pins the context's notion of "now". Tests use this to freeze time.
func WithClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

// Now returns the context clock's current time, falling back to time.Now.
func Now(ctx context.Context) time.Time {
	if clock, ok := ctx.Value(clockKey{}).(func() time.Time); ok {
		return clock()
	}
	return time.Now()
}
