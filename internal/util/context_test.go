package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestTraceIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	ctx = ContextWithTraceID(ctx, "trace-abc")
	assert.Equal(t, "trace-abc", TraceIDFromContext(ctx))
}

func TestRouteContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RouteFromContext(ctx))

	ctx = ContextWithRoute(ctx, "/content/sites/{id}")
	assert.Equal(t, "/content/sites/{id}", RouteFromContext(ctx))
}

func TestStartTimeContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, StartTimeFromContext(ctx).IsZero())

	start := time.Now().Add(-time.Second)
	ctx = ContextWithStartTime(ctx, start)
	assert.Equal(t, start, StartTimeFromContext(ctx))
}

func TestRouteInfoHolder(t *testing.T) {
	t.Parallel()

	assert.Nil(t, RouteInfoFromContext(context.Background()))

	info := &RouteInfo{}
	ctx := ContextWithRouteInfo(context.Background(), info)

	// The dispatcher mutates the holder in place; readers that captured the
	// pointer before the handler ran observe the resolved pattern.
	RouteInfoFromContext(ctx).Pattern = "/content/sites/{siteId}"
	assert.Equal(t, "/content/sites/{siteId}", info.Pattern)
}

func TestContextValuesDoNotCollide(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithTraceID(ctx, "trace-1")
	ctx = ContextWithRoute(ctx, "/a/{id}")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "trace-1", TraceIDFromContext(ctx))
	assert.Equal(t, "/a/{id}", RouteFromContext(ctx))

	// A string-typed key with the same value must not leak through.
	leaky := context.WithValue(context.Background(), "request_id", "spoofed") //nolint:staticcheck
	assert.Empty(t, RequestIDFromContext(leaky))
}
