package util

import (
	"context"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyTraceID   ctxKey = "trace_id"
	ctxKeyStartTime ctxKey = "start_time"
	ctxKeyRoute     ctxKey = "route"
	ctxKeyRouteInfo ctxKey = "route_info"
)

// RouteInfo is a mutable holder seeded into the request context by outer
// middleware and filled in by the dispatcher once the route is resolved.
// Context values only flow downward, so middleware that needs the matched
// pattern after the handler returns reads it back through this holder.
type RouteInfo struct {
	Pattern string
}

// ContextWithRouteInfo seeds a RouteInfo holder into the context.
func ContextWithRouteInfo(ctx context.Context, info *RouteInfo) context.Context {
	return context.WithValue(ctx, ctxKeyRouteInfo, info)
}

// RouteInfoFromContext returns the RouteInfo holder, or nil if none was seeded.
func RouteInfoFromContext(ctx context.Context) *RouteInfo {
	if v, ok := ctx.Value(ctxKeyRouteInfo).(*RouteInfo); ok {
		return v
	}
	return nil
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// ContextWithTraceID adds a trace ID to the context.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKeyTraceID, traceID)
}

// TraceIDFromContext extracts the trace ID from context.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTraceID).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds a start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// ContextWithRoute adds the matched route pattern to the context.
func ContextWithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// RouteFromContext extracts the matched route pattern from context.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok {
		return v
	}
	return ""
}
