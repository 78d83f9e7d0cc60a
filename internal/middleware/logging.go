package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// AccessLog returns a middleware that writes one structured log line per
// request after it completes. The route field carries the matched pattern
// published by the dispatcher, not the raw path, so log volume stays
// bounded per route.
func AccessLog(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := util.ContextWithStartTime(r.Context(), start)

			info := util.RouteInfoFromContext(ctx)
			if info == nil {
				info = &util.RouteInfo{}
				ctx = util.ContextWithRouteInfo(ctx, info)
			}
			r = r.WithContext(ctx)

			rw := util.NewStatusCapturingResponseWriter(w)
			next.ServeHTTP(rw, r)

			logger.Info("http request",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("route", info.Pattern),
				observability.String("query", r.URL.RawQuery),
				observability.Int("status", rw.StatusCode),
				observability.Int("size", rw.BytesWritten),
				observability.Duration("duration", time.Since(start)),
				observability.String("remote_addr", r.RemoteAddr),
				observability.String("user_agent", r.UserAgent()),
				observability.String("request_id", util.RequestIDFromContext(r.Context())),
			)
		})
	}
}
