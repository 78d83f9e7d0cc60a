// Package middleware provides the HTTP middleware around the dispatcher.
package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Recovery returns a middleware that recovers from panics. The dispatcher
// already contains handler panics; this is the outer net for the
// middleware chain itself.
func Recovery(logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := debug.Stack()

					logger.Error("panic recovered",
						observability.String("path", r.URL.Path),
						observability.String("method", r.Method),
						observability.Any("error", err),
						observability.String("stack", string(stack)),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = io.WriteString(w, `{"message":"internal server error"}`)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
