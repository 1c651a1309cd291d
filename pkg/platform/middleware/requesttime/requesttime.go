// Package requesttime stamps every request with a single "now" so a registration's
// createdAt, its outbox entry and its log lines agree on the same instant.
package requesttime

import (
	"net/http"
	"time"

	"sampad/pkg/requestcontext"
)

// Middleware captures the wall clock (UTC) once per request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock for tests.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
