package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a request when no explicit timeout is given.
// LLM-backed endpoints are the slowest path, so the default is generous.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on each request. The request context is
// cancelled at the deadline so downstream database and provider calls abort,
// and http.TimeoutHandler guarantees the client gets a response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		inner := http.TimeoutHandler(next, timeout, "Request Timeout")
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			inner.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
