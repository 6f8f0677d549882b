package middleware

import "net/http"

// DefaultMaxRequestSize caps request bodies at 1 MiB. Essays and journal
// entries are the largest payloads and stay well under this.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize bounds the request body. Oversized Content-Length is
// rejected up front; chunked bodies are cut off by MaxBytesReader as the
// handler reads them.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
