package middleware

import (
	"net/http"
)

// DefaultMaxRequestBodySize bounds request bodies when no limit is configured.
const DefaultMaxRequestBodySize int64 = 1 << 20

// RequestSizeLimit caps the request body at maxBytes. Handlers that decode
// through httputil.DecodeJSON answer 413 once the cap is hit.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
