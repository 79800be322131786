package middleware

import (
	"net/http"

	"github.com/loquent-ai/loquent/internal/api"
)

// MaxBodyBytes caps the request body at limit bytes. Oversized declared
// lengths are rejected up front; chunked bodies are bounded by a
// MaxBytesReader so handlers fail on read instead.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				if r.ContentLength != -1 && r.ContentLength > limit {
					api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
