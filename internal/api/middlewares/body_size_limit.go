package middlewares

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
)

// BodySizeLimit caps request bodies of mutating methods at limit bytes.
// A declared Content-Length over the limit is refused before the handler
// runs; anything else fails while the handler reads.
func BodySizeLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > limit {
					httpx.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"message": "Request body too large"})
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
