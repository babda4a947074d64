// Package handlers holds the routes that belong to no resource.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello World v2"))
}

// Healthz reports whether the document store answers within two seconds.
func Healthz(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logging.From(r.Context()).WithError(err).Warn("health check: store unreachable")
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.OK(w, map[string]string{"status": "ok"})
	}
}
