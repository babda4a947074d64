package middlewares

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/logging"
)

// Recovery turns a handler panic into the generic 500 body. Aborted
// responses keep unwinding so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}
			logging.From(r.Context()).WithFields(logrus.Fields{
				"panic": p,
				"stack": string(debug.Stack()),
			}).Errorf("recovered panic in %s %s", r.Method, r.URL.Path)

			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{
				"message": "Internal server error",
				"data":    map[string]any{},
			})
		}()
		next.ServeHTTP(w, r)
	})
}
