package middlewares

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/logging"
)

type rtWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
	status      int
	bytes       int
}

func (w *rtWriter) stamp() {
	if !w.wroteHeader {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
		w.wroteHeader = true
	}
}

func (w *rtWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
	}
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *rtWriter) Write(b []byte) (int, error) {
	w.stamp()
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *rtWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// AccessLog puts a request scoped logger into the context, stamps
// X-Response-Time and logs one line per request. It must run inside
// RequestID.
func AccessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := log.WithFields(logrus.Fields{
				"request_id": GetRequestID(r),
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			r = r.WithContext(logging.WithLogger(r.Context(), entry))

			rw := &rtWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
			next.ServeHTTP(rw, r)

			// Nothing written (e.g. HEAD): set it now.
			if !rw.wroteHeader {
				rw.Header().Set("X-Response-Time", time.Since(rw.start).String())
			}

			fields := logrus.Fields{
				"status":   rw.status,
				"bytes":    rw.bytes,
				"duration": time.Since(rw.start).String(),
			}
			switch {
			case rw.status >= http.StatusInternalServerError:
				entry.WithFields(fields).Error("request")
			case rw.status >= http.StatusBadRequest:
				entry.WithFields(fields).Warn("request")
			default:
				entry.WithFields(fields).Info("request")
			}
		})
	}
}
