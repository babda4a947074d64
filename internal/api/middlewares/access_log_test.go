package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/5w1tchy/textbooks-api/internal/api/middlewares"
	"github.com/5w1tchy/textbooks-api/internal/logging"
)

func TestAccessLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		logging.From(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	wrapped := mw.RequestID(mw.AccessLog(log)(handler))

	req := httptest.NewRequest("GET", "/books", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "rid-1", entries[0].Data["request_id"])
	assert.Equal(t, http.StatusTeapot, entries[1].Data["status"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
}

func TestAccessLog_StampsWithoutWrite(t *testing.T) {
	log, _ := test.NewNullLogger()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("HEAD", "/", nil)
	rec := httptest.NewRecorder()
	mw.AccessLog(log)(handler).ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
}
