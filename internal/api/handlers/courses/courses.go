// Package courses serves the read-only /courses routes.
package courses

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

func Mount(mux *http.ServeMux, svc *service.CourseService) {
	mux.Handle("GET /courses", list(svc))
	mux.Handle("GET /courses/{id}", get(svc))
	mux.Handle("GET /courses/{subject}/{number}", byCode(svc))
}

func list(svc *service.CourseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		courses, err := svc.List(r.Context(), q.Get("subject"), q.Get("course_num"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"courses": courses})
	}
}

func get(svc *service.CourseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"course": course})
	}
}

func byCode(svc *service.CourseService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course, err := svc.GetByCode(r.Context(), r.PathValue("subject"), r.PathValue("number"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"course": course})
	}
}
