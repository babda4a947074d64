package books

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

func list(svc *service.BookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		books, err := svc.List(r.Context(), q.Get("subject"), q.Get("course_num"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"books": books})
	}
}

func get(svc *service.BookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, bookResponse{Book: book})
	}
}
