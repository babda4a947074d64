package books

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

func remove(svc *service.BookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"book": book})
	}
}
