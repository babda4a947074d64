package books

import (
	"fmt"
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

func create(svc *service.BookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}

		book, err := svc.Create(r.Context(), service.CreateBookInput{
			ISBN:    req.ISBN,
			Title:   req.Title,
			Authors: req.Authors,
			Courses: req.Courses,
		})
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.Created(w, bookResponse{Message: "OK created", Book: book})
	}
}
