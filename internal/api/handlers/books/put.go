package books

import (
	"fmt"
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

// put replaces the course links of a book. Without a courses key the book
// is returned unchanged.
func put(svc *service.BookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req putRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}

		book, updated, err := svc.UpdateCourses(r.Context(), r.PathValue("id"), req.Courses)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		msg := "OK"
		if updated {
			msg = "Successfully updated book"
		}
		httpx.OK(w, bookResponse{Message: msg, Book: book})
	}
}
