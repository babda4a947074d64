// Package books serves /books.
package books

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/service"
)

func Mount(mux *http.ServeMux, svc *service.BookService) {
	mux.Handle("GET /books", list(svc))
	mux.Handle("POST /books", create(svc))
	mux.Handle("GET /books/{id}", get(svc))
	mux.Handle("PUT /books/{id}", put(svc))
	mux.Handle("DELETE /books/{id}", remove(svc))
}
