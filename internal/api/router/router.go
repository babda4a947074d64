package router

import (
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/handlers"
	"github.com/5w1tchy/textbooks-api/internal/api/handlers/books"
	"github.com/5w1tchy/textbooks-api/internal/api/handlers/courses"
	"github.com/5w1tchy/textbooks-api/internal/api/handlers/listings"
	"github.com/5w1tchy/textbooks-api/internal/api/handlers/users"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

// Router maps every route to its handler. Middlewares are applied by the
// caller.
func Router(svcs *service.Services, store handlers.Pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.RootHandler)
	mux.Handle("GET /healthz", handlers.Healthz(store))

	books.Mount(mux, svcs.Books)
	courses.Mount(mux, svcs.Courses)
	listings.Mount(mux, svcs.Listings)
	users.Mount(mux, svcs.Users)

	return mux
}
