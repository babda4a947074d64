// Package users serves /users.
package users

import (
	"fmt"
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

type createRequest struct {
	FirebaseID  string `json:"firebaseId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type wishlistRequest struct {
	BookIDs *[]string `json:"bookIds"`
}

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user"`
}

func Mount(mux *http.ServeMux, svc *service.UserService) {
	mux.Handle("GET /users", list(svc))
	mux.Handle("POST /users", create(svc))
	mux.Handle("GET /users/{id}", get(svc))
	mux.Handle("PUT /users/{id}", put(svc))
	mux.Handle("DELETE /users/{id}", remove(svc))
}

func list(svc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context(), r.URL.Query().Get("firebaseId"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"users": users})
	}
}

func get(svc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, userResponse{User: u})
	}
}

func create(svc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}
		u, err := svc.Create(r.Context(), service.CreateUserInput{
			FirebaseID:  req.FirebaseID,
			DisplayName: req.DisplayName,
			Email:       req.Email,
		})
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.Created(w, userResponse{Message: "OK created", User: u})
	}
}

// put replaces the wishlist.
func put(svc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wishlistRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}
		u, err := svc.UpdateWishlist(r.Context(), r.PathValue("id"), req.BookIDs)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, userResponse{Message: "Successfully updated user", User: u})
	}
}

func remove(svc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, userResponse{User: u})
	}
}
