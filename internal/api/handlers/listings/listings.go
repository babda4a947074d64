// Package listings serves /listings.
package listings

import (
	"fmt"
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/apperr"
	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/service"
)

func Mount(mux *http.ServeMux, svc *service.ListingService) {
	mux.Handle("GET /listings", list(svc))
	mux.Handle("POST /listings", create(svc))
	mux.Handle("GET /listings/{id}", get(svc))
	mux.Handle("PUT /listings/{id}", put(svc))
	mux.Handle("DELETE /listings/{id}", remove(svc))
	mux.Handle("POST /listings/{id}/images", addImage(svc))
}

func list(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := svc.List(r.Context(), r.URL.Query().Get("userId"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"listings": listings})
	}
}

func get(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, listingResponse{Listing: l})
	}
}

func create(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}

		l, err := svc.Create(r.Context(), service.CreateListingInput{
			BookID:       req.BookID,
			Condition:    req.Condition,
			UserID:       req.UserID,
			Price:        req.Price,
			ExchangeBook: req.ExchangeBook,
			Description:  req.Description,
			ImageNames:   req.ImageNames,
		})
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.Created(w, listingResponse{Message: "OK created", Listing: l})
	}
}

func put(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}
		id := r.PathValue("id")
		done, ok := flexBool(req.StatusCompleted)
		if !ok {
			// An unknown id is reported before the body is judged.
			if _, err := svc.Get(r.Context(), id); err != nil {
				apperr.Write(w, r, err)
				return
			}
			apperr.Write(w, r, &service.RequestError{Message: "Invalid statusCompleted: must be a Boolean."})
			return
		}

		l, err := svc.Update(r.Context(), id, service.UpdateListingInput{
			Price:           req.Price,
			ExchangeBook:    req.ExchangeBook,
			StatusCompleted: done,
			ImageNames:      req.ImageNames,
			Description:     req.Description,
		})
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, listingResponse{Message: "Successfully updated listing", Listing: l})
	}
}

func remove(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.OK(w, map[string]any{"listing": l})
	}
}

func addImage(svc *service.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			apperr.Write(w, r, fmt.Errorf("%w: %v", apperr.ErrInvalidJSON, err))
			return
		}
		up, err := svc.AddImage(r.Context(), r.PathValue("id"), req.ContentType)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		httpx.Created(w, up)
	}
}
