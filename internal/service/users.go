package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
	"github.com/5w1tchy/textbooks-api/internal/validate"
)

type UserService struct {
	c        collections
	listings *ListingService
	log      logrus.FieldLogger
}

type CreateUserInput struct {
	FirebaseID  string
	DisplayName string
	Email       string
}

// List returns all users, or the one holding firebaseID when it is set.
func (s *UserService) List(ctx context.Context, firebaseID string) ([]models.User, error) {
	f := docstore.Filter{}
	if firebaseID = strings.TrimSpace(firebaseID); firebaseID != "" {
		f["firebaseId"] = firebaseID
	}
	return s.c.users.Find(ctx, f)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.c.users.Get(ctx, id)
}

// Create requires firebaseId, displayName and email, reported in that order.
// Uniqueness of all three is left to the store's indexes.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	u := models.User{
		ID:          docstore.NewID(),
		FirebaseID:  strings.TrimSpace(in.FirebaseID),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Email:       strings.TrimSpace(in.Email),
	}
	switch {
	case u.FirebaseID == "":
		return nil, &FieldError{Field: "firebaseId"}
	case u.DisplayName == "":
		return nil, &FieldError{Field: "displayName"}
	case u.Email == "":
		return nil, &FieldError{Field: "email"}
	}
	if _, err := validate.Email(u.Email); err != nil {
		return nil, &FieldError{Field: "email"}
	}

	u.ApplyDefaults()
	if err := s.c.users.Insert(ctx, u.ID, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateWishlist replaces the wishlist wholesale once every book id has been
// checked.
func (s *UserService) UpdateWishlist(ctx context.Context, id string, bookIDs *[]string) (*models.User, error) {
	u, err := s.c.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bookIDs == nil {
		return nil, badRequest("", "Missing bookIds parameter in request body")
	}

	ids := integrity.Dedupe(*bookIDs)
	if err := integrity.ModifyAllOrNone[models.Book](ctx, s.c.books, "book", ids, nil); err != nil {
		return nil, err
	}
	u.Wishlist = ids
	if err := s.c.users.Save(ctx, u.ID, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes every listing the user owns, then the user. If a listing
// cannot be removed the user is kept so the delete can be retried.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	u, err := s.c.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owned, err := s.c.listings.Find(ctx, docstore.Filter{"assignedUser": u.FirebaseID})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(owned))
	for _, l := range owned {
		seen[l.ID] = true
	}
	for _, lid := range u.Listings {
		if seen[lid] {
			continue
		}
		l, err := s.c.listings.Get(ctx, lid)
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
			continue
		}
		if err != nil {
			return nil, err
		}
		owned = append(owned, *l)
	}

	for i := range owned {
		if err := s.listings.remove(ctx, &owned[i]); err != nil {
			return nil, err
		}
	}
	if len(owned) > 0 {
		s.log.WithFields(logrus.Fields{"user_id": u.ID, "listings": len(owned)}).Info("deleted listings of removed user")
	}

	if err := s.c.users.Delete(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}
