package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
	"github.com/5w1tchy/textbooks-api/internal/validate"
)

type ListingService struct {
	c      collections
	images ImageStore
	purger ImagePurger
	log    logrus.FieldLogger
	now    func() time.Time
}

type CreateListingInput struct {
	BookID       string
	Condition    string
	UserID       string
	Price        *float64
	ExchangeBook string
	Description  string
	ImageNames   []string
}

// UpdateListingInput holds the mutable fields. Nil means "leave as is"; an
// empty ExchangeBook clears the exchange.
type UpdateListingInput struct {
	Price           *float64
	ExchangeBook    *string
	StatusCompleted *bool
	ImageNames      *[]string
	Description     *string
}

func (in UpdateListingInput) empty() bool {
	return in.Price == nil && in.ExchangeBook == nil && in.StatusCompleted == nil &&
		in.ImageNames == nil && in.Description == nil
}

type ImageUpload struct {
	UploadURL string `json:"uploadUrl"`
	ImageName string `json:"imageName"`
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const invalidPrice = "Invalid price: must be greater than 0."

// List returns every listing, or those of one owner when userID is set.
func (s *ListingService) List(ctx context.Context, userID string) ([]ListingView, error) {
	f := docstore.Filter{}
	if userID = strings.TrimSpace(userID); userID != "" {
		f["assignedUser"] = userID
	}
	listings, err := s.c.listings.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, listings)
}

func (s *ListingService) Get(ctx context.Context, id string) (*ListingView, error) {
	l, err := s.c.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, l)
}

// Create stores a listing and appends it to its owner's listings. If the
// owner cannot be updated the listing is removed again.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*ListingView, error) {
	bookID := strings.TrimSpace(in.BookID)
	userID := strings.TrimSpace(in.UserID)
	exchange := strings.TrimSpace(in.ExchangeBook)

	if bookID == "" || strings.TrimSpace(in.Condition) == "" || userID == "" {
		return nil, badRequest("", "Missing parameter (bookId, condition or userId) in request body")
	}
	if in.Price == nil && exchange == "" {
		return nil, badRequest("", "Missing price or exchangeBook parameter in request body")
	}
	cond, ok := models.ParseCondition(in.Condition)
	if !ok {
		return nil, &FieldError{Field: "condition"}
	}
	var price float64
	if in.Price != nil {
		if validate.Price(*in.Price) != nil {
			return nil, badRequest("", invalidPrice)
		}
		price = *in.Price
	}

	if err := s.requireBook(ctx, bookID, "No book found with ID %s."); err != nil {
		return nil, err
	}
	user, err := s.c.users.FindOne(ctx, docstore.Filter{"firebaseId": userID})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, badRequest("", "No user found with firebaseId %s.", userID)
	}
	if err != nil {
		return nil, err
	}
	if exchange != "" {
		if err := s.requireBook(ctx, exchange, "No exchange book found with ID %s."); err != nil {
			return nil, err
		}
	}

	l := models.Listing{
		ID:           docstore.NewID(),
		Book:         bookID,
		Description:  strings.TrimSpace(in.Description),
		ImageNames:   validate.Names(in.ImageNames),
		Condition:    cond,
		Price:        price,
		ExchangeBook: exchange,
		AssignedUser: user.FirebaseID,
	}
	l.ApplyDefaults(s.now())
	if err := s.c.listings.Insert(ctx, l.ID, &l); err != nil {
		return nil, err
	}

	integrity.AddRef(&user.Listings, l.ID)
	if err := s.c.users.Save(ctx, user.ID, user); err != nil {
		if derr := s.c.listings.Delete(ctx, l.ID); derr != nil {
			s.log.WithError(derr).WithField("listing_id", l.ID).Error("orphaned listing: rollback after owner update failed")
		}
		return nil, fmt.Errorf("append listing to user %s: %w", user.ID, err)
	}
	return s.view(ctx, &l)
}

func (s *ListingService) requireBook(ctx context.Context, id, format string) error {
	_, err := s.c.books.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
		return badRequest("", format, id)
	}
	return err
}

func (s *ListingService) Update(ctx context.Context, id string, in UpdateListingInput) (*ListingView, error) {
	l, err := s.c.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, badRequest("", "No parameter provided in request body")
	}

	if in.Price != nil {
		if validate.Price(*in.Price) != nil {
			return nil, badRequest("", invalidPrice)
		}
		l.Price = *in.Price
	}
	if in.ExchangeBook != nil {
		exchange := strings.TrimSpace(*in.ExchangeBook)
		if exchange != "" {
			if err := s.requireBook(ctx, exchange, "No exchange book found with ID %s."); err != nil {
				return nil, err
			}
		}
		l.ExchangeBook = exchange
	}
	if in.StatusCompleted != nil {
		l.StatusCompleted = *in.StatusCompleted
	}
	if in.ImageNames != nil {
		l.ImageNames = validate.Names(*in.ImageNames)
	}
	if in.Description != nil {
		l.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.c.listings.Save(ctx, l.ID, l); err != nil {
		return nil, err
	}
	return s.view(ctx, l)
}

// Delete removes the listing and then its id from the owner's listings.
func (s *ListingService) Delete(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.c.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, l); err != nil {
		return nil, err
	}

	owner, err := s.c.users.FindOne(ctx, docstore.Filter{"firebaseId": l.AssignedUser})
	switch {
	case errors.Is(err, docstore.ErrNotFound):
	case err != nil:
		s.log.WithError(err).WithField("listing_id", l.ID).Warn("owner lookup after listing delete failed")
	default:
		if err := integrity.Unlink(ctx, s.c.users, owner.ID, l.ID, userListings); err != nil {
			s.log.WithError(err).WithField("listing_id", l.ID).Warn("removing listing from owner failed")
		}
	}
	return l, nil
}

// remove deletes the document and queues its images. The owner is not
// touched.
func (s *ListingService) remove(ctx context.Context, l *models.Listing) error {
	if err := s.c.listings.Delete(ctx, l.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	keys := ownedImages(l)
	if s.purger != nil && len(keys) > 0 {
		if n := s.purger.Enqueue(keys...); n < len(keys) {
			s.log.WithField("listing_id", l.ID).Warnf("image purge queue full; %d objects left behind", len(keys)-n)
		}
	}
	return nil
}

func imagePrefix(listingID string) string { return "listings/" + listingID + "/" }

// ownedImages returns the image names that are object keys AddImage issued
// for l. Other names are stored as given but never signed or deleted.
func ownedImages(l *models.Listing) []string {
	prefix := imagePrefix(l.ID)
	var keys []string
	for _, n := range l.ImageNames {
		rest, ok := strings.CutPrefix(n, prefix)
		if ok && rest != "" && !strings.ContainsAny(rest, "/\\") {
			keys = append(keys, n)
		}
	}
	return keys
}

// AddImage reserves an object key for a new image, records it on the
// listing and returns a presigned upload URL for it.
func (s *ListingService) AddImage(ctx context.Context, id, contentType string) (*ImageUpload, error) {
	if s.images == nil {
		return nil, ErrStorageDisabled
	}
	ext, ok := imageExt[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, &FieldError{Field: "contentType"}
	}
	l, err := s.c.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := imagePrefix(l.ID) + uuid.NewString() + ext
	url, err := s.images.GeneratePresignedUploadURL(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	integrity.AddRef(&l.ImageNames, key)
	if err := s.c.listings.Save(ctx, l.ID, l); err != nil {
		return nil, err
	}
	return &ImageUpload{UploadURL: url, ImageName: key}, nil
}

func (s *ListingService) view(ctx context.Context, l *models.Listing) (*ListingView, error) {
	views, err := s.views(ctx, []models.Listing{*l})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ListingService) views(ctx context.Context, listings []models.Listing) ([]ListingView, error) {
	var bookIDs []string
	owners := map[string]*models.User{}
	for _, l := range listings {
		bookIDs = append(bookIDs, l.Book)
		if l.ExchangeBook != "" {
			bookIDs = append(bookIDs, l.ExchangeBook)
		}
		owners[l.AssignedUser] = nil
	}
	books, err := fetchIndex(ctx, s.c.books, bookIDs, bookID)
	if err != nil {
		return nil, err
	}
	for fid := range owners {
		u, err := s.c.users.FindOne(ctx, docstore.Filter{"firebaseId": fid})
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
		owners[fid] = u
	}

	out := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		v := ListingView{
			ID:              l.ID,
			Description:     l.Description,
			ImageNames:      l.ImageNames,
			Condition:       l.Condition,
			Price:           l.Price,
			StatusCompleted: l.StatusCompleted,
			DateCreated:     l.DateCreated,
		}
		if v.ImageNames == nil {
			v.ImageNames = []string{}
		}
		if b, ok := books[l.Book]; ok {
			sum := summarizeBook(b)
			v.Book = &sum
		}
		if b, ok := books[l.ExchangeBook]; ok && l.ExchangeBook != "" {
			sum := summarizeBook(b)
			v.ExchangeBook = &sum
		}
		if u := owners[l.AssignedUser]; u != nil {
			sum := summarizeUser(u)
			v.AssignedUser = &sum
		}
		v.ImageURLs = s.imageURLs(ctx, ownedImages(&l))
		out = append(out, v)
	}
	return out, nil
}

func (s *ListingService) imageURLs(ctx context.Context, keys []string) []string {
	if s.images == nil || len(keys) == 0 {
		return nil
	}
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		u, err := s.images.GeneratePresignedDownloadURL(ctx, k)
		if err != nil {
			s.log.WithError(err).WithField("key", k).Warn("presign image download failed")
			continue
		}
		urls = append(urls, u)
	}
	return urls
}
