// Package service holds the entity services. Every cross-collection
// reference change goes through the integrity package.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/lookup"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// ImageStore presigns object URLs for listing images.
type ImageStore interface {
	GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string) (string, error)
}

// ImagePurger deletes objects in the background.
type ImagePurger interface {
	Enqueue(keys ...string) int
}

type Deps struct {
	Store  docstore.Store
	Lookup lookup.Client
	Images ImageStore
	Purger ImagePurger
	Log    logrus.FieldLogger

	// PruneStaleCourses makes a Book update unlink the courses dropped from
	// its list. Without it updates only ever add links.
	PruneStaleCourses bool

	Now func() time.Time
}

type Services struct {
	Books    *BookService
	Courses  *CourseService
	Listings *ListingService
	Users    *UserService
	Audit    *Auditor
}

type collections struct {
	books    docstore.Collection[models.Book]
	courses  docstore.Collection[models.Course]
	listings docstore.Collection[models.Listing]
	users    docstore.Collection[models.User]
}

func newCollections(s docstore.Store) collections {
	return collections{
		books:    docstore.NewCollection[models.Book](s, docstore.Books),
		courses:  docstore.NewCollection[models.Course](s, docstore.Courses),
		listings: docstore.NewCollection[models.Listing](s, docstore.Listings),
		users:    docstore.NewCollection[models.User](s, docstore.Users),
	}
}

func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	c := newCollections(d.Store)

	listings := &ListingService{c: c, images: d.Images, purger: d.Purger, log: d.Log, now: d.Now}
	return &Services{
		Books:    &BookService{c: c, lookup: d.Lookup, prune: d.PruneStaleCourses, log: d.Log},
		Courses:  &CourseService{c: c, log: d.Log},
		Listings: listings,
		Users:    &UserService{c: c, listings: listings, log: d.Log},
		Audit:    &Auditor{c: c},
	}
}
