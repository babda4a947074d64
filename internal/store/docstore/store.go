// Package docstore defines the contract every document backend implements
// and the helpers shared between them.
package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	Books    = "books"
	Courses  = "courses"
	Listings = "listings"
	Users    = "users"
)

// Filter matches documents whose top-level fields equal the given strings.
// An empty filter matches everything.
type Filter map[string]string

// Store is a document database. dst arguments are pointers: a struct for the
// single-document reads and a slice for Find.
type Store interface {
	FindByID(ctx context.Context, coll, id string, dst any) error
	FindOne(ctx context.Context, coll string, f Filter, dst any) error
	Find(ctx context.Context, coll string, f Filter, dst any) error
	Insert(ctx context.Context, coll, id string, doc any) error
	Save(ctx context.Context, coll, id string, doc any) error
	Delete(ctx context.Context, coll, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Schema lists the unique fields of each collection.
type Schema map[string][]string

func DefaultSchema() Schema {
	return Schema{
		Books: {"isbn"},
		Users: {"firebaseId", "displayName", "email"},
	}
}

// NewID returns a fresh ObjectID in hex form. Every backend stores ids as
// these strings so a database can be moved between backends as-is.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// CheckID rejects anything that is not a 24 character hex ObjectID.
func CheckID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return &InvalidIDError{Value: id}
	}
	return nil
}
