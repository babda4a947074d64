package pgdoc

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

const (
	uniqueViolation = "23505"
	primaryKey      = "documents_pkey"
)

// mapError turns a unique violation into a DuplicateKeyError for the field
// backing the violated index. Everything else is returned unchanged.
func (s *Store) mapError(err error, coll, id string, fields map[string]any) error {
	var pg *pgconn.PgError
	if !errors.As(err, &pg) || pg.Code != uniqueViolation {
		return err
	}
	if pg.ConstraintName == primaryKey {
		return &docstore.DuplicateKeyError{Collection: coll, Field: "_id", Value: id}
	}
	for _, f := range s.schema[coll] {
		if constraintName(coll, f) == pg.ConstraintName {
			v, _ := docstore.FieldString(fields, f)
			return &docstore.DuplicateKeyError{Collection: coll, Field: f, Value: v}
		}
	}
	return &docstore.DuplicateKeyError{Collection: coll, Field: pg.ConstraintName}
}
