package docstore

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("docstore: document not found")
	ErrDuplicate = errors.New("docstore: duplicate key")
	ErrInvalidID = errors.New("docstore: invalid id")
)

// DuplicateKeyError reports a unique index hit. Nothing was written.
type DuplicateKeyError struct {
	Collection string
	Field      string
	Value      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("docstore: duplicate key %s.%s=%q", e.Collection, e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicate }

// InvalidIDError carries the raw value that could not be used as an id.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("docstore: invalid id %q", e.Value)
}

func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }
