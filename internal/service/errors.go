package service

import (
	"errors"
	"fmt"
)

// Error types carried by RequestError.
const (
	ErrTypeInvalidISBN        = "INVALID_ISBN"
	ErrTypeUnexpectedArgument = "UNEXPECTED_ARGUMENT"
	ErrTypeMissingISBN        = "MISSING_ISBN"
	ErrTypeMissingTitle       = "MISSING_TITLE"
	ErrTypeMissingAuthors     = "MISSING_AUTHORS"
)

// ErrStorageDisabled is returned by image operations when no bucket is
// configured.
var ErrStorageDisabled = errors.New("service: image storage is not configured")

// RequestError is a rejected request. Type is optional.
type RequestError struct {
	Type    string
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(typ, format string, args ...any) *RequestError {
	return &RequestError{Type: typ, Message: fmt.Sprintf(format, args...)}
}

// FieldError names a required field that is absent or malformed.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Field '%s' is missing or invalid", e.Field)
}

// NotFoundError is a lookup miss that deserves an explanation, unlike a
// dangling id in a path.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
