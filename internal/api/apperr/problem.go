// Package apperr turns service and store errors into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/5w1tchy/textbooks-api/internal/api/httpx"
	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/logging"
	"github.com/5w1tchy/textbooks-api/internal/service"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// ErrInvalidJSON marks a request body that could not be decoded.
var ErrInvalidJSON = errors.New("invalid JSON body")

// Message is the body of most client errors.
type Message struct {
	ErrorType string `json:"errorType,omitempty"`
	Message   string `json:"message"`
}

// Failure carries a reason under data.error.
type Failure struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type reason struct {
	Error string `json:"error"`
}

const DuplicateDocument = "DUPLICATE_DOCUMENT"

// Map returns the status and body for err. A nil body means the response
// has none.
func Map(err error) (int, any) {
	var (
		dup     *docstore.DuplicateKeyError
		badID   *docstore.InvalidIDError
		missing *integrity.MissingDocumentError
		field   *service.FieldError
		req     *service.RequestError
		nf      *service.NotFoundError
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, Message{Message: fmt.Sprintf("No %s found with ID %s.", missing.Kind, missing.ID)}
	case errors.As(err, &dup):
		return http.StatusBadRequest, Message{
			ErrorType: DuplicateDocument,
			Message:   fmt.Sprintf("A document with key %s=%s already exists.", dup.Field, dup.Value),
		}
	case errors.As(err, &badID):
		return http.StatusBadRequest, Failure{
			Message: "NOT OK",
			Data:    reason{Error: fmt.Sprintf("Received invalid id value: %q", badID.Value)},
		}
	case errors.As(err, &field):
		return http.StatusBadRequest, Failure{Message: "NOT OK", Data: reason{Error: field.Error()}}
	case errors.As(err, &req):
		return http.StatusBadRequest, Message{ErrorType: req.Type, Message: req.Message}
	case errors.As(err, &nf):
		return http.StatusNotFound, Message{Message: nf.Message}
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, nil
	case errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest, Message{Message: "Invalid JSON body"}
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable, Message{Message: "Image storage is not configured."}
	default:
		return http.StatusInternalServerError, Failure{Message: "Internal server error", Data: struct{}{}}
	}
}

// Write renders err. Server errors are logged with the request's logger;
// their details never reach the client.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Map(err)
	if status >= http.StatusInternalServerError {
		logging.From(r.Context()).WithError(err).
			WithField("path", r.URL.Path).Error("request failed")
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	httpx.WriteJSON(w, status, body)
}
