package listings

import (
	"bytes"
	"encoding/json"

	"github.com/5w1tchy/textbooks-api/internal/service"
)

type createRequest struct {
	BookID       string   `json:"bookId"`
	Condition    string   `json:"condition"`
	UserID       string   `json:"userId"`
	Price        *float64 `json:"price"`
	ExchangeBook string   `json:"exchangeBook"`
	Description  string   `json:"description"`
	ImageNames   []string `json:"imageNames"`
}

type updateRequest struct {
	Price           *float64        `json:"price"`
	ExchangeBook    *string         `json:"exchangeBook"`
	StatusCompleted json.RawMessage `json:"statusCompleted"`
	ImageNames      *[]string       `json:"imageNames"`
	Description     *string         `json:"description"`
}

type imageRequest struct {
	ContentType string `json:"contentType"`
}

type listingResponse struct {
	Message string               `json:"message,omitempty"`
	Listing *service.ListingView `json:"listing"`
}

// flexBool reads a JSON boolean or the strings "true" and "false". Absent
// and null give nil.
func flexBool(raw json.RawMessage) (*bool, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	switch s {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return nil, false
	}
	return &b, true
}
