// Package lookup resolves an ISBN to book metadata.
package lookup

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound means the service knows no volume for the ISBN.
var ErrNotFound = errors.New("lookup: no volume for isbn")

type Volume struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Authors  []string `json:"authors"`
}

// FullTitle joins title and subtitle as "title: subtitle".
func (v Volume) FullTitle() string {
	if v.Subtitle == "" {
		return v.Title
	}
	return v.Title + ": " + v.Subtitle
}

// Complete reports whether the volume can fill a Book on its own.
func (v Volume) Complete() bool {
	return strings.TrimSpace(v.Title) != "" && len(v.Authors) > 0
}

type Client interface {
	Lookup(ctx context.Context, isbn string) (*Volume, error)
}
