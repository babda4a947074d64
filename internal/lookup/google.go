package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooks queries the public volumes endpoint with q=isbn:<isbn>.
type GoogleBooks struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGoogleBooks(baseURL, apiKey string, timeout time.Duration) *GoogleBooks {
	if baseURL == "" {
		baseURL = DefaultGoogleBooksURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleBooks{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo Volume `json:"volumeInfo"`
	} `json:"items"`
}

func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*Volume, error) {
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup: google books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup: google books status %d", resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("lookup: decode: %w", err)
	}
	if body.TotalItems == 0 || len(body.Items) == 0 {
		return nil, ErrNotFound
	}
	v := body.Items[0].VolumeInfo
	return &v, nil
}
