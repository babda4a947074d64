package books

import "github.com/5w1tchy/textbooks-api/internal/service"

type createRequest struct {
	ISBN    string   `json:"isbn"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Courses []string `json:"courses"`
}

// putRequest tells an absent courses key (nil) from an empty list.
type putRequest struct {
	Courses *[]string `json:"courses"`
}

type bookResponse struct {
	Message string            `json:"message,omitempty"`
	Book    *service.BookView `json:"book"`
}
