package service

import (
	"context"
	"time"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// CourseSummary is a Course without its books.
type CourseSummary struct {
	ID         string `json:"_id"`
	Department string `json:"department"`
	Number     string `json:"number"`
	Title      string `json:"title"`
}

// BookSummary is a Book without its courses.
type BookSummary struct {
	ID      string   `json:"_id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	ISBN    string   `json:"isbn"`
}

// UserSummary is a User without its listings.
type UserSummary struct {
	ID          string   `json:"_id"`
	FirebaseID  string   `json:"firebaseId"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Wishlist    []string `json:"wishlist"`
}

type BookView struct {
	BookSummary
	Courses []CourseSummary `json:"courses"`
}

type CourseView struct {
	CourseSummary
	Books []BookSummary `json:"books"`
}

type ListingView struct {
	ID              string           `json:"_id"`
	Book            *BookSummary     `json:"book"`
	Description     string           `json:"description"`
	ImageNames      []string         `json:"imageNames"`
	ImageURLs       []string         `json:"imageUrls,omitempty"`
	Condition       models.Condition `json:"condition"`
	Price           float64          `json:"price"`
	ExchangeBook    *BookSummary     `json:"exchangeBook,omitempty"`
	StatusCompleted bool             `json:"statusCompleted"`
	DateCreated     time.Time        `json:"dateCreated"`
	AssignedUser    *UserSummary     `json:"assignedUser"`
}

func summarizeCourse(c *models.Course) CourseSummary {
	return CourseSummary{ID: c.ID, Department: c.Department, Number: c.Number, Title: c.Title}
}

func summarizeBook(b *models.Book) BookSummary {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	return BookSummary{ID: b.ID, Title: b.Title, Authors: authors, ISBN: b.ISBN}
}

func summarizeUser(u *models.User) UserSummary {
	wishlist := u.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	return UserSummary{ID: u.ID, FirebaseID: u.FirebaseID, DisplayName: u.DisplayName, Email: u.Email, Wishlist: wishlist}
}

// fetchIndex loads every distinct id once. Ids that no longer resolve are
// left out of the map.
func fetchIndex[T any](ctx context.Context, c docstore.Collection[T], ids []string, id func(*T) string) (map[string]*T, error) {
	docs, err := c.GetMany(ctx, integrity.Dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T, len(docs))
	for i := range docs {
		out[id(&docs[i])] = &docs[i]
	}
	return out, nil
}

func bookID(b *models.Book) string     { return b.ID }
func courseID(c *models.Course) string { return c.ID }

func courseBooks(c *models.Course) *[]string { return &c.Books }
func userListings(u *models.User) *[]string  { return &u.Listings }

// bookViews expands the courses of every book with one fetch per distinct
// course.
func (c collections) bookViews(ctx context.Context, books []models.Book) ([]BookView, error) {
	var ids []string
	for _, b := range books {
		ids = append(ids, b.Courses...)
	}
	courses, err := fetchIndex(ctx, c.courses, ids, courseID)
	if err != nil {
		return nil, err
	}

	out := make([]BookView, 0, len(books))
	for i := range books {
		v := BookView{BookSummary: summarizeBook(&books[i]), Courses: []CourseSummary{}}
		for _, id := range books[i].Courses {
			if course, ok := courses[id]; ok {
				v.Courses = append(v.Courses, summarizeCourse(course))
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (c collections) bookView(ctx context.Context, b *models.Book) (*BookView, error) {
	views, err := c.bookViews(ctx, []models.Book{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (c collections) courseViews(ctx context.Context, courses []models.Course) ([]CourseView, error) {
	var ids []string
	for _, course := range courses {
		ids = append(ids, course.Books...)
	}
	books, err := fetchIndex(ctx, c.books, ids, bookID)
	if err != nil {
		return nil, err
	}

	out := make([]CourseView, 0, len(courses))
	for i := range courses {
		v := CourseView{CourseSummary: summarizeCourse(&courses[i]), Books: []BookSummary{}}
		for _, id := range courses[i].Books {
			if b, ok := books[id]; ok {
				v.Books = append(v.Books, summarizeBook(b))
			}
		}
		out = append(out, v)
	}
	return out, nil
}
