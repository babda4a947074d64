package service

import (
	"context"
	"fmt"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/models"
)

// Auditor checks the stored reference graph. It only reads.
type Auditor struct {
	c collections
}

type Violation struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type Report struct {
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations"`
}

func (r *Report) OK() bool { return len(r.Violations) == 0 }

func (r *Report) add(kind, id, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
}

// Run reports every Book/Course pair linked on one side only and every
// listing missing from its owner's listings.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	books, err := a.c.books.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	courses, err := a.c.courses.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	listings, err := a.c.listings.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	users, err := a.c.users.Find(ctx, nil)
	if err != nil {
		return nil, err
	}

	r := &Report{Checked: len(books) + len(courses) + len(listings) + len(users), Violations: []Violation{}}

	bookByID := make(map[string]*models.Book, len(books))
	for i := range books {
		bookByID[books[i].ID] = &books[i]
	}
	courseByID := make(map[string]*models.Course, len(courses))
	for i := range courses {
		courseByID[courses[i].ID] = &courses[i]
	}

	for _, b := range books {
		for _, cid := range b.Courses {
			c, ok := courseByID[cid]
			switch {
			case !ok:
				r.add("book", b.ID, "references missing course %s", cid)
			case !integrity.HasRef(c.Books, b.ID):
				r.add("book", b.ID, "course %s does not list it", cid)
			}
		}
	}
	for _, c := range courses {
		for _, bid := range c.Books {
			b, ok := bookByID[bid]
			switch {
			case !ok:
				r.add("course", c.ID, "references missing book %s", bid)
			case !integrity.HasRef(b.Courses, c.ID):
				r.add("course", c.ID, "book %s does not list it", bid)
			}
		}
	}

	userByFirebase := make(map[string]*models.User, len(users))
	for i := range users {
		userByFirebase[users[i].FirebaseID] = &users[i]
	}
	for _, l := range listings {
		u, ok := userByFirebase[l.AssignedUser]
		switch {
		case !ok:
			r.add("listing", l.ID, "assigned user %s does not exist", l.AssignedUser)
		case !integrity.HasRef(u.Listings, l.ID):
			r.add("listing", l.ID, "missing from listings of user %s", u.ID)
		}
	}
	return r, nil
}
