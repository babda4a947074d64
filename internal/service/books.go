package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/lookup"
	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
	"github.com/5w1tchy/textbooks-api/internal/validate"
)

const cascadeWorkers = 4

type BookService struct {
	c      collections
	lookup lookup.Client
	prune  bool
	log    logrus.FieldLogger
}

type CreateBookInput struct {
	ISBN    string
	Title   string
	Authors []string
	Courses []string
}

// List returns every book, or the books of the courses matching subject and
// optionally number.
func (s *BookService) List(ctx context.Context, subject, number string) ([]BookView, error) {
	subject = validate.NormalizeDepartment(subject)
	number = validate.NormalizeCourseNumber(number)

	if subject == "" && number != "" {
		return nil, badRequest("", "Missing subject parameter in querystring")
	}
	if subject == "" {
		books, err := s.c.books.Find(ctx, nil)
		if err != nil {
			return nil, err
		}
		return s.c.bookViews(ctx, books)
	}

	f := docstore.Filter{"department": subject}
	if number != "" {
		f["number"] = number
	}
	courses, err := s.c.courses.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, &NotFoundError{Message: "No course found with the corresponding subject and number."}
	}

	var ids []string
	for _, c := range courses {
		ids = append(ids, c.Books...)
	}
	books, err := s.c.books.GetMany(ctx, integrity.Dedupe(ids))
	if err != nil {
		return nil, err
	}
	return s.c.bookViews(ctx, books)
}

func (s *BookService) Get(ctx context.Context, id string) (*BookView, error) {
	b, err := s.c.books.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.c.bookView(ctx, b)
}

// Create stores a new book. Title and authors come from the ISBN lookup when
// it knows the ISBN, otherwise from the caller. The listed courses must all
// exist; they are linked back to the book once it is stored.
func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*BookView, error) {
	isbn := validate.NormalizeISBN(in.ISBN)
	if isbn == "" {
		return nil, badRequest(ErrTypeMissingISBN, "Missing isbn parameter in request body")
	}

	_, err := s.c.books.FindOne(ctx, docstore.Filter{"isbn": isbn})
	if err == nil {
		return nil, &docstore.DuplicateKeyError{Collection: docstore.Books, Field: "isbn", Value: isbn}
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, err
	}

	title, authors, err := s.resolveMetadata(ctx, isbn, strings.TrimSpace(in.Title), validate.Names(in.Authors))
	if err != nil {
		return nil, err
	}

	courseIDs := integrity.Dedupe(in.Courses)
	pending, err := integrity.Prepare(ctx, s.c.courses, "course", courseIDs)
	if err != nil {
		return nil, err
	}

	book := models.Book{
		ID:      docstore.NewID(),
		Title:   title,
		Authors: authors,
		ISBN:    isbn,
		Courses: courseIDs,
	}
	book.ApplyDefaults()
	if err := s.c.books.Insert(ctx, book.ID, &book); err != nil {
		return nil, err
	}

	// The book is stored, so the request succeeds even when a course keeps
	// no back reference. The integrity audit reports those.
	if err := pending.Exec(ctx, func(c *models.Course) { integrity.AddRef(&c.Books, book.ID) }); err != nil {
		s.log.WithError(err).WithField("book_id", book.ID).Warn("linking courses to new book failed")
	}
	return s.c.bookView(ctx, &book)
}

func (s *BookService) resolveMetadata(ctx context.Context, isbn, title string, authors []string) (string, []string, error) {
	manual := title != "" || len(authors) > 0

	var vol *lookup.Volume
	if s.lookup != nil {
		v, err := s.lookup.Lookup(ctx, isbn)
		switch {
		case err == nil:
			vol = v
		case !errors.Is(err, lookup.ErrNotFound):
			s.log.WithError(err).WithField("isbn", isbn).Warn("isbn lookup failed; using request fields")
		}
	}

	if vol != nil && vol.Complete() {
		if manual {
			return "", nil, badRequest(ErrTypeUnexpectedArgument,
				"Unexpected title or authors provided for recognized ISBN '%s'.", isbn)
		}
		return vol.FullTitle(), validate.Names(vol.Authors), nil
	}

	switch {
	case !manual:
		return "", nil, badRequest(ErrTypeInvalidISBN, "Invalid ISBN '%s' provided.", isbn)
	case title == "":
		return "", nil, badRequest(ErrTypeMissingTitle, "Missing title parameter in request body")
	case len(authors) == 0:
		return "", nil, badRequest(ErrTypeMissingAuthors, "Missing authors parameter in request body")
	}
	return title, authors, nil
}

// UpdateCourses replaces the course list of a book. A nil list leaves the
// book as it is and reports updated=false. Every new course must exist
// before anything is written.
func (s *BookService) UpdateCourses(ctx context.Context, id string, courses *[]string) (view *BookView, updated bool, err error) {
	book, err := s.c.books.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if courses == nil {
		view, err = s.c.bookView(ctx, book)
		return view, false, err
	}

	next := integrity.Dedupe(*courses)
	err = integrity.ModifyAllOrNone(ctx, s.c.courses, "course", next, func(c *models.Course) {
		integrity.AddRef(&c.Books, book.ID)
	})
	if err != nil {
		return nil, false, err
	}

	if s.prune {
		for _, cid := range integrity.Diff(book.Courses, next) {
			if err := integrity.Unlink(ctx, s.c.courses, cid, book.ID, courseBooks); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{"book_id": book.ID, "course_id": cid}).
					Warn("unlinking dropped course failed")
			}
		}
	}

	book.Courses = next
	if err := s.c.books.Save(ctx, book.ID, book); err != nil {
		return nil, false, err
	}
	view, err = s.c.bookView(ctx, book)
	return view, true, err
}

// Delete removes the book after dropping it from each of its courses. The
// course cleanup is best effort: failures are logged and do not stop the
// delete.
func (s *BookService) Delete(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.c.books.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(cascadeWorkers)
	for _, cid := range integrity.Dedupe(book.Courses) {
		g.Go(func() error {
			if err := integrity.Unlink(ctx, s.c.courses, cid, book.ID, courseBooks); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{"book_id": book.ID, "course_id": cid}).
					Warn("removing deleted book from course failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := s.c.books.Delete(ctx, book.ID); err != nil {
		return nil, err
	}
	return book, nil
}
