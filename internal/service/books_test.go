package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/textbooks-api/internal/integrity"
	"github.com/5w1tchy/textbooks-api/internal/lookup"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

func TestBookCreate_LinksCourses(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	cid := mustCourse(t, svc, "CS", "101")

	book, err := svc.Books.Create(ctx, CreateBookInput{ISBN: "111", Title: "T", Authors: []string{"A"}, Courses: []string{cid}})
	require.NoError(t, err)
	require.Len(t, book.Courses, 1)
	assert.Equal(t, "CS", book.Courses[0].Department)

	course, err := svc.Courses.Get(ctx, cid)
	require.NoError(t, err)
	require.Len(t, course.Books, 1)
	assert.Equal(t, book.ID, course.Books[0].ID)
}

func TestBookCreate_MissingCourseWritesNothing(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	cid := mustCourse(t, svc, "CS", "101")
	missing := docstore.NewID()

	_, err := svc.Books.Create(ctx, CreateBookInput{ISBN: "111", Title: "T", Authors: []string{"A"}, Courses: []string{cid, missing}})
	var mde *integrity.MissingDocumentError
	require.ErrorAs(t, err, &mde)
	assert.Equal(t, missing, mde.ID)

	books, err := svc.Books.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, books)

	course, err := svc.Courses.Get(ctx, cid)
	require.NoError(t, err)
	assert.Empty(t, course.Books)
}

func TestBookCreate_CourseLinkFailureKeepsBook(t *testing.T) {
	d := newDeps(t)
	seed := New(d)
	cid := mustCourse(t, seed, "CS", "101")

	d.Store = failingStore{Store: d.Store, coll: docstore.Courses}
	svc := New(d)
	ctx := t.Context()

	book, err := svc.Books.Create(ctx, CreateBookInput{ISBN: "111", Title: "T", Authors: []string{"A"}, Courses: []string{cid}})
	require.NoError(t, err)
	require.Len(t, book.Courses, 1)
	assert.Equal(t, cid, book.Courses[0].ID)

	course, err := svc.Courses.Get(ctx, cid)
	require.NoError(t, err)
	assert.Empty(t, course.Books)

	report, err := svc.Audit.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, book.ID, report.Violations[0].ID)
}

func TestBookCreate_DuplicateISBN(t *testing.T) {
	svc := newServices(t)
	mustBook(t, svc, "111")

	_, err := svc.Books.Create(t.Context(), CreateBookInput{ISBN: "111", Title: "Other", Authors: []string{"B"}})
	var dup *docstore.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "isbn", dup.Field)

	books, err := svc.Books.List(t.Context(), "", "")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestBookCreate_Metadata(t *testing.T) {
	d := newDeps(t)
	d.Lookup = fakeLookup{
		"9780262033848": {Title: "Introduction to Algorithms", Subtitle: "Third Edition", Authors: []string{"Cormen"}},
		"9780000000002": {Title: "No authors"},
	}
	svc := New(d)
	ctx := t.Context()

	tests := []struct {
		name    string
		in      CreateBookInput
		errType string
		title   string
	}{
		{name: "missing isbn", in: CreateBookInput{Title: "T", Authors: []string{"A"}}, errType: ErrTypeMissingISBN},
		{name: "recognized with title", in: CreateBookInput{ISBN: "9780262033848", Title: "T"}, errType: ErrTypeUnexpectedArgument},
		{name: "unknown without fields", in: CreateBookInput{ISBN: "123"}, errType: ErrTypeInvalidISBN},
		{name: "manual missing title", in: CreateBookInput{ISBN: "123", Authors: []string{"A"}}, errType: ErrTypeMissingTitle},
		{name: "manual missing authors", in: CreateBookInput{ISBN: "123", Title: "T"}, errType: ErrTypeMissingAuthors},
		{name: "recognized", in: CreateBookInput{ISBN: "978-0-262-03384-8"}, title: "Introduction to Algorithms: Third Edition"},
		{name: "incomplete volume falls back", in: CreateBookInput{ISBN: "9780000000002", Title: "Manual", Authors: []string{"X"}}, title: "Manual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := svc.Books.Create(ctx, tt.in)
			if tt.errType != "" {
				var re *RequestError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, tt.errType, re.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.title, book.Title)
		})
	}
}

func TestBookUpdateCourses(t *testing.T) {
	for _, prune := range []bool{true, false} {
		name := "additive"
		if prune {
			name = "full"
		}
		t.Run(name, func(t *testing.T) {
			d := newDeps(t)
			d.PruneStaleCourses = prune
			svc := New(d)
			ctx := t.Context()

			c1 := mustCourse(t, svc, "CS", "101")
			c2 := mustCourse(t, svc, "CS", "102")
			bid := mustBook(t, svc, "111", c1)

			view, updated, err := svc.Books.UpdateCourses(ctx, bid, &[]string{c2, c2})
			require.NoError(t, err)
			assert.True(t, updated)
			require.Len(t, view.Courses, 1)
			assert.Equal(t, c2, view.Courses[0].ID)

			old, err := svc.Courses.Get(ctx, c1)
			require.NoError(t, err)
			if prune {
				assert.Empty(t, old.Books)
			} else {
				assert.Len(t, old.Books, 1)
			}
			added, err := svc.Courses.Get(ctx, c2)
			require.NoError(t, err)
			assert.Len(t, added.Books, 1)
		})
	}
}

func TestBookUpdateCourses_NoCoursesKey(t *testing.T) {
	svc := newServices(t)
	cid := mustCourse(t, svc, "CS", "101")
	bid := mustBook(t, svc, "111", cid)

	view, updated, err := svc.Books.UpdateCourses(t.Context(), bid, nil)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Len(t, view.Courses, 1)
}

func TestBookUpdateCourses_MissingCourseLeavesState(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	c1 := mustCourse(t, svc, "CS", "101")
	c2 := mustCourse(t, svc, "CS", "102")
	bid := mustBook(t, svc, "111", c1)

	_, _, err := svc.Books.UpdateCourses(ctx, bid, &[]string{c2, docstore.NewID()})
	var mde *integrity.MissingDocumentError
	require.ErrorAs(t, err, &mde)

	book, err := svc.Books.Get(ctx, bid)
	require.NoError(t, err)
	require.Len(t, book.Courses, 1)
	assert.Equal(t, c1, book.Courses[0].ID)

	untouched, err := svc.Courses.Get(ctx, c2)
	require.NoError(t, err)
	assert.Empty(t, untouched.Books)
}

func TestBookDelete_Cascades(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	c1 := mustCourse(t, svc, "CS", "101")
	c2 := mustCourse(t, svc, "MATH", "200")
	bid := mustBook(t, svc, "111", c1, c2)
	keep := mustBook(t, svc, "222", c1)

	_, err := svc.Books.Delete(ctx, bid)
	require.NoError(t, err)

	_, err = svc.Books.Get(ctx, bid)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	course, err := svc.Courses.Get(ctx, c1)
	require.NoError(t, err)
	require.Len(t, course.Books, 1)
	assert.Equal(t, keep, course.Books[0].ID)

	course, err = svc.Courses.Get(ctx, c2)
	require.NoError(t, err)
	assert.Empty(t, course.Books)
}

func TestBookList_ByCourse(t *testing.T) {
	svc := newServices(t)
	ctx := t.Context()
	cs := mustCourse(t, svc, "CS", "101")
	math := mustCourse(t, svc, "MATH", "200")
	b1 := mustBook(t, svc, "111", cs)
	mustBook(t, svc, "222", math)

	books, err := svc.Books.List(ctx, "cs", "101")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b1, books[0].ID)

	_, err = svc.Books.List(ctx, "", "101")
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Missing subject parameter in querystring", re.Message)

	_, err = svc.Books.List(ctx, "BIO", "")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestBookGet_InvalidID(t *testing.T) {
	svc := newServices(t)
	_, err := svc.Books.Get(t.Context(), "not-an-id")
	assert.ErrorIs(t, err, docstore.ErrInvalidID)
}

var _ lookup.Client = fakeLookup{}
