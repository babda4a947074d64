package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/textbooks-api/internal/logging"
	"github.com/5w1tchy/textbooks-api/internal/lookup"
	"github.com/5w1tchy/textbooks-api/internal/store/boltdoc"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

var fixedNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

type fakeLookup map[string]*lookup.Volume

func (f fakeLookup) Lookup(_ context.Context, isbn string) (*lookup.Volume, error) {
	if v, ok := f[isbn]; ok {
		return v, nil
	}
	return nil, lookup.ErrNotFound
}

type fakeImages struct{}

func (fakeImages) GeneratePresignedUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://bucket.test/" + key + "?upload", nil
}

func (fakeImages) GeneratePresignedDownloadURL(_ context.Context, key string) (string, error) {
	return "https://bucket.test/" + key, nil
}

type recordingPurger struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPurger) Enqueue(keys ...string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, keys...)
	return len(keys)
}

// failingStore fails every Save into one collection.
type failingStore struct {
	docstore.Store
	coll string
}

func (s failingStore) Save(ctx context.Context, coll, id string, doc any) error {
	if coll == s.coll {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, coll, id, doc)
}

func openStore(t *testing.T) docstore.Store {
	t.Helper()
	s, err := boltdoc.Open(filepath.Join(t.TempDir(), "svc.db"), docstore.DefaultSchema())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Store:             openStore(t),
		Lookup:            fakeLookup{},
		Log:               logging.Discard(),
		PruneStaleCourses: true,
		Now:               func() time.Time { return fixedNow },
	}
}

func newServices(t *testing.T) *Services {
	return New(newDeps(t))
}

func mustCourse(t *testing.T, svc *Services, dept, num string) string {
	t.Helper()
	c, created, err := svc.Courses.Create(t.Context(), CourseInput{Department: dept, Number: num, Title: dept + num})
	require.NoError(t, err)
	require.True(t, created)
	return c.ID
}

func mustBook(t *testing.T, svc *Services, isbn string, courses ...string) string {
	t.Helper()
	b, err := svc.Books.Create(t.Context(), CreateBookInput{ISBN: isbn, Title: "T", Authors: []string{"A"}, Courses: courses})
	require.NoError(t, err)
	return b.ID
}

func mustUser(t *testing.T, svc *Services, fid string) string {
	t.Helper()
	u, err := svc.Users.Create(t.Context(), CreateUserInput{FirebaseID: fid, DisplayName: "name-" + fid, Email: fid + "@example.com"})
	require.NoError(t, err)
	return u.ID
}

func price(p float64) *float64 { return &p }
