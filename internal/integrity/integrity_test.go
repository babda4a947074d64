package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

type doc struct {
	Refs []string
}

// memColl is an in-memory Collection that counts reads and writes.
type memColl struct {
	docs    map[string]doc
	gets    []string
	saves   int
	saveErr error
}

func newMem(ids ...string) *memColl {
	m := &memColl{docs: map[string]doc{}}
	for _, id := range ids {
		m.docs[id] = doc{Refs: []string{}}
	}
	return m
}

func (m *memColl) Name() string { return "docs" }

func (m *memColl) Get(_ context.Context, id string) (*doc, error) {
	m.gets = append(m.gets, id)
	d, ok := m.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	cp := doc{Refs: append([]string(nil), d.Refs...)}
	return &cp, nil
}

func (m *memColl) Save(_ context.Context, id string, v *doc) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.docs[id] = *v
	return nil
}

func refsOf(d *doc) *[]string { return &d.Refs }

func TestModifyAllOrNone_Immediate(t *testing.T) {
	m := newMem("a", "b")

	err := ModifyAllOrNone(t.Context(), m, "course", []string{"a", "b"}, func(d *doc) { AddRef(&d.Refs, "owner") })
	require.NoError(t, err)

	assert.Equal(t, []string{"owner"}, m.docs["a"].Refs)
	assert.Equal(t, []string{"owner"}, m.docs["b"].Refs)
	assert.Equal(t, 2, m.saves)
}

func TestModifyAllOrNone_MissingWritesNothing(t *testing.T) {
	m := newMem("a", "c")

	err := ModifyAllOrNone(t.Context(), m, "course", []string{"a", "x", "c", "y"}, func(d *doc) { AddRef(&d.Refs, "owner") })

	var missing *MissingDocumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "x", missing.ID)
	assert.Equal(t, 1, missing.Index)
	assert.Equal(t, "no course found with ID x", missing.Error())

	assert.Zero(t, m.saves)
	assert.Empty(t, m.docs["a"].Refs)
	// short-circuits on the first miss
	assert.Equal(t, []string{"a", "x"}, m.gets)
}

func TestModifyAllOrNone_InvalidIDIsMissing(t *testing.T) {
	m := &memColl{docs: map[string]doc{}}
	bad := &invalidColl{memColl: m}

	err := ModifyAllOrNone[doc](t.Context(), bad, "book", []string{"nope"}, nil)
	var missing *MissingDocumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope", missing.ID)
}

type invalidColl struct{ *memColl }

func (c *invalidColl) Get(context.Context, string) (*doc, error) {
	return nil, &docstore.InvalidIDError{Value: "nope"}
}

func TestModifyAllOrNone_NilUpdateOnlyValidates(t *testing.T) {
	m := newMem("a")
	require.NoError(t, ModifyAllOrNone[doc](t.Context(), m, "book", []string{"a"}, nil))
	assert.Zero(t, m.saves)
}

func TestModifyAllOrNone_StoreErrorPropagates(t *testing.T) {
	m := newMem("a")
	boom := errors.New("boom")
	m.saveErr = boom

	err := ModifyAllOrNone(t.Context(), m, "course", []string{"a"}, func(d *doc) {})
	assert.ErrorIs(t, err, boom)
}

func TestPrepare_DeferredExec(t *testing.T) {
	m := newMem("a", "b")

	p, err := Prepare[doc](t.Context(), m, "course", []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.IDs())
	assert.Equal(t, 2, p.Len())
	assert.Zero(t, m.saves)

	// the owner id only exists after validation
	ownerID := "new-book"
	require.NoError(t, p.Exec(t.Context(), func(d *doc) { AddRef(&d.Refs, ownerID) }))

	assert.Equal(t, []string{"new-book"}, m.docs["a"].Refs)
	assert.Equal(t, []string{"new-book"}, m.docs["b"].Refs)
	// no re-fetch after validation
	assert.Equal(t, []string{"a", "b"}, m.gets)
}

func TestLink_Idempotent(t *testing.T) {
	m := newMem("c")

	require.NoError(t, Link(t.Context(), m, "course", "c", "b1", refsOf))
	require.NoError(t, Link(t.Context(), m, "course", "c", "b1", refsOf))

	assert.Equal(t, []string{"b1"}, m.docs["c"].Refs)
	assert.Equal(t, 1, m.saves)
}

func TestLink_MissingTarget(t *testing.T) {
	m := newMem()
	err := Link(t.Context(), m, "course", "c", "b1", refsOf)
	var missing *MissingDocumentError
	assert.ErrorAs(t, err, &missing)
}

func TestUnlink_Idempotent(t *testing.T) {
	m := newMem("c")
	m.docs["c"] = doc{Refs: []string{"b1", "b2"}}

	require.NoError(t, Unlink(t.Context(), m, "c", "b1", refsOf))
	require.NoError(t, Unlink(t.Context(), m, "c", "b1", refsOf))
	require.NoError(t, Unlink(t.Context(), m, "gone", "b1", refsOf))

	assert.Equal(t, []string{"b2"}, m.docs["c"].Refs)
	assert.Equal(t, 1, m.saves)
}

func TestRefHelpers(t *testing.T) {
	refs := []string{"a"}
	assert.True(t, AddRef(&refs, "b"))
	assert.False(t, AddRef(&refs, "a"))
	assert.Equal(t, []string{"a", "b"}, refs)

	assert.True(t, RemoveRef(&refs, "a"))
	assert.False(t, RemoveRef(&refs, "zzz"))
	assert.Equal(t, []string{"b"}, refs)

	assert.Equal(t, []string{"x", "y"}, Dedupe([]string{"x", "y", "x"}))
	assert.Equal(t, []string{"a", "c"}, Diff([]string{"a", "b", "c"}, []string{"b"}))
	assert.Nil(t, Diff([]string{"a"}, []string{"a"}))
}
