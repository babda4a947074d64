// Package integrity keeps hand-maintained references between collections
// consistent.
//
// ModifyAllOrNone validates a batch of foreign ids before anything is
// written: every document is fetched first, in order, and the first id that
// does not resolve aborts the batch with a MissingDocumentError. Only then
// are the documents updated, either right away or, through Prepare, once the
// caller knows the id of the document that owns the references.
//
// There is no locking. Two requests touching the same document race and the
// later save wins.
package integrity

import (
	"context"
	"errors"
	"fmt"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// Collection is the part of a typed collection the engine needs.
// docstore.Collection satisfies it.
type Collection[T any] interface {
	Name() string
	Get(ctx context.Context, id string) (*T, error)
	Save(ctx context.Context, id string, v *T) error
}

// MissingDocumentError names the first id of a batch that did not resolve.
type MissingDocumentError struct {
	Kind  string
	ID    string
	Index int
}

func (e *MissingDocumentError) Error() string {
	return fmt.Sprintf("no %s found with ID %s", e.Kind, e.ID)
}

// Pending holds a validated batch whose update is not applied yet.
type Pending[T any] struct {
	coll Collection[T]
	ids  []string
	docs []*T
}

// Prepare fetches every id. Duplicates are fetched once. The returned batch
// has written nothing.
func Prepare[T any](ctx context.Context, c Collection[T], kind string, ids []string) (*Pending[T], error) {
	ids = Dedupe(ids)
	p := &Pending[T]{coll: c, ids: ids, docs: make([]*T, 0, len(ids))}
	for i, id := range ids {
		doc, err := c.Get(ctx, id)
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
			return nil, &MissingDocumentError{Kind: kind, ID: id, Index: i}
		}
		if err != nil {
			return nil, fmt.Errorf("integrity: fetch %s %s: %w", kind, id, err)
		}
		p.docs = append(p.docs, doc)
	}
	return p, nil
}

// IDs returns the validated ids in request order.
func (p *Pending[T]) IDs() []string { return p.ids }

// Len is the number of documents in the batch.
func (p *Pending[T]) Len() int { return len(p.docs) }

// Exec applies update to each fetched document and saves it. Every document
// is attempted; failures are joined.
func (p *Pending[T]) Exec(ctx context.Context, update func(*T)) error {
	var errs []error
	for i, doc := range p.docs {
		update(doc)
		if err := p.coll.Save(ctx, p.ids[i], doc); err != nil {
			errs = append(errs, fmt.Errorf("integrity: save %s/%s: %w", p.coll.Name(), p.ids[i], err))
		}
	}
	return errors.Join(errs...)
}

// ModifyAllOrNone validates ids and, when all of them resolve, applies
// update to every document and saves it before returning. A nil update only
// validates.
func ModifyAllOrNone[T any](ctx context.Context, c Collection[T], kind string, ids []string, update func(*T)) error {
	p, err := Prepare(ctx, c, kind, ids)
	if err != nil {
		return err
	}
	if update == nil {
		return nil
	}
	return p.Exec(ctx, update)
}

// Link puts ownerID in the reverse set of target, as returned by refs. Linking twice is a no-op.
func Link[T any](ctx context.Context, c Collection[T], kind, targetID, ownerID string, refs func(*T) *[]string) error {
	doc, err := c.Get(ctx, targetID)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
		return &MissingDocumentError{Kind: kind, ID: targetID}
	}
	if err != nil {
		return err
	}
	if !AddRef(refs(doc), ownerID) {
		return nil
	}
	return c.Save(ctx, targetID, doc)
}

// Unlink drops ownerID from the reverse set of target. A target that is gone,
// or that never held the id, is left alone.
func Unlink[T any](ctx context.Context, c Collection[T], targetID, ownerID string, refs func(*T) *[]string) error {
	doc, err := c.Get(ctx, targetID)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
		return nil
	}
	if err != nil {
		return err
	}
	if !RemoveRef(refs(doc), ownerID) {
		return nil
	}
	return c.Save(ctx, targetID, doc)
}
