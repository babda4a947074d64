package docstore

import (
	"context"
	"errors"
)

// Collection is a typed view over one collection of a Store.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](s Store, name string) Collection[T] {
	return Collection[T]{store: s, name: name}
}

func (c Collection[T]) Name() string { return c.name }

func (c Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	if err := c.store.FindByID(ctx, c.name, id, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c Collection[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	var v T
	if err := c.store.FindOne(ctx, c.name, f, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c Collection[T]) Find(ctx context.Context, f Filter) ([]T, error) {
	out := []T{}
	if err := c.store.Find(ctx, c.name, f, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMany fetches ids in order, skipping the ones that no longer resolve.
func (c Collection[T]) GetMany(ctx context.Context, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v, err := c.Get(ctx, id)
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (c Collection[T]) Insert(ctx context.Context, id string, v *T) error {
	return c.store.Insert(ctx, c.name, id, v)
}

func (c Collection[T]) Save(ctx context.Context, id string, v *T) error {
	return c.store.Save(ctx, c.name, id, v)
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}
