// Package boltdoc keeps documents as JSON in an embedded bbolt file.
//
// Each collection is a bucket keyed by document id. Every unique field gets
// its own bucket named "<collection>.<field>" mapping value to owning id.
package boltdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

type Store struct {
	db     *bolt.DB
	schema docstore.Schema
}

// Open opens (or creates) the database file at path.
func Open(path string, schema docstore.Schema) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("boltdoc: create dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltdoc: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for coll, fields := range schema {
			if _, err := tx.CreateBucketIfNotExists([]byte(coll)); err != nil {
				return err
			}
			for _, f := range fields {
				if _, err := tx.CreateBucketIfNotExists(indexBucket(coll, f)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltdoc: create buckets: %w", err)
	}
	return &Store{db: db, schema: schema}, nil
}

func (s *Store) Ping(context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) FindByID(_ context.Context, coll, id string, dst any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(coll))
		if b == nil {
			return docstore.ErrNotFound
		}
		data := b.Get([]byte(id))
		if data == nil {
			return docstore.ErrNotFound
		}
		return json.Unmarshal(data, dst)
	})
}

func (s *Store) FindOne(_ context.Context, coll string, f docstore.Filter, dst any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		docs, err := scan(tx, coll, f, 1)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return docstore.ErrNotFound
		}
		return json.Unmarshal(docs[0], dst)
	})
}

func (s *Store) Find(_ context.Context, coll string, f docstore.Filter, dst any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		docs, err := scan(tx, coll, f, 0)
		if err != nil {
			return err
		}
		return docstore.DecodeArray(docs, dst)
	})
}

func (s *Store) Insert(_ context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	data, fields, err := encode(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(coll))
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) != nil {
			return &docstore.DuplicateKeyError{Collection: coll, Field: "_id", Value: id}
		}
		if err := s.index(tx, coll, id, nil, fields); err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *Store) Save(_ context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	data, fields, err := encode(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(coll))
		if b == nil {
			return docstore.ErrNotFound
		}
		prev := b.Get([]byte(id))
		if prev == nil {
			return docstore.ErrNotFound
		}
		old, err := docstore.Fields(prev)
		if err != nil {
			return err
		}
		if err := s.index(tx, coll, id, old, fields); err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *Store) Delete(_ context.Context, coll, id string) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(coll))
		if b == nil {
			return docstore.ErrNotFound
		}
		prev := b.Get([]byte(id))
		if prev == nil {
			return docstore.ErrNotFound
		}
		old, err := docstore.Fields(prev)
		if err != nil {
			return err
		}
		if err := s.unindex(tx, coll, old); err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// ------------------------------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------------------------------

func encode(doc any) ([]byte, map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("boltdoc: encode: %w", err)
	}
	fields, err := docstore.Fields(data)
	if err != nil {
		return nil, nil, err
	}
	return data, fields, nil
}

// scan walks a collection in key order. ObjectID keys sort by creation time.
func scan(tx *bolt.Tx, coll string, f docstore.Filter, limit int) ([][]byte, error) {
	b := tx.Bucket([]byte(coll))
	if b == nil {
		return nil, nil
	}
	var out [][]byte
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if len(f) > 0 {
			fields, err := docstore.Fields(v)
			if err != nil {
				return nil, err
			}
			if !f.Matches(fields) {
				continue
			}
		}
		out = append(out, append([]byte(nil), v...))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func indexBucket(coll, field string) []byte {
	return []byte(coll + "." + field)
}

// index moves the unique index entries of id from old to fields. It checks
// every field before writing any entry so a conflict leaves the indexes
// untouched.
func (s *Store) index(tx *bolt.Tx, coll, id string, old, fields map[string]any) error {
	type change struct {
		bucket   *bolt.Bucket
		from, to string
		hadFrom  bool
	}
	var changes []change
	for _, f := range s.schema[coll] {
		idx, err := tx.CreateBucketIfNotExists(indexBucket(coll, f))
		if err != nil {
			return err
		}
		from, hadFrom := docstore.FieldString(old, f)
		to, ok := docstore.FieldString(fields, f)
		if !ok {
			if hadFrom {
				if err := idx.Delete([]byte(from)); err != nil {
					return err
				}
			}
			continue
		}
		if hadFrom && from == to {
			continue
		}
		if owner := idx.Get([]byte(to)); owner != nil && string(owner) != id {
			return &docstore.DuplicateKeyError{Collection: coll, Field: f, Value: to}
		}
		changes = append(changes, change{bucket: idx, from: from, to: to, hadFrom: hadFrom})
	}
	for _, c := range changes {
		if c.hadFrom {
			if err := c.bucket.Delete([]byte(c.from)); err != nil {
				return err
			}
		}
		if err := c.bucket.Put([]byte(c.to), []byte(id)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) unindex(tx *bolt.Tx, coll string, old map[string]any) error {
	for _, f := range s.schema[coll] {
		idx := tx.Bucket(indexBucket(coll, f))
		if idx == nil {
			continue
		}
		if v, ok := docstore.FieldString(old, f); ok {
			if err := idx.Delete([]byte(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ docstore.Store = (*Store)(nil)
