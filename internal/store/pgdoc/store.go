// Package pgdoc stores documents as JSONB rows of a single PostgreSQL table
// keyed by (collection, id). Unique fields are partial expression indexes.
package pgdoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/textbooks-api/internal/store/dbx"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

type Store struct {
	db     *sql.DB
	schema docstore.Schema
}

// New wraps an open handle. Connect is the usual entry point.
func New(db *sql.DB, schema docstore.Schema) *Store {
	return &Store{db: db, schema: schema}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

func (s *Store) FindByID(ctx context.Context, coll, id string, dst any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`, coll, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("pgdoc: find %s/%s: %w", coll, id, err)
	}
	return json.Unmarshal(body, dst)
}

func (s *Store) FindOne(ctx context.Context, coll string, f docstore.Filter, dst any) error {
	docs, err := s.query(ctx, s.db, coll, f, 1)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return docstore.ErrNotFound
	}
	return json.Unmarshal(docs[0], dst)
}

func (s *Store) Find(ctx context.Context, coll string, f docstore.Filter, dst any) error {
	docs, err := s.query(ctx, s.db, coll, f, 0)
	if err != nil {
		return err
	}
	return docstore.DecodeArray(docs, dst)
}

func (s *Store) Insert(ctx context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	body, fields, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)`, coll, id, string(body),
	)
	if err != nil {
		return s.mapError(err, coll, id, fields)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, coll, id string, doc any) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	body, fields, err := encode(doc)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = $3 WHERE collection = $1 AND id = $2`, coll, id, string(body),
	)
	if err != nil {
		return s.mapError(err, coll, id, fields)
	}
	if dbx.Affected(res) == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := docstore.CheckID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, coll, id,
	)
	if err != nil {
		return fmt.Errorf("pgdoc: delete %s/%s: %w", coll, id, err)
	}
	if dbx.Affected(res) == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) query(ctx context.Context, q dbx.Queryer, coll string, f docstore.Filter, limit int) ([][]byte, error) {
	var sb strings.Builder
	args := []any{coll}
	sb.WriteString(`SELECT body FROM documents WHERE collection = $1`)
	for _, k := range f.Keys() {
		args = append(args, k, f[k])
		fmt.Fprintf(&sb, ` AND body->>$%d = $%d`, len(args)-1, len(args))
	}
	sb.WriteString(` ORDER BY created_at, id`)
	if limit > 0 {
		fmt.Fprintf(&sb, ` LIMIT %d`, limit)
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgdoc: query %s: %w", coll, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

func encode(doc any) ([]byte, map[string]any, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("pgdoc: encode: %w", err)
	}
	fields, err := docstore.Fields(body)
	if err != nil {
		return nil, nil, err
	}
	return body, fields, nil
}

var _ docstore.Store = (*Store)(nil)
