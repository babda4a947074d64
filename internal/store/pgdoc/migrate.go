package pgdoc

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/5w1tchy/textbooks-api/internal/store/dbx"
)

const createTable = `
CREATE TABLE IF NOT EXISTS documents (
  collection TEXT        NOT NULL,
  id         TEXT        NOT NULL,
  body       JSONB       NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (collection, id)
)`

// constraintName is the index backing one unique field. Postgres folds
// unquoted identifiers to lower case, so the name is built that way too.
func constraintName(coll, field string) string {
	return strings.ToLower(fmt.Sprintf("documents_%s_%s_key", coll, field))
}

// Migrate is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{createTable}

	colls := make([]string, 0, len(s.schema))
	for c := range s.schema {
		colls = append(colls, c)
	}
	sort.Strings(colls)
	for _, c := range colls {
		for _, f := range s.schema[c] {
			stmts = append(stmts, fmt.Sprintf(
				`CREATE UNIQUE INDEX IF NOT EXISTS %s ON documents ((body->>'%s')) WHERE collection = '%s'`,
				constraintName(c, f), f, c,
			))
		}
	}

	err := dbx.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return dbx.ExecAll(ctx, tx, stmts...)
	})
	if err != nil {
		return fmt.Errorf("pgdoc: migrate: %w", err)
	}
	return nil
}
