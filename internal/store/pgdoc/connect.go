package pgdoc

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
)

// Connect opens a pooled connection, checks it and creates the documents
// table and its unique indexes when missing.
func Connect(ctx context.Context, dsn string, schema docstore.Schema) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pgdoc: empty connection string")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgdoc: ping: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := New(db, schema)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
