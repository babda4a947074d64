// Package connect opens the document backend named by a connection string.
package connect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/5w1tchy/textbooks-api/internal/store/boltdoc"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
	"github.com/5w1tchy/textbooks-api/internal/store/mongodoc"
	"github.com/5w1tchy/textbooks-api/internal/store/pgdoc"
)

const defaultDatabase = "textbooks"

// Backend returns the backend name for dsn, or an error for unknown schemes.
func Backend(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return "mongo", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", nil
	case strings.HasPrefix(dsn, "bolt://"), strings.HasPrefix(dsn, "file://"):
		return "bolt", nil
	}
	return "", fmt.Errorf("unsupported database url %q (want mongodb://, postgres:// or bolt://)", redact(dsn))
}

// Open connects to dsn. dbName only matters for MongoDB; when empty the path
// of the url is used, then "textbooks".
func Open(ctx context.Context, dsn, dbName string) (docstore.Store, error) {
	backend, err := Backend(dsn)
	if err != nil {
		return nil, err
	}
	schema := docstore.DefaultSchema()

	switch backend {
	case "mongo":
		if dbName == "" {
			dbName = databaseFromURL(dsn)
		}
		return mongodoc.Connect(ctx, dsn, dbName, schema)
	case "postgres":
		return pgdoc.Connect(ctx, dsn, schema)
	default:
		return boltdoc.Open(BoltPath(dsn), schema)
	}
}

// BoltPath strips the scheme: bolt://data/x.db is the relative path
// data/x.db and bolt:///var/x.db is absolute.
func BoltPath(dsn string) string {
	for _, p := range []string{"bolt://", "file://"} {
		if rest, ok := strings.CutPrefix(dsn, p); ok {
			return rest
		}
	}
	return dsn
}

func databaseFromURL(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return defaultDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultDatabase
}

// redact hides credentials before a url ends up in an error or a log line.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
