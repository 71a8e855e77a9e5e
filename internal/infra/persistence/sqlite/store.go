// Package sqlite opens the embedded SQLite backend used by default.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"ideospace/internal/infra/persistence/sqlstore"
	"ideospace/pkg/domain"
)

const (
	// DefaultPath is used when no path is configured.
	DefaultPath = "ideospace.db"
	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

var sqlOpen = sqlx.Open

// Open opens (creating if needed) the database at path, enables foreign
// keys and applies pending migrations.
func Open(ctx context.Context, path string, logger sqlstore.Logger) (*sqlstore.Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sqlOpen("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", domain.ErrPersistenceUnavailable, err)
	}
	if err := sqlstore.Migrate(db.DB, sqlstore.DialectSQLite, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(db, sqlstore.DialectSQLite), nil
}

func dsn(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == MemoryPath {
		return "file::memory:?" + pragmas
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + pragmas
}
