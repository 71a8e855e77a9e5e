// Package postgres opens the PostgreSQL backend through the pgx driver.
package postgres

import (
	"context"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/jmoiron/sqlx"

	"ideospace/internal/infra/persistence/sqlstore"
	"ideospace/pkg/domain"
)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/ideospace?sslmode=disable"
)

var (
	sqlOpen = sqlx.Open
	openMu  sync.Mutex
)

// Open connects to dsn and applies pending migrations.
func Open(ctx context.Context, dsn string, logger sqlstore.Logger) (*sqlstore.Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w: %w", domain.ErrPersistenceUnavailable, err)
	}
	if err := sqlstore.Migrate(db.DB, sqlstore.DialectPostgres, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(db, sqlstore.DialectPostgres), nil
}

// OverrideSQLOpen swaps the connection constructor for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sqlx.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
