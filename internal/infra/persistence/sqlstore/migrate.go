package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"ideospace/internal/infra/persistence/sqlstore/migrations"
)

// Logger receives migration progress lines.
type Logger interface {
	Debug(msg string, args ...any)
}

type migrationLogger struct {
	logger Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrationLogger) Verbose() bool { return false }

// Migrate applies every pending embedded migration for dialect. The
// database handle stays open; closing it remains the caller's job.
func Migrate(db *sql.DB, dialect Dialect, logger Logger) error {
	src, err := iofs.New(migrations.FS, string(dialect))
	if err != nil {
		return fmt.Errorf("load %s migrations: %w", dialect, err)
	}
	var driver database.Driver
	switch dialect {
	case DialectSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DialectPostgres:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return fmt.Errorf("migrate: unknown dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("migrate %s driver: %w", dialect, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	if logger != nil {
		m.Log = migrationLogger{logger: logger}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s up: %w", dialect, err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate %s version: %w", dialect, err)
	}
	if dirty {
		return fmt.Errorf("migrate %s: schema version %d is dirty", dialect, version)
	}
	return nil
}
