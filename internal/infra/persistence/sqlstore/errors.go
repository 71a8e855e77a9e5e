package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"ideospace/pkg/domain"
)

// classify maps a driver error onto the domain sentinels. Connection
// problems are always ErrPersistenceUnavailable; anything else raised by
// a write is ErrWriteFailed.
func classify(op string, err error, write bool) error {
	if write && !unavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistenceUnavailable, err)
}

func unavailable(err error) bool {
	switch {
	case errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
