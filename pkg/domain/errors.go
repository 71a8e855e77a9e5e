package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistenceUnavailable reports that a store cannot reach its backing storage.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrWriteFailed reports that storage rejected an insert, update or delete.
	ErrWriteFailed = errors.New("write failed")
	// ErrPropagation reports that a write succeeded but dependent stores could
	// not be reloaded afterwards.
	ErrPropagation = errors.New("change propagation failed")
	// ErrReentrantDispatch is returned when a handler publishes the event type
	// it is currently handling.
	ErrReentrantDispatch = errors.New("reentrant event dispatch")
	// ErrNotFeedEvent is returned when an outside subscriber asks for a
	// store event instead of a notification feed event.
	ErrNotFeedEvent = errors.New("not a notification feed event")
)

// NotFoundError identifies a record that does not exist in storage.
type NotFoundError struct {
	Kind EntityKind
	ID   int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// PartialSeedError reports that seeding stopped partway through. Rows
// written before the failure are kept.
type PartialSeedError struct {
	Kind   EntityKind
	Seeded int
	Total  int
	Err    error
}

func (e *PartialSeedError) Error() string {
	return fmt.Sprintf("partial %s seed: %d of %d rows written: %v", e.Kind, e.Seeded, e.Total, e.Err)
}

func (e *PartialSeedError) Unwrap() error { return e.Err }
