// Package archive exports settled snapshots of ideology space to an
// object store whenever the data changes.
package archive

import "ideospace/internal/archive/store"

type (
	// Driver identifies an archive backend.
	Driver = store.Driver
	// PutOptions configures an object write.
	PutOptions = store.PutOptions
	// Info describes a stored object.
	Info = store.Info
	// Store is the interface archive backends implement.
	Store = store.Store
)

const (
	DriverNone       = store.DriverNone
	DriverMemory     = store.DriverMemory
	DriverFilesystem = store.DriverFilesystem
	DriverS3         = store.DriverS3
)

var (
	// ErrExists is returned when writing to a key that is already taken.
	ErrExists = store.ErrExists
	// ErrNotFound is returned when reading a key that does not exist.
	ErrNotFound = store.ErrNotFound
)
