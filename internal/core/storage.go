package core

import (
	"context"
	"fmt"

	"ideospace/internal/infra/persistence/memory"
	"ideospace/internal/infra/persistence/postgres"
	"ideospace/internal/infra/persistence/sqlite"
	"ideospace/internal/platform/config"
	"ideospace/pkg/domain"
)

// StorageDriver identifies a concrete persistence backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenGateway opens the backend selected by cfg. Defaults to sqlite when
// the driver is unset. SQL backends are migrated before they are returned.
func OpenGateway(ctx context.Context, cfg config.Storage, logger Logger) (domain.Gateway, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened", "driver", string(driver), "path", cfg.SQLitePath)
		return store, nil
	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened", "driver", string(driver))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
