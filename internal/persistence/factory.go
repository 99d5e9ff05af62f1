// Package persistence selects a snapshot backend from the environment.
package persistence

import (
	"context"
	"fmt"
	"os"

	"tenantcore/internal/blob"
	"tenantcore/internal/core"
	"tenantcore/internal/persistence/blobsnap"
	"tenantcore/internal/persistence/postgres"
	"tenantcore/internal/persistence/sqlite"
	"tenantcore/pkg/domain"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverBlob     Driver = "blob"     // snapshot blobs via the blob store
)

// Open selects a backend using environment variables. Defaults to sqlite
// when unset.
//
//	TENANTCORE_STORAGE_DRIVER: memory|sqlite|postgres|blob (default sqlite)
//	TENANTCORE_SQLITE_PATH: path to sqlite file (default ./tenantcore.db)
//	TENANTCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	TENANTCORE_BLOB_*: blob backend selection when driver=blob
func Open(ctx context.Context, engine *domain.RulesEngine) (domain.PersistentStore, error) {
	driver := os.Getenv("TENANTCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return core.NewMemoryStore(engine), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv("TENANTCORE_SQLITE_PATH"), engine)
	case DriverPostgres:
		return postgres.NewStore(os.Getenv("TENANTCORE_POSTGRES_DSN"), engine)
	case DriverBlob:
		blobs, err := blob.Open(ctx)
		if err != nil {
			return nil, err
		}
		return blobsnap.NewStore(ctx, blobs, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
