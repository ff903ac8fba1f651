package migration

import (
	"context"
	"fmt"

	"gophi/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles the cache store schema. Column types differ
// between the sqlite and postgres dialects; everything else is shared.
type MigrationRunner struct {
	version string
	driver  string
}

// NewRunner creates a new migration runner for driver (sqlite or postgres)
func NewRunner(driver string) *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		driver:  driver,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSIACacheTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create sia_cache table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) blobType() string {
	if r.driver == "postgres" {
		return "BYTEA"
	}
	return "BLOB"
}

func (r *MigrationRunner) createSIACacheTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sia_cache (
			cache_key VARCHAR(64) PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL DEFAULT '',
			phi DOUBLE PRECISION NOT NULL,
			payload %s NOT NULL,
			created_at VARCHAR(40) NOT NULL
		)
	`, r.blobType()))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_sia_cache_run_id ON sia_cache(run_id)
	`)
	return err
}
