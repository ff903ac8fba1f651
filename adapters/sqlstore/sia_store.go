package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"gophi/domain/core"
	"gophi/internal/errors"
	"gophi/internal/migration"
	"gophi/models"
	"gophi/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var _ ports.SIAStore = (*SIAStoreImpl)(nil)

// SIAStoreImpl implements ports.SIAStore over sqlite or PostgreSQL
type SIAStoreImpl struct {
	db *sqlx.DB
}

// Open connects to the store and brings its schema up to date
func Open(ctx context.Context, driver, dsn string) (*SIAStoreImpl, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.CacheStoreError("connect", err)
	}
	if driver == "sqlite" {
		// One writer at a time; concurrent SIAs otherwise hit SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := migration.NewRunner(driver).Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.CacheStoreError("migrate", err)
	}
	return &SIAStoreImpl{db: db}, nil
}

// NewSIAStore wraps an already migrated connection
func NewSIAStore(db *sqlx.DB) *SIAStoreImpl {
	return &SIAStoreImpl{db: db}
}

// Load retrieves the row stored under key
func (r *SIAStoreImpl) Load(ctx context.Context, key core.CacheKey) (*models.CacheRow, error) {
	var row models.CacheRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT cache_key, run_id, phi, payload, created_at
		FROM sia_cache
		WHERE cache_key = ?
	`), key.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrCacheMiss, key.Short())
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Save upserts a row under key
func (r *SIAStoreImpl) Save(ctx context.Context, key core.CacheKey, row *models.CacheRow) error {
	row.CacheKey = key.String()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO sia_cache (cache_key, run_id, phi, payload, created_at)
		VALUES (:cache_key, :run_id, :phi, :payload, :created_at)
		ON CONFLICT (cache_key) DO UPDATE SET
			run_id = excluded.run_id,
			phi = excluded.phi,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, row)
	return err
}

// Flush removes every row
func (r *SIAStoreImpl) Flush(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sia_cache`)
	return err
}

// Count returns the number of stored rows
func (r *SIAStoreImpl) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sia_cache`)
	return n, err
}

// Close closes the connection
func (r *SIAStoreImpl) Close() error {
	return r.db.Close()
}
