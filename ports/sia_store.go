package ports

import (
	"context"

	"gophi/domain/core"
	"gophi/models"
)

// SIAStore defines the interface for persisting computed SIAs across runs
type SIAStore interface {
	// Load returns the row stored under key, or an error wrapping core.ErrCacheMiss
	Load(ctx context.Context, key core.CacheKey) (*models.CacheRow, error)

	// Save stores a row under key, replacing any previous row
	Save(ctx context.Context, key core.CacheKey, row *models.CacheRow) error

	// Flush removes every stored row
	Flush(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
