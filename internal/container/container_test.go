package container

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"gophi/app"
	"gophi/internal"
	"gophi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

// TestInitWithStore verifies SIAs are written through to the configured store
func TestInitWithStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Phi.CacheSIAs = true
	cfg.Cache.Enabled = true
	cfg.Cache.Driver = "sqlite"
	cfg.Cache.DSN = "file:" + filepath.Join(t.TempDir(), "cache.db")

	c, err := New(cfg, internal.NewLoggerTo(io.Discard, internal.LogLevelError))
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))
	require.NotNil(t, c.Store)

	_, err = c.Analysis.SIA(ctx, app.AnalysisRequest{Network: "basic"})
	require.NoError(t, err)
	n, err := c.Store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Shutdown(ctx))
	assert.Nil(t, c.Store)
}

// TestInitMemoryOnly verifies no store is opened when disabled
func TestInitMemoryOnly(t *testing.T) {
	c, err := New(config.Default(), internal.NewLoggerTo(io.Discard, internal.LogLevelError))
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	assert.Nil(t, c.Store)
	assert.NotNil(t, c.Analysis)
	assert.NoError(t, c.Shutdown(context.Background()))
}
