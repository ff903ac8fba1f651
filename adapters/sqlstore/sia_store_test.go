package sqlstore

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/internal"
	"gophi/internal/cache"
	"gophi/internal/compute"
	"gophi/internal/config"
	"gophi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SIAStoreImpl {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestSIAStoreRoundTrip verifies rows are saved, replaced and flushed
func TestSIAStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := core.ComputeCacheKey("sia", "subject", nil)

	_, err := store.Load(ctx, key)
	assert.True(t, core.IsCacheMiss(err), "got %v", err)

	row := &models.CacheRow{RunID: "run-1", Phi: 1.5, Payload: []byte(`{"phi":1.5}`), CreatedAt: core.Now().String()}
	require.NoError(t, store.Save(ctx, key, row))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key.String(), got.CacheKey)
	assert.Equal(t, 1.5, got.Phi)
	assert.JSONEq(t, `{"phi":1.5}`, string(got.Payload))

	row.Phi = 2.5
	require.NoError(t, store.Save(ctx, key, row))
	got, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.Phi)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Flush(ctx))
	_, err = store.Load(ctx, key)
	assert.True(t, core.IsCacheMiss(err))
}

// TestSIAStoreAcrossEngines verifies a second engine reads SIAs written by the first
func TestSIAStoreAcrossEngines(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)

	cfg := config.DefaultPhi()
	cfg.CacheSIAs = true

	spec := network.BasicSpec()
	net, err := spec.Build()
	require.NoError(t, err)
	s, err := spec.Subsystem(net)
	require.NoError(t, err)

	first, err := compute.NewEngine(cfg, cache.New(store, logger), logger).SIA(ctx, s)
	require.NoError(t, err)

	fresh := cache.New(store, logger)
	second, err := compute.NewEngine(cfg, fresh, logger).SIA(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, first.Phi, second.Phi)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Len(t, second.CES, len(first.CES))
	assert.True(t, second.CutSubsystem.Equal(first.CutSubsystem))
	assert.Equal(t, int64(1), fresh.Stats().Hits)
}
