package cache

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/internal"
	"gophi/internal/errors"
	"gophi/models"
	"gophi/ports"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes concepts and SIAs for one engine. Entries are keyed by
// content hashes, so equal subsystems built separately share entries.
type Cache struct {
	concepts sync.Map // core.CacheKey -> models.Concept
	sias     sync.Map // core.CacheKey -> *models.SIA
	store    ports.SIAStore
	flight   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64

	logger *internal.Logger
}

// Stats reports memo effectiveness.
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Concepts int   `json:"concepts"`
	SIAs     int   `json:"sias"`
}

// New creates a cache. store may be nil for a memory-only cache.
func New(store ports.SIAStore, logger *internal.Logger) *Cache {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Cache{store: store, logger: logger.WithComponent("Cache")}
}

// GetConcept returns the memoized concept for key.
func (c *Cache) GetConcept(key core.CacheKey) (models.Concept, bool) {
	v, ok := c.concepts.Load(key)
	if !ok {
		c.misses.Add(1)
		return models.Concept{}, false
	}
	c.hits.Add(1)
	return v.(models.Concept), true
}

// PutConcept memoizes a concept and returns the stored value. A racing
// writer may have stored first; its value is equal and is kept.
func (c *Cache) PutConcept(key core.CacheKey, concept models.Concept) models.Concept {
	v, _ := c.concepts.LoadOrStore(key, concept)
	return v.(models.Concept)
}

// Concept returns the concept memoized under key, or computes and memoizes
// it. Concurrent misses on one key share a single computation.
func (c *Cache) Concept(key core.CacheKey, compute func() models.Concept) models.Concept {
	if v, ok := c.GetConcept(key); ok {
		return v
	}
	v, _, _ := c.flight.Do("concept:"+key.String(), func() (interface{}, error) {
		if v, ok := c.concepts.Load(key); ok {
			return v, nil
		}
		return c.PutConcept(key, compute()), nil
	})
	return v.(models.Concept)
}

// SIA returns the SIA memoized or stored under key, or computes it and
// writes it through. Concurrent misses on one key share a single
// computation. Store failures are logged and never fail the call.
func (c *Cache) SIA(ctx context.Context, key core.CacheKey, subsystem *network.Subsystem, compute func(context.Context) (*models.SIA, error)) (*models.SIA, error) {
	fill := func() (interface{}, error) {
		cached, ok, err := c.GetSIA(ctx, key, subsystem)
		if err != nil {
			c.logger.Warn("lookup of %s failed: %v", key.Short(), err)
		} else if ok {
			c.logger.Debug("hit for %s", subsystem)
			return cached, nil
		}

		sia, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		stored, err := c.PutSIA(ctx, key, sia)
		if err != nil {
			c.logger.Warn("could not store SIA for %s: %v", subsystem, err)
		}
		return stored, nil
	}

	v, err, shared := c.flight.Do("sia:"+key.String(), fill)
	// A shared computation aborted by its leader's context is redone under ours.
	if err != nil && shared && ctx.Err() == nil && isContextError(err) {
		v, err = fill()
	}
	if err != nil {
		return nil, err
	}
	return v.(*models.SIA), nil
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// GetSIA looks key up in memory and then in the store. Stored payloads are
// rehydrated against subsystem.
func (c *Cache) GetSIA(ctx context.Context, key core.CacheKey, subsystem *network.Subsystem) (*models.SIA, bool, error) {
	if v, ok := c.sias.Load(key); ok {
		c.hits.Add(1)
		return v.(*models.SIA), true, nil
	}
	if c.store == nil {
		c.misses.Add(1)
		return nil, false, nil
	}

	row, err := c.store.Load(ctx, key)
	if err != nil {
		if core.IsCacheMiss(err) {
			c.misses.Add(1)
			return nil, false, nil
		}
		return nil, false, errors.CacheStoreError("load", err)
	}
	sia, err := models.UnmarshalSIA(row.Payload, subsystem)
	if err != nil {
		c.logger.Warn("discarding stored SIA %s: %v", key.Short(), err)
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	v, _ := c.sias.LoadOrStore(key, sia)
	return v.(*models.SIA), true, nil
}

// PutSIA memoizes sia and writes it through to the store.
func (c *Cache) PutSIA(ctx context.Context, key core.CacheKey, sia *models.SIA) (*models.SIA, error) {
	v, loaded := c.sias.LoadOrStore(key, sia)
	stored := v.(*models.SIA)
	if loaded || c.store == nil {
		return stored, nil
	}

	payload, err := models.MarshalSIA(sia)
	if err != nil {
		return stored, errors.CacheStoreError("encode", err)
	}
	row := &models.CacheRow{
		CacheKey:  key.String(),
		RunID:     sia.RunID.String(),
		Phi:       sia.Phi,
		Payload:   payload,
		CreatedAt: core.Now().String(),
	}
	if err := c.store.Save(ctx, key, row); err != nil {
		return stored, errors.CacheStoreError("save", err)
	}
	c.logger.Debug("stored SIA %s (Φ=%g)", key.Short(), sia.Phi)
	return stored, nil
}

// Flush clears the memo and the store.
func (c *Cache) Flush(ctx context.Context) error {
	c.concepts.Range(func(k, _ interface{}) bool {
		c.concepts.Delete(k)
		return true
	})
	c.sias.Range(func(k, _ interface{}) bool {
		c.sias.Delete(k)
		return true
	})
	c.hits.Store(0)
	c.misses.Store(0)
	if c.store != nil {
		if err := c.store.Flush(ctx); err != nil {
			return errors.CacheStoreError("flush", err)
		}
	}
	c.logger.Info("cache flushed")
	return nil
}

// Stats returns hit and miss counts and entry counts.
func (c *Cache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	c.concepts.Range(func(_, _ interface{}) bool {
		s.Concepts++
		return true
	})
	c.sias.Range(func(_, _ interface{}) bool {
		s.SIAs++
		return true
	})
	return s
}
