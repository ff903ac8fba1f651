package compute

import (
	"gophi/domain/core"
	"gophi/domain/distance"
	"gophi/domain/network"
	"gophi/internal"
	"gophi/internal/cache"
	"gophi/internal/config"
)

// Engine runs irreducibility analyses under one configuration. It holds the
// cache explicitly; two engines never share memoized results unless they
// are given the same Cache.
type Engine struct {
	cfg    config.PhiConfig
	cache  *cache.Cache
	pool   *pool
	logger *internal.Logger
}

// NewEngine creates an engine. A nil cache gets a fresh memory-only cache
// and a nil logger uses the default logger.
func NewEngine(cfg config.PhiConfig, c *cache.Cache, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if c == nil {
		c = cache.New(nil, logger)
	}
	return &Engine{cfg: cfg, cache: c, pool: newPool(cfg.Workers()), logger: logger}
}

// Config returns the engine options.
func (e *Engine) Config() config.PhiConfig { return e.cfg }

// Cache returns the engine cache.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// WithConfig returns an engine sharing this engine's cache and logger under
// different options. Cache keys include every result-changing option, so the
// two never read each other's entries by mistake. The worker pool is shared
// too unless the core count changes.
func (e *Engine) WithConfig(cfg config.PhiConfig) *Engine {
	p := e.pool
	if cfg.Workers() != p.size {
		p = newPool(cfg.Workers())
	}
	return &Engine{cfg: cfg, cache: e.cache, pool: p, logger: e.logger}
}

func (e *Engine) round(x float64) float64 {
	return distance.Round(x, e.cfg.Precision)
}

// repertoireDistance measures r2 against r1 with the configured measure.
func (e *Engine) repertoireDistance(direction core.Direction, r1, r2 network.Repertoire) float64 {
	return distance.RepertoireDistance(e.cfg.Measure, direction, r1.Probs, r2.Probs, e.cfg.Precision)
}

func (e *Engine) conceptKey(s *network.Subsystem, mechanism []int) core.CacheKey {
	return core.ComputeCacheKey(config.KindConcept, s.Hash().String()+"|"+core.FormatNodes(mechanism),
		e.cfg.DependencyValues(config.KindConcept))
}

func (e *Engine) siaKey(s *network.Subsystem) core.CacheKey {
	return core.ComputeCacheKey(config.KindSIA, s.Hash().String(), e.cfg.DependencyValues(config.KindSIA))
}
