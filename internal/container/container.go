package container

import (
	"context"
	"fmt"

	"gophi/adapters/sqlstore"
	"gophi/app"
	"gophi/internal"
	"gophi/internal/config"
	"gophi/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Store *sqlstore.SIAStoreImpl // nil unless the cache store is enabled

	// Services
	Analysis *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}
	return c, nil
}

// Init connects the cache store when enabled and builds the services
func (c *Container) Init(ctx context.Context) error {
	var store ports.SIAStore
	if c.Config.Cache.Enabled {
		s, err := sqlstore.Open(ctx, c.Config.Cache.Driver, c.Config.Cache.DSN)
		if err != nil {
			return fmt.Errorf("failed to open cache store: %w", err)
		}
		c.Store = s
		store = s
		c.Logger.WithComponent("Container").Debug("cache store %s opened", c.Config.Cache.Driver)
	}

	c.Analysis = app.NewAnalysisService(c.Config, store, c.Logger)
	return nil
}

// Shutdown releases the cache store
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("failed to close cache store: %w", err)
	}
	c.Store = nil
	return nil
}
