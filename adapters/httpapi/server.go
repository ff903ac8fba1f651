package httpapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"gophi/app"
	"gophi/internal"
	"gophi/internal/config"

	"github.com/gin-gonic/gin"
)

// Server exposes the analysis service over HTTP
type Server struct {
	router  *gin.Engine
	service *app.AnalysisService
	cfg     config.ServerConfig
	logger  *internal.Logger
}

// NewServer creates a server and registers its routes
func NewServer(service *app.AnalysisService, cfg config.ServerConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		cfg:     cfg,
		logger:  logger.WithComponent("HTTP"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestLogger(s.logger))
	if s.cfg.Timeout > 0 {
		s.router.Use(RequestTimeout(s.cfg.Timeout))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	{
		v1.POST("/sia", s.handleSIA)
		v1.POST("/ces", s.handleCES)
		v1.POST("/complexes", s.handleComplexes)
		v1.POST("/cuts", s.handleCuts)
		v1.POST("/cache/flush", s.handleFlush)
		v1.GET("/cache/stats", s.handleCacheStats)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
