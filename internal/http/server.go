// Package http provides the operational HTTP server: health and readiness
// probes plus the Prometheus metrics endpoint. The envelope encryption
// operations themselves are exposed through the CLI, not over HTTP.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/envelope/internal/metrics"
)

// Server represents the operational HTTP server.
type Server struct {
	addr             string
	db               *sql.DB
	logger           *slog.Logger
	metricsProvider  *metrics.Provider
	metricsNamespace string
	router           *gin.Engine
	server           *http.Server
}

// NewServer creates a new operational server. The metrics middleware and the
// metrics endpoint are only registered when a metrics provider is supplied.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) *Server {
	server := &Server{
		addr:             fmt.Sprintf("%s:%d", host, port),
		db:               db,
		logger:           logger,
		metricsProvider:  metricsProvider,
		metricsNamespace: metricsNamespace,
	}
	server.router = server.setupRouter()

	return server
}

// setupRouter builds the Gin router with the operational endpoints.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.metricsProvider.MeterProvider(), s.metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if s.metricsProvider != nil {
		router.GET("/metrics", gin.WrapH(s.metricsProvider.Handler()))
	}

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can do useful work, checking
// each dependency individually so operators see what is failing.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if err := s.pingDatabase(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// pingDatabase checks database connectivity with a short timeout so a hung
// database cannot stall the readiness probe.
func (s *Server) pingDatabase(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database not configured")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.db.PingContext(pingCtx)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the operational HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting operational server", slog.String("addr", s.addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start operational server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the operational HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down operational server")

	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}
