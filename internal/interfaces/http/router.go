// Package http assembles the Gin engine, routes, and HTTP server lifecycle.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/infrastructure/monitoring"
	"github.com/turtacn/ueba/internal/interfaces/http/handlers"
	"github.com/turtacn/ueba/internal/interfaces/http/middleware"
	"github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// Router owns the Gin engine and the HTTP server.
type Router struct {
	engine             *gin.Engine
	config             *config.Config
	logger             logger.Logger
	metrics            *monitoring.Metrics
	tracing            *monitoring.TracingManager
	analyzeHandler     *handlers.AnalyzeHandler
	personalityHandler *handlers.PersonalityHandler
	healthHandler      *handlers.HealthHandler
	server             *http.Server
}

// NewRouter creates the router. SetupRoutes wires the endpoints.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	metrics *monitoring.Metrics,
	tracing *monitoring.TracingManager,
	analyzeHandler *handlers.AnalyzeHandler,
	personalityHandler *handlers.PersonalityHandler,
	healthHandler *handlers.HealthHandler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:             gin.New(),
		config:             cfg,
		logger:             log.WithComponent("Router"),
		metrics:            metrics,
		tracing:            tracing,
		analyzeHandler:     analyzeHandler,
		personalityHandler: personalityHandler,
		healthHandler:      healthHandler,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(handlers.LoggingMiddleware(r.logger))
	r.engine.Use(middleware.Observability(r.tracing, r.metrics))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	r.engine.Use(cors.New(corsConfig))

	r.engine.GET("/health/live", r.healthHandler.Liveness)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{})))

	if r.config.Pprof {
		pprof.Register(r.engine)
	}

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/analyze", r.analyzeHandler.Analyze)
		v1.GET("/users/:user_id/ocean", r.personalityHandler.GetProfile)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		handlers.SendError(c, errors.ErrNotFound("route", c.Request.URL.Path))
	})
}

// Engine exposes the underlying engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start runs the HTTP server until the listener fails or Shutdown is called.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting http server", logger.String("addr", addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}
