// Package api provides HTTP API server components.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mnemo/mnemo/config"
	"github.com/mnemo/mnemo/pkg/api/handlers"
	"github.com/mnemo/mnemo/pkg/api/middleware"
	"github.com/mnemo/mnemo/pkg/logger"

	_ "github.com/mnemo/mnemo/docs/swagger" // API documentation
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Memory handles the memory save/search/cluster endpoints
	Memory *handlers.MemoryHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// WebSocket relays engine events; optional
	WebSocket *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder

	// MetricsHandler serves the Prometheus scrape endpoint; optional
	MetricsHandler http.Handler
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, h *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		r.Use(middleware.RateLimit(limiter))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))

	RegisterRoutes(r, cfg, h)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, cfg *config.Config, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if h.Memory != nil {
			r.Route("/memories", func(r chi.Router) {
				r.Post("/", h.Memory.SaveMemory)
				r.Get("/", h.Memory.List)
				r.Get("/search", h.Memory.Search)
				r.Get("/clusters", h.Memory.Clusters)
				r.Get("/stats", h.Memory.Stats)
			})
		}
	})

	// Health check routes (not versioned)
	if h.Health != nil {
		r.Get("/health", h.Health.Health)
		r.Get("/ready", h.Health.Ready)
		r.Get("/status", h.Health.Status)
	}

	if h.WebSocket != nil {
		r.Get("/ws/events", h.WebSocket.ServeHTTP)
	}

	if h.MetricsHandler != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, h.MetricsHandler)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
