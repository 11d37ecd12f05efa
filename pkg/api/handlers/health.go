package handlers

import (
	"net/http"

	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/memory"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	engine  *memory.Engine
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(engine *memory.Engine, version string) *HealthHandler {
	return &HealthHandler{
		engine:  engine,
		version: version,
	}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]bool{
			"ready": false,
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{
		"ready": true,
	})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err, getRequestID(r.Context()))
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"memory":  stats,
	})
}
