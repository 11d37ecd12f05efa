// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mnemo/mnemo/pkg/api/middleware"
	"github.com/mnemo/mnemo/pkg/api/models"
	"github.com/mnemo/mnemo/pkg/api/response"
	"github.com/mnemo/mnemo/pkg/memory"
)

const maxRequestBody = 1 << 20

// MemoryHandler handles memory-related API endpoints.
type MemoryHandler struct {
	engine *memory.Engine
	logger memoryLogger
}

type memoryLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(engine *memory.Engine, log memoryLogger) *MemoryHandler {
	return &MemoryHandler{
		engine: engine,
		logger: log,
	}
}

// SaveMemory handles POST /api/v1/memories
func (h *MemoryHandler) SaveMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SaveMemoryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	mem, outcome, err := h.engine.SaveMemory(ctx, req.Content)
	if err != nil {
		h.logger.Error("Failed to save memory", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	status := http.StatusCreated
	if outcome == memory.OutcomeConsolidated {
		status = http.StatusOK
	}
	response.JSON(w, status, models.SaveMemoryResponse{
		Memory:  mem,
		Outcome: string(outcome),
	})
}

// Search handles GET /api/v1/memories/search?q=...&limit=N
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	limit := intQueryParam(r, "limit", 0)

	results, err := h.engine.Search(ctx, query, limit)
	if err != nil {
		h.logger.Error("Search failed", "query", query, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}

// List handles GET /api/v1/memories?limit=N
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := intQueryParam(r, "limit", 0)

	memories, err := h.engine.ListRecent(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list memories", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.ListResponse{
		Memories: memories,
		Count:    len(memories),
	})
}

// Clusters handles GET /api/v1/memories/clusters?q=...
func (h *MemoryHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	clusters, err := h.engine.Clusters(ctx, nil, query)
	if err != nil {
		h.logger.Error("Clustering failed", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.ClustersResponse{
		Clusters: clusters,
		Count:    len(clusters),
	})
}

// Stats handles GET /api/v1/memories/stats
func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.engine.Stats(ctx)
	if err != nil {
		h.logger.Error("Failed to compute stats", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func getRequestID(ctx context.Context) string {
	if id := middleware.GetRequestID(ctx); id != "" {
		return id
	}
	return "unknown"
}
