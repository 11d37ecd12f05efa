package grpc

import (
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer wraps the standard gRPC health service.
type HealthServer struct {
	server *health.Server
}

// NewHealthServer creates a health service reporting SERVING by default.
func NewHealthServer() *HealthServer {
	return &HealthServer{server: health.NewServer()}
}

// SetServingStatus sets the serving status for a named service.
func (h *HealthServer) SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus(service, status)
}

// SetServingStatusAll sets the serving status for the blank service,
// which health probes treat as the whole process.
func (h *HealthServer) SetServingStatusAll(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
}

// Shutdown transitions all services to NOT_SERVING.
func (h *HealthServer) Shutdown() {
	h.server.Shutdown()
}

// Resume transitions all services back to SERVING.
func (h *HealthServer) Resume() {
	h.server.Resume()
}

// GetServer returns the underlying health server for registration.
func (h *HealthServer) GetServer() *health.Server {
	return h.server
}
