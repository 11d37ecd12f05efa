// Package grpc exposes a health-check gRPC endpoint so orchestrators
// can probe the service without going through the HTTP surface.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

type serverLogger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopServerLogger struct{}

func (nopServerLogger) Info(msg string, args ...any)  {}
func (nopServerLogger) Error(msg string, args ...any) {}

// Config controls the gRPC listener.
type Config struct {
	Address          string
	EnableReflection bool
	Keepalive        *keepalive.ServerParameters
}

// Server hosts the health service on a dedicated port.
type Server struct {
	config   *Config
	logger   serverLogger
	grpcSrv  *grpc.Server
	listener net.Listener
	health   *HealthServer
	mu       sync.RWMutex
	running  bool
}

// New creates a gRPC server from the given configuration.
func New(cfg *Config, logger serverLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	if logger == nil {
		logger = nopServerLogger{}
	}
	return &Server{config: cfg, logger: logger}, nil
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener

	var opts []grpc.ServerOption
	opts = append(opts, grpc.ChainUnaryInterceptor(
		recoveryUnaryInterceptor(s.logger),
		loggingUnaryInterceptor(s.logger),
	))
	if s.config.Keepalive != nil {
		opts = append(opts, grpc.KeepaliveParams(*s.config.Keepalive))
	}

	s.grpcSrv = grpc.NewServer(opts...)

	s.health = NewHealthServer()
	grpc_health_v1.RegisterHealthServer(s.grpcSrv, s.health.GetServer())
	s.health.SetServingStatusAll(grpc_health_v1.HealthCheckResponse_SERVING)

	if s.config.EnableReflection {
		reflection.Register(s.grpcSrv)
	}

	s.running = true

	go func() {
		if err := s.grpcSrv.Serve(listener); err != nil {
			s.logger.Error("grpc server stopped", "error", err)
		}
	}()

	return nil
}

// Stop drains in-flight RPCs, forcing a hard stop if ctx expires first.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.health != nil {
		s.health.Shutdown()
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcSrv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcSrv.Stop()
		s.running = false
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}

	s.running = false
	return nil
}

// Health exposes the health server so callers can flip serving status.
func (s *Server) Health() *HealthServer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// Address returns the bound listening address.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
