// Package metrics provides Prometheus metrics instrumentation for mnemo.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for mnemo. A disabled manager
// is safe to use; every record method becomes a no-op.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Memory engine metrics
	memoryWrites    *prometheus.CounterVec
	memoryRejected  prometheus.Counter
	memoryEvictions prometheus.Counter
	memoryCount     prometheus.Gauge
	searchDuration  prometheus.Histogram
	searchResults   prometheus.Histogram
	searchMode      *prometheus.CounterVec
	clusterRuns     prometheus.Counter
	clusterCount    prometheus.Histogram

	// HTTP metrics
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpConnections prometheus.Gauge
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Path    string

	SearchDurationBuckets []float64
	HTTPDurationBuckets   []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Path:    "/metrics",

		SearchDurationBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		HTTPDurationBuckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}

	m.initMemoryMetrics(cfg)
	m.initHTTPMetrics(cfg)

	return m
}

// NoOpManager returns a disabled metrics manager.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
