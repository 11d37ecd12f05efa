package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initMemoryMetrics initializes memory engine metrics. The Manager
// implements memory.Recorder through the Record* methods below.
func (m *Manager) initMemoryMetrics(cfg Config) {
	m.memoryWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_writes_total",
			Help: "Total number of memory writes by outcome (created or consolidated)",
		},
		[]string{"outcome"},
	)

	m.memoryRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_rejected_total",
			Help: "Total number of rejected memory writes",
		},
	)

	m.memoryEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_evictions_total",
			Help: "Total number of memories evicted by capacity trimming",
		},
	)

	m.memoryCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_working_set_size",
			Help: "Current number of memories in the working set",
		},
	)

	m.searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_search_duration_seconds",
			Help:    "Memory search duration in seconds",
			Buckets: cfg.SearchDurationBuckets,
		},
	)

	m.searchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	m.searchMode = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_searches_total",
			Help: "Total number of searches by scoring mode (hybrid or lexical)",
		},
		[]string{"mode"},
	)

	m.clusterRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_cluster_runs_total",
			Help: "Total number of clustering runs",
		},
	)

	m.clusterCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_clusters_per_run",
			Help:    "Number of clusters produced per run",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	m.registry.MustRegister(m.memoryWrites)
	m.registry.MustRegister(m.memoryRejected)
	m.registry.MustRegister(m.memoryEvictions)
	m.registry.MustRegister(m.memoryCount)
	m.registry.MustRegister(m.searchDuration)
	m.registry.MustRegister(m.searchResults)
	m.registry.MustRegister(m.searchMode)
	m.registry.MustRegister(m.clusterRuns)
	m.registry.MustRegister(m.clusterCount)
}

// RecordMemoryWrite records a memory write by outcome.
func (m *Manager) RecordMemoryWrite(outcome string) {
	if !m.enabled {
		return
	}
	m.memoryWrites.WithLabelValues(outcome).Inc()
}

// RecordMemoryRejected records a rejected write.
func (m *Manager) RecordMemoryRejected() {
	if !m.enabled {
		return
	}
	m.memoryRejected.Inc()
}

// RecordEviction records memories evicted by capacity trimming.
func (m *Manager) RecordEviction(count int) {
	if !m.enabled || count <= 0 {
		return
	}
	m.memoryEvictions.Add(float64(count))
}

// RecordSearch records a search with its duration, result count, and
// whether semantic vectors contributed to scoring.
func (m *Manager) RecordSearch(duration time.Duration, results int, usedEmbeddings bool) {
	if !m.enabled {
		return
	}
	m.searchDuration.Observe(duration.Seconds())
	m.searchResults.Observe(float64(results))
	mode := "lexical"
	if usedEmbeddings {
		mode = "hybrid"
	}
	m.searchMode.WithLabelValues(mode).Inc()
}

// RecordClusterRun records a clustering run and its cluster count.
func (m *Manager) RecordClusterRun(clusters int) {
	if !m.enabled {
		return
	}
	m.clusterRuns.Inc()
	m.clusterCount.Observe(float64(clusters))
}

// SetMemoryCount sets the current working set size.
func (m *Manager) SetMemoryCount(count int) {
	if !m.enabled {
		return
	}
	m.memoryCount.Set(float64(count))
}
