package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	m := NewManager(cfg)
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if !m.Enabled() {
		t.Error("Expected metrics to be enabled")
	}
}

func TestNewManager_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false

	m := NewManager(cfg)
	if m.Enabled() {
		t.Error("Expected metrics to be disabled")
	}

	// All record methods must be safe no-ops when disabled.
	m.RecordMemoryWrite("created")
	m.RecordMemoryRejected()
	m.RecordEviction(5)
	m.RecordSearch(time.Millisecond, 3, true)
	m.RecordClusterRun(2)
	m.SetMemoryCount(10)
	m.RecordHTTPRequest("GET", "/api/v1/memories", "200", time.Millisecond)
}

func TestMetricsHandler(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	m := NewManager(cfg)

	m.RecordMemoryWrite("created")
	m.RecordMemoryWrite("consolidated")
	m.RecordSearch(5*time.Millisecond, 4, true)
	m.RecordSearch(2*time.Millisecond, 1, false)
	m.RecordEviction(5)
	m.SetMemoryCount(38)
	m.RecordClusterRun(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, metric := range []string{
		`memory_writes_total{outcome="created"} 1`,
		`memory_writes_total{outcome="consolidated"} 1`,
		`memory_searches_total{mode="hybrid"} 1`,
		`memory_searches_total{mode="lexical"} 1`,
		`memory_evictions_total 5`,
		`memory_working_set_size 38`,
		`memory_cluster_runs_total 1`,
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric %q in output", metric)
		}
	}
}

func TestMetricsHandler_Disabled(t *testing.T) {
	m := NoOpManager()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	m := NewManager(cfg)
	m.RecordHTTPRequest("POST", "/api/v1/memories", "201", 3*time.Millisecond)
	m.IncActiveConnections()
	m.DecActiveConnections()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `http_requests_total{method="POST",path="/api/v1/memories",status="201"} 1`) {
		t.Error("Expected http request counter in output")
	}
}
