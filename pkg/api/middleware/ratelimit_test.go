package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var statuses []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/v1/memories", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("expected first two requests to pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request limited, got %d", statuses[2])
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("GET", "/api/v1/memories", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first client blocked: %d", w.Code)
	}

	// A different client has its own bucket.
	second := httptest.NewRequest("GET", "/api/v1/memories", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Errorf("second client should not share the first's bucket: %d", w.Code)
	}
}

func TestRateLimit_SkipsHealth(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("health probe limited on attempt %d", i+1)
		}
	}
}
