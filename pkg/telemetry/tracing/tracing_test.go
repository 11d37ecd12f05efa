package tracing

import (
	"context"
	"testing"

	"github.com/mnemo/mnemo/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, "mnemo", "test")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestInit_EmptyEndpoint(t *testing.T) {
	_, err := Init(context.Background(), config.TracingConfig{Enabled: true}, "mnemo", "test")
	if err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"localhost:4317", "localhost:4317"},
		{"  localhost:4317  ", "localhost:4317"},
		{"http://collector:4317", "collector:4317"},
		{"grpc://collector:4317/path", "collector:4317"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
