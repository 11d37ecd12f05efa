package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Name != "mnemo" {
		t.Errorf("app name = %q", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Memory.Backend != "file" {
		t.Errorf("backend = %q, want file", cfg.Memory.Backend)
	}
	if cfg.Memory.ClusterThreshold != 0.25 {
		t.Errorf("cluster threshold = %v, want 0.25", cfg.Memory.ClusterThreshold)
	}
	if cfg.Embedding.Enabled {
		t.Error("embedding should default to disabled")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9191
memory:
  backend: badger
  path: data/memories.db
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Memory.Backend != "badger" {
		t.Errorf("backend = %q, want badger", cfg.Memory.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	// Unset sections keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
	if cfg.Memory.DefaultLimit != 10 {
		t.Errorf("default limit = %d, want 10", cfg.Memory.DefaultLimit)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MNEMO_SERVER_PORT", "7070")
	t.Setenv("MNEMO_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_ExplicitOverridesWin(t *testing.T) {
	t.Setenv("MNEMO_SERVER_PORT", "7070")

	cfg, err := NewLoader().Load("", map[string]interface{}{"server.port": 6060})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("port = %d, want explicit override 6060", cfg.Server.Port)
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	_, err := NewLoader().Load("", map[string]interface{}{"app.environment": "testing"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestValidate_BadgerWithJSONPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Backend = "badger"
	cfg.Memory.Path = "data/memories.json"

	err := ValidateWithDetails(cfg)
	if err == nil {
		t.Fatal("expected cross-field validation error")
	}
	if !strings.Contains(err.Error(), "badger backend expects a directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_EmbeddingRequiresBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedding.Enabled = true
	cfg.Embedding.BaseURL = ""

	err := ValidateWithDetails(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "required when embedding is enabled") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWeightsConfig_Valid(t *testing.T) {
	tests := []struct {
		name string
		w    WeightsConfig
		want bool
	}{
		{"zero value", WeightsConfig{}, false},
		{"sums to one", WeightsConfig{Semantic: 0.35, Keyword: 0.30, Contextual: 0.15, Temporal: 0.10, Metadata: 0.10}, true},
		{"sums high", WeightsConfig{Semantic: 0.8, Keyword: 0.8}, false},
		{"negative", WeightsConfig{Semantic: -0.2, Keyword: 1.2}, false},
	}
	for _, tt := range tests {
		if got := tt.w.Valid(); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080, GRPCPort: 9090}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", got)
	}
	if got := s.GRPCAddr(); got != "127.0.0.1:9090" {
		t.Errorf("GRPCAddr = %q", got)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	watcher, err := NewWatcher(path, NewLoader(), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Stop()

	reloaded := make(chan *Config, 1)
	watcher.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	go watcher.Watch(context.Background())

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
