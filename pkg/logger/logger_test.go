package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"unknown", InfoLevel}, // default
		{"", InfoLevel},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "debug"},
		{InfoLevel, "info"},
		{WarnLevel, "warn"},
		{ErrorLevel, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := tt.level.String()
			if result != tt.expected {
				t.Errorf("Level.String() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log := New(nil)
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	log = New(&Config{Level: DebugLevel, Format: "text"})
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestJSONOutputRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: InfoLevel, Format: "json", Output: &buf})

	log.Info("hello", "key", "value")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if record["message"] != "hello" {
		t.Errorf("expected message key, got %v", record)
	}
	if record["level"] != "INFO" {
		t.Errorf("expected level key, got %v", record)
	}
	if record["key"] != "value" {
		t.Errorf("expected attribute to pass through, got %v", record)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: InfoLevel, Format: "text", Output: &buf})

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message logged at info level: %s", buf.String())
	}

	log.SetLevel(DebugLevel)
	if log.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v, want %v", log.GetLevel(), DebugLevel)
	}

	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug message not logged at debug level: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: InfoLevel, Format: "text", Output: &buf})

	derived := log.With("component", "store")
	derived.Info("loaded")

	if !strings.Contains(buf.String(), "component=store") {
		t.Errorf("expected derived attributes in output: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: InfoLevel, Format: "text", Output: &buf})

	ctx := log.WithContext(context.Background())
	got := FromContext(ctx)
	if got != log {
		t.Error("expected logger from context")
	}

	// Missing logger falls back to the global.
	if FromContext(context.Background()) == nil {
		t.Error("expected global fallback")
	}
}
