// Package config provides configuration management for the mnemo memory engine.
// Configuration is loaded from defaults, YAML/JSON files, and environment
// variables (MNEMO_ prefix), then validated before use.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the mnemo service.
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Memory    MemoryConfig    `mapstructure:"memory" validate:"required"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,env"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP and gRPC server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" validate:"required"`
	Port            int             `mapstructure:"port" validate:"required,min=1,max=65535"`
	GRPCPort        int             `mapstructure:"grpcport" validate:"min=0,max=65535"`
	ReadTimeout     time.Duration   `mapstructure:"readtimeout"`
	WriteTimeout    time.Duration   `mapstructure:"writetimeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdowntimeout"`
	RateLimit       RateLimitConfig `mapstructure:"ratelimit"`
	CORS            CORSConfig      `mapstructure:"cors"`
}

// CORSConfig controls cross-origin access to the HTTP API.
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowedorigins"`
	AllowedMethods []string `mapstructure:"allowedmethods"`
	AllowedHeaders []string `mapstructure:"allowedheaders"`
	MaxAge         int      `mapstructure:"maxage" validate:"min=0"`
}

// RateLimitConfig bounds inbound request rates on the HTTP API.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"min=0"`
	Burst   int     `mapstructure:"burst" validate:"min=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format    string `mapstructure:"format" validate:"required,oneof=json text"`
	AddSource bool   `mapstructure:"addsource"`
}

// MemoryConfig holds settings for the memory store and ranking engine.
type MemoryConfig struct {
	// Backend selects the persistence layer: "file" or "badger".
	Backend string `mapstructure:"backend" validate:"required,oneof=file badger"`
	// Path is the JSON file path for the file backend, or the
	// database directory for the badger backend.
	Path string `mapstructure:"path" validate:"required"`
	// DefaultLimit caps search results when the caller does not specify one.
	DefaultLimit int `mapstructure:"defaultlimit" validate:"min=0,max=100"`
	// ClusterThreshold is the minimum pairwise similarity for two
	// memories to join the same thematic cluster.
	ClusterThreshold float64 `mapstructure:"clusterthreshold" validate:"min=0,max=1"`
	// Weights override the default relevance signal weights when valid.
	Weights WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig holds relevance signal weights. The five weights should
// sum to 1.0; an all-zero struct means "use built-in defaults".
type WeightsConfig struct {
	Semantic   float64 `mapstructure:"semantic" validate:"min=0,max=1"`
	Keyword    float64 `mapstructure:"keyword" validate:"min=0,max=1"`
	Contextual float64 `mapstructure:"contextual" validate:"min=0,max=1"`
	Temporal   float64 `mapstructure:"temporal" validate:"min=0,max=1"`
	Metadata   float64 `mapstructure:"metadata" validate:"min=0,max=1"`
}

// Valid reports whether the weights are usable: all non-negative and
// summing to approximately 1.0.
func (w WeightsConfig) Valid() bool {
	if w.Semantic < 0 || w.Keyword < 0 || w.Contextual < 0 || w.Temporal < 0 || w.Metadata < 0 {
		return false
	}
	sum := w.Semantic + w.Keyword + w.Contextual + w.Temporal + w.Metadata
	return sum > 0.99 && sum < 1.01
}

// EmbeddingConfig holds settings for the embedding gateway.
type EmbeddingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the root of an OpenAI-compatible embeddings API.
	BaseURL string `mapstructure:"baseurl"`
	APIKey  string `mapstructure:"apikey"`
	Model   string `mapstructure:"model"`
	// ChunkSize is the maximum characters submitted per embedding request.
	// Longer texts are chunked and their vectors averaged.
	ChunkSize int `mapstructure:"chunksize" validate:"min=0"`
	// RPS throttles outbound embedding calls. Zero disables throttling.
	RPS   float64     `mapstructure:"rps" validate:"min=0"`
	Burst int         `mapstructure:"burst" validate:"min=0"`
	Cache CacheConfig `mapstructure:"cache"`
}

// CacheConfig configures the two-tier embedding cache.
type CacheConfig struct {
	// MaxEntries bounds the in-process cache. Zero disables it.
	MaxEntries int64       `mapstructure:"maxentries" validate:"min=0"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the optional shared cache tier.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SynthesisConfig configures AI-generated cluster narratives.
type SynthesisConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Model is the Anthropic model used for cluster summaries.
	// The API key is read from ANTHROPIC_API_KEY.
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"maxtokens" validate:"min=0"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"samplerate" validate:"min=0,max=1"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GRPCAddr returns the gRPC listen address, or "" when disabled.
func (s ServerConfig) GRPCAddr() string {
	if s.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

// IsProduction reports whether the app runs in the production environment.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}
