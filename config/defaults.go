package config

import "time"

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "mnemo",
			Environment: "development",
			Version:     "dev",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			GRPCPort:        9090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     50,
				Burst:   100,
			},
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
				MaxAge:         300,
			},
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			AddSource: false,
		},
		Memory: MemoryConfig{
			Backend:          "file",
			Path:             "data/memories.json",
			DefaultLimit:     10,
			ClusterThreshold: 0.25,
			// Zero weights select the built-in defaults.
			Weights: WeightsConfig{},
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			BaseURL:   "http://localhost:11434/v1",
			Model:     "nomic-embed-text",
			ChunkSize: 8000,
			RPS:       10,
			Burst:     20,
			Cache: CacheConfig{
				MaxEntries: 4096,
				Redis: RedisConfig{
					Enabled: false,
					Addr:    "localhost:6379",
					TTL:     24 * time.Hour,
				},
			},
		},
		Synthesis: SynthesisConfig{
			Enabled:   false,
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 512,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			SampleRate: 0.1,
		},
	}
}
