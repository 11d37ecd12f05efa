package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "MNEMO_"
	// Delimiter is the key delimiter for nested config.
	Delimiter = "."
)

// Loader loads configuration from defaults, files, and the environment.
type Loader struct {
	k *koanf.Koanf
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New(Delimiter),
	}
}

// Load merges configuration sources in priority order: explicit
// overrides, environment variables, the config file, and defaults.
func (l *Loader) Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := l.loadFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		l.loadDefaultFiles()
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := l.k.Load(confmap.Provider(overrides, Delimiter), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	// Koanf replaces nested maps wholesale when a file sets a partial
	// section, so re-apply defaults for any key still unset.
	if err := l.fillDefaults(); err != nil {
		return nil, fmt.Errorf("failed to fill defaults: %w", err)
	}

	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "mapstructure",
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateWithDetails(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := DefaultConfig()
	return l.k.Load(confmap.Provider(map[string]interface{}{
		"app":       defaults.App,
		"server":    defaults.Server,
		"log":       defaults.Log,
		"memory":    defaults.Memory,
		"embedding": defaults.Embedding,
		"synthesis": defaults.Synthesis,
		"metrics":   defaults.Metrics,
		"tracing":   defaults.Tracing,
	}, Delimiter), nil)
}

func (l *Loader) loadFile(path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", filepath.Ext(path))
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}

	return l.k.Load(file.Provider(path), parser)
}

// loadDefaultFiles tries standard config locations in order.
func (l *Loader) loadDefaultFiles() {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"configs/config.yaml",
		"/etc/mnemo/config.yaml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = l.loadFile(path)
			return
		}
	}
}

// loadEnv maps environment variables onto config keys:
// MNEMO_SERVER_PORT -> server.port, MNEMO_LOG_LEVEL -> log.level.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(EnvPrefix, Delimiter, func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "_", Delimiter)
	}), nil)
}

// Get returns a raw configuration value by key.
func (l *Loader) Get(key string) interface{} {
	return l.k.Get(key)
}

// Set sets a configuration value.
func (l *Loader) Set(key string, value interface{}) error {
	return l.k.Set(key, value)
}

// fillDefaults sets any key present in the defaults but absent from the
// merged configuration.
func (l *Loader) fillDefaults() error {
	defaults := structToMap(DefaultConfig(), "")
	for key, value := range defaults {
		if l.k.Get(key) == nil {
			if err := l.k.Set(key, value); err != nil {
				return fmt.Errorf("failed to set default for %s: %w", key, err)
			}
		}
	}
	return nil
}

// structToMap flattens a struct into dot-separated keys using
// mapstructure tags, so defaults need no manual key listing.
func structToMap(v interface{}, prefix string) map[string]interface{} {
	result := make(map[string]interface{})
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + Delimiter + key
		}

		switch fieldVal.Kind() {
		case reflect.Struct:
			for k, v := range structToMap(fieldVal.Interface(), key) {
				result[k] = v
			}
		case reflect.Ptr:
			if !fieldVal.IsNil() {
				for k, v := range structToMap(fieldVal.Elem().Interface(), key) {
					result[k] = v
				}
			}
		default:
			result[key] = fieldVal.Interface()
		}
	}

	return result
}
