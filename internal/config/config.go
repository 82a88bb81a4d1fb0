// Package config loads the application settings.
//
// Sources are applied in order: built-in defaults, a YAML (or JSON) file, and
// TODOMVC_* environment variables. Command line flags are applied last by the
// caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file read when no path is given.
const DefaultPath = "todomvc.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TODOMVC_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverLoam   = "loam"
)

// Config is the full application configuration.
type Config struct {
	Addr                   string      `yaml:"addr" mapstructure:"addr"`
	Namespace              string      `yaml:"namespace" mapstructure:"namespace"`
	Title                  string      `yaml:"title" mapstructure:"title"`
	LogLevel               string      `yaml:"log_level" mapstructure:"log_level"`
	LogJSON                bool        `yaml:"log_json" mapstructure:"log_json"`
	TemplatesDir           string      `yaml:"templates_dir" mapstructure:"templates_dir"`
	Metrics                bool        `yaml:"metrics" mapstructure:"metrics"`
	EncryptionKey          string      `yaml:"encryption_key" mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string    `yaml:"encryption_fallback_keys" mapstructure:"encryption_fallback_keys"`
	Store                  StoreConfig `yaml:"store" mapstructure:"store"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Driver        string        `yaml:"driver" mapstructure:"driver"`
	Path          string        `yaml:"path" mapstructure:"path"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Lock          bool          `yaml:"lock" mapstructure:"lock"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:      ":8080",
		Namespace: "todos-jquery",
		Title:     "TodoMVC",
		LogLevel:  "info",
		Store: StoreConfig{
			Driver:    DriverFile,
			Path:      ".todomvc/store",
			RedisAddr: "localhost:6379",
			Prefix:    "todomvc:",
		},
	}
}

// Load reads path (DefaultPath when empty) and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Environ())
}

// LoadWithEnv is Load with an explicit environment, as returned by os.Environ.
func LoadWithEnv(path string, environ []string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(raw, environ)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed by defaults.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverLoam:
	default:
		return fmt.Errorf("unknown store driver %q (want memory, file, redis or loam)", c.Store.Driver)
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("store ttl must not be negative")
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	raw := map[string]any{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return raw, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// applyEnv overlays TODOMVC_* variables. TODOMVC_STORE_X sets store.x and
// variables ending in _KEYS are split on commas.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))

		var v any = value
		if strings.HasSuffix(key, "_keys") {
			v = splitList(value)
		}

		if rest, ok := strings.CutPrefix(key, "store_"); ok {
			store, _ := raw["store"].(map[string]any)
			if store == nil {
				store = map[string]any{}
				raw["store"] = store
			}
			store[rest] = v
			continue
		}
		raw[key] = v
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decode(raw map[string]any, out *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
