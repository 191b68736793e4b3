package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/automata/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "automata.yaml"

// Config is the runtime configuration of the CLI and servers.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	TimeStep time.Duration `mapstructure:"time_step"`
	Library  string        `mapstructure:"library"`
	Store    StoreConfig   `mapstructure:"store"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

type StoreConfig struct {
	// Backend is one of "memory", "file" or "redis".
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() map[string]any {
	return map[string]any{
		"log_level": "info",
		"time_step": "20ms",
		"library":   "",
		"store": map[string]any{
			"backend": "memory",
			"path":    ".automata/machines",
			"redis": map[string]any{
				"addr":   "localhost:6379",
				"prefix": "automata:machine:",
			},
		},
		"http": map[string]any{
			"addr": ":8080",
		},
		"metrics": map[string]any{
			"enabled": true,
		},
	}
}

// Load reads a YAML config file and merges it over Defaults.
// A missing file is not an error: the defaults apply.
func Load(path string) (*Config, error) {
	raw := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		merge(raw, file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Decode(raw)
}

// Decode turns a raw map into a Config. Durations accept "20ms" or bare
// milliseconds.
func Decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			schema.MillisecondsHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid config: unknown store backend %q", c.Store.Backend)
	}
	if c.TimeStep < time.Millisecond || c.TimeStep > time.Second {
		return fmt.Errorf("invalid config: time_step %s not in [1ms, 1s]", c.TimeStep)
	}
	return nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}
