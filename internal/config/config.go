// Package config loads harness settings from yaml, toml or json files.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Config holds harness settings. Zero values mean "unspecified".
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	// MemoryLimitBytes caps the bytes each script's vector may hold. 0 selects
	// DefaultMemoryLimit.
	MemoryLimitBytes int64 `json:"memory_limit_bytes" yaml:"memory_limit_bytes" toml:"memory_limit_bytes"`

	// Parallel is the number of scripts run concurrently.
	Parallel int `json:"parallel" yaml:"parallel" toml:"parallel"`

	// CapacityHints overrides the initial capacity per element kind name.
	CapacityHints map[string]int `json:"capacity_hints" yaml:"capacity_hints" toml:"capacity_hints"`
}

// DefaultMemoryLimit is the per-script allocation budget when none is configured.
const DefaultMemoryLimit = 1 << 30

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "text",
		MemoryLimitBytes: DefaultMemoryLimit,
		Parallel:         4,
	}
}

// Load reads a configuration file based on its extension and fills
// unspecified fields from Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) fill() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.MemoryLimitBytes == 0 {
		c.MemoryLimitBytes = def.MemoryLimitBytes
	}
	if c.Parallel == 0 {
		c.Parallel = def.Parallel
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.MemoryLimitBytes <= 0 {
		return fmt.Errorf("memory_limit_bytes must be positive, got %d", c.MemoryLimitBytes)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be positive, got %d", c.Parallel)
	}
	for name, hint := range c.CapacityHints {
		if hint < 0 {
			return fmt.Errorf("capacity_hints[%s] must not be negative, got %d", name, hint)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
