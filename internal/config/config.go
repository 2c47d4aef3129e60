// Package config loads the poolman daemon configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pmerrors "github.com/vnykmshr/poolman/pkg/common/errors"
)

// File is the structure of a configuration file.
type File struct {
	Name      string          `yaml:"name" json:"name"`
	Threads   int             `yaml:"threads" json:"threads"`
	Log       LogConfig       `yaml:"log" json:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Redis     RedisConfig     `yaml:"redis" json:"redis"`
	Schedules []ScheduleEntry `yaml:"schedules" json:"schedules"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
}

// RedisConfig locates the cache that cleanup jobs evict from.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	DB       int    `yaml:"db" json:"db"`
	Password string `yaml:"password" json:"password"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// ScheduleEntry is one periodic eviction: keys matching Pattern are
// evicted on the Cron expression or every Every duration.
type ScheduleEntry struct {
	ID      string `yaml:"id" json:"id"`
	Cron    string `yaml:"cron" json:"cron"`
	Every   string `yaml:"every" json:"every"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// Interval parses Every. It returns 0 for cron entries.
func (s ScheduleEntry) Interval() (time.Duration, error) {
	if s.Every == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Every)
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Name:    "poolman",
		Threads: 4,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
	}
}

// Load reads a configuration file. The format follows the extension:
// .yaml, .yml or .json. Fields missing from the file keep their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return Parse(data)
	case ".json":
		cfg := Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return cfg, cfg.Validate()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (f *File) Validate() error {
	if f.Threads < 1 {
		return pmerrors.NewValidationError("config", "threads", f.Threads, "must be positive")
	}
	switch strings.ToLower(f.Log.Format) {
	case "", "text", "json":
	default:
		return pmerrors.NewValidationError("config", "log.format", f.Log.Format, "unknown format").
			WithHint("use text or json")
	}
	if f.Metrics.Enabled && f.Metrics.Address == "" {
		return pmerrors.NewValidationError("config", "metrics.address", f.Metrics.Address, "cannot be empty when metrics are enabled")
	}
	if f.Redis.DB < 0 {
		return pmerrors.NewValidationError("config", "redis.db", f.Redis.DB, "must be non-negative")
	}

	seen := make(map[string]bool, len(f.Schedules))
	for i, s := range f.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)
		if s.ID == "" {
			return pmerrors.NewValidationError("config", field+".id", s.ID, "cannot be empty")
		}
		if seen[s.ID] {
			return pmerrors.NewValidationError("config", field+".id", s.ID, "duplicate id")
		}
		seen[s.ID] = true

		if (s.Cron == "") == (s.Every == "") {
			return pmerrors.NewValidationError("config", field, s.ID, "exactly one of cron or every is required")
		}
		if d, err := s.Interval(); err != nil || (s.Every != "" && d <= 0) {
			return pmerrors.NewValidationError("config", field+".every", s.Every, "must be a positive duration")
		}
		if s.Pattern == "" {
			return pmerrors.NewValidationError("config", field+".pattern", s.Pattern, "cannot be empty")
		}
	}
	return nil
}
