// Package config resolves runtime settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultEpsilon matches the settlement engine's default tolerance.
const DefaultEpsilon = 1e-6

// Config holds every tunable of the application.
type Config struct {
	// DataPath is where the ledger is stored. Empty picks a per-backend default.
	DataPath string `yaml:"data_path"`

	// Backend is either "json" or "sqlite".
	Backend string `yaml:"backend"`

	// Epsilon is the tolerance below which a balance counts as zero.
	Epsilon float64 `yaml:"epsilon"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	LogFile  string `yaml:"log_file"`

	// MetricsFile, when set, receives Prometheus metrics after each command.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Backend:  BackendJSON,
		Epsilon:  DefaultEpsilon,
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnvOverrides() error {
	c.DataPath = getEnv("DANGI_DATA_PATH", c.DataPath)
	c.Backend = getEnv("DANGI_BACKEND", c.Backend)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("DANGI_LOG_FILE", c.LogFile)
	c.MetricsFile = getEnv("DANGI_METRICS_FILE", c.MetricsFile)

	if v := os.Getenv("DANGI_EPSILON"); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DANGI_EPSILON %q: %w", v, err)
		}
		c.Epsilon = eps
	}
	return nil
}

// ResolvedDataPath returns DataPath, or the backend's default location.
func (c Config) ResolvedDataPath() string {
	if c.DataPath != "" {
		return c.DataPath
	}
	if strings.EqualFold(c.Backend, BackendSQLite) {
		return "./data/ledger.db"
	}
	return "./data/ledger.json"
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	if c.DataPath != "" && strings.TrimSpace(c.DataPath) == "" {
		return errors.New("data path must not be blank")
	}
	if !(c.Epsilon > 0) {
		return errors.New("epsilon must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
