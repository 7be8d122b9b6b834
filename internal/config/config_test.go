package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, DefaultEpsilon, cfg.Epsilon)
	assert.Equal(t, "./data/ledger.json", cfg.ResolvedDataPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangidongi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: sqlite
epsilon: 0.001
log_level: debug
metrics_file: /tmp/dangi.prom
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 0.001, cfg.Epsilon)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/dangi.prom", cfg.MetricsFile)
	assert.Equal(t, "./data/ledger.db", cfg.ResolvedDataPath())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("epsilon: [1, 2"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad epsilon env", func(t *testing.T) {
		t.Setenv("DANGI_EPSILON", "tiny")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangidongi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\ndata_path: from-file.db\n"), 0644))

	t.Setenv("DANGI_BACKEND", "json")
	t.Setenv("DANGI_DATA_PATH", "from-env.json")
	t.Setenv("DANGI_EPSILON", "0.01")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Backend)
	assert.Equal(t, "from-env.json", cfg.ResolvedDataPath())
	assert.Equal(t, 0.01, cfg.Epsilon)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite", func(c *Config) { c.Backend = "sqlite" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, true},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }, true},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, true},
		{"unset data path", func(c *Config) { c.DataPath = "" }, false},
		{"blank data path", func(c *Config) { c.DataPath = "   " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
