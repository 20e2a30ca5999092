package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 1100, cfg.Geocoding.RequestDelayMs)
	assert.Equal(t, 15, cfg.Geocoding.MaxLookupsPerRequest)
	assert.NoError(t, cfg.Validate())
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[openai]
model = "gpt-4o-mini"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	// Untouched sections keep their defaults
	assert.Equal(t, "my", cfg.Geocoding.CountryCode)
	assert.Equal(t, "tripweave.db", cfg.Storage.DBPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults pass", func(c *Config) {}, true},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, false},
		{"zero lookup cap", func(c *Config) { c.Geocoding.MaxLookupsPerRequest = 0 }, false},
		{"delay under budget", func(c *Config) { c.Geocoding.RequestDelayMs = 500 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
