package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Geocoding GeocodingConfig `toml:"geocoding"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Storage   StorageConfig   `toml:"storage"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSec     int      `toml:"read_timeout_sec"`
	// Write timeout must cover a worst-case parse: the geocoding budget
	// alone can hold a request for ~17s.
	WriteTimeoutSec int `toml:"write_timeout_sec"`
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// GeocodingConfig represents the external geocoding configuration
type GeocodingConfig struct {
	BaseURL              string  `toml:"base_url"`
	CountryCode          string  `toml:"country_code"`
	RequestDelayMs       int     `toml:"request_delay_ms"`
	MaxLookupsPerRequest int     `toml:"max_lookups_per_request"`
	TimeoutSeconds       int     `toml:"timeout_sec"`
	FallbackName         string  `toml:"fallback_name"`
	FallbackLat          float64 `toml:"fallback_lat"`
	FallbackLng          float64 `toml:"fallback_lng"`
}

// OpenAIConfig represents the reasoning-service configuration
type OpenAIConfig struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_sec"`
}

// StorageConfig represents the sqlite storage configuration
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Geocoding: GeocodingConfig{
			BaseURL:              "https://nominatim.openstreetmap.org",
			CountryCode:          "my",
			RequestDelayMs:       1100,
			MaxLookupsPerRequest: 15,
			TimeoutSeconds:       10,
			FallbackName:         "Kuala Lumpur city centre",
			FallbackLat:          3.1390,
			FallbackLng:          101.6869,
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o",
			MaxTokens:      4096,
			Temperature:    0.2,
			TimeoutSeconds: 90,
		},
		Storage: StorageConfig{
			DBPath: "tripweave.db",
		},
	}
}

// Load loads the configuration from the given TOML file, layered over the
// defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Geocoding.MaxLookupsPerRequest <= 0 {
		return fmt.Errorf("geocoding max_lookups_per_request must be positive")
	}
	if c.Geocoding.RequestDelayMs < 1000 {
		return fmt.Errorf("geocoding request_delay_ms below 1000 violates the 1 rps budget")
	}
	return nil
}

// Addr returns the host:port the server listens on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeout returns the server read timeout as a duration
func (c *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the server write timeout as a duration
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}
