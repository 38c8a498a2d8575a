// Package config provides configuration management for the research
// search service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names recognized by the service.
const (
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"
	// EnvProduction enables static asset serving.
	EnvProduction = "production"
)

// Config holds all configuration for the research search service.
type Config struct {
	// Environment selects runtime behavior (development, production).
	Environment string `mapstructure:"environment"`
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Search contains search request bounds.
	Search SearchConfig `mapstructure:"search"`
	// RateLimit contains per-client admission settings.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// CrossRef contains upstream metadata service settings.
	CrossRef CrossRefConfig `mapstructure:"crossref"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// Port is the HTTP server port (default: 3000).
	Port int `mapstructure:"port"`
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// StaticDir is the directory served in the production environment.
	StaticDir string `mapstructure:"static_dir"`
}

// SearchConfig holds search request bounds.
type SearchConfig struct {
	// MaxRows is the upper bound on requested result rows (default: 25).
	MaxRows int `mapstructure:"max_rows"`
	// DefaultRows is used when the client omits the rows parameter (default: 20).
	DefaultRows int `mapstructure:"default_rows"`
}

// RateLimitConfig holds per-client admission settings.
type RateLimitConfig struct {
	// Limit is the maximum admitted requests per key per window (default: 30).
	Limit int `mapstructure:"limit"`
	// Window is the trailing admission window (default: 1m).
	Window time.Duration `mapstructure:"window"`
	// SweepInterval is how often idle keys are evicted (default: 5m).
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// CrossRefConfig holds upstream metadata service settings.
type CrossRefConfig struct {
	// BaseURL is the CrossRef API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Mailto is the optional contact identifier forwarded upstream.
	Mailto string `mapstructure:"mailto"`
	// Timeout bounds each outbound request (default: 10s).
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum outbound requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum outbound burst.
	BurstSize int `mapstructure:"burst_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables the Prometheus metrics endpoint.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// Address returns the HTTP server bind address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load loads configuration from environment variables and an optional
// config file. Legacy environment names from the original deployment
// (PORT, MAX_ROWS, CROSSREF_MAILTO, NODE_ENV) stay bound as aliases of
// the structured keys.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/research-search-service")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv binds the original deployment's flat environment names
// alongside the prefixed structured keys.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "RESEARCH_SERVER_PORT", "PORT")
	_ = v.BindEnv("search.max_rows", "RESEARCH_SEARCH_MAX_ROWS", "MAX_ROWS")
	_ = v.BindEnv("crossref.mailto", "RESEARCH_CROSSREF_MAILTO", "CROSSREF_MAILTO")
	_ = v.BindEnv("environment", "RESEARCH_ENVIRONMENT", "NODE_ENV")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.static_dir", "web/dist")

	// Search defaults
	v.SetDefault("search.max_rows", 25)
	v.SetDefault("search.default_rows", 20)

	// Rate limit defaults
	v.SetDefault("rate_limit.limit", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.sweep_interval", "5m")

	// CrossRef defaults
	v.SetDefault("crossref.base_url", "https://api.crossref.org")
	v.SetDefault("crossref.mailto", "")
	v.SetDefault("crossref.timeout", "10s")
	v.SetDefault("crossref.rate_limit", 10.0)
	v.SetDefault("crossref.burst_size", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Search.MaxRows < 1 {
		return fmt.Errorf("search.max_rows must be at least 1, got %d", c.Search.MaxRows)
	}
	if c.Search.DefaultRows < 1 {
		// DefaultRows above MaxRows is allowed; the gateway clamps it.
		return fmt.Errorf("search.default_rows must be at least 1, got %d", c.Search.DefaultRows)
	}
	if c.RateLimit.Limit < 1 {
		return fmt.Errorf("rate_limit.limit must be at least 1, got %d", c.RateLimit.Limit)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}
	if c.CrossRef.BaseURL == "" {
		return errors.New("crossref.base_url must not be empty")
	}
	return nil
}

// IsProduction reports whether the service runs in the production
// environment, which enables static asset serving.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}
