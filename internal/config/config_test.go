package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Address())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, 25, cfg.Search.MaxRows)
	assert.Equal(t, 20, cfg.Search.DefaultRows)

	assert.Equal(t, 30, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.SweepInterval)

	assert.Equal(t, "https://api.crossref.org", cfg.CrossRef.BaseURL)
	assert.Equal(t, "", cfg.CrossRef.Mailto)
	assert.Equal(t, 10*time.Second, cfg.CrossRef.Timeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RESEARCH_SERVER_PORT", "8088")
	t.Setenv("RESEARCH_SEARCH_MAX_ROWS", "50")
	t.Setenv("RESEARCH_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Search.MaxRows)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_LegacyEnvAliases(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PORT", "4000")
	t.Setenv("MAX_ROWS", "10")
	t.Setenv("CROSSREF_MAILTO", "ops@example.org")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.MaxRows)
	assert.Equal(t, "ops@example.org", cfg.CrossRef.Mailto)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_PrefixedNameWinsOverLegacy(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("RESEARCH_SERVER_PORT", "8088")
	t.Setenv("PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoad_InvalidMaxRowsRejected(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("MAX_ROWS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.max_rows")
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("empty crossref base url", func(t *testing.T) {
		cfg := validConfig()
		cfg.CrossRef.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Limit = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative window", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Window = -time.Second
		assert.Error(t, cfg.Validate())
	})
}

// validConfig returns a valid configuration for testing.
func validConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server:      ServerConfig{Host: "0.0.0.0", Port: 3000},
		Search:      SearchConfig{MaxRows: 25, DefaultRows: 20},
		RateLimit:   RateLimitConfig{Limit: 30, Window: time.Minute},
		CrossRef:    CrossRefConfig{BaseURL: "https://api.crossref.org"},
	}
}

// clearEnvVars unsets every variable this package reads so tests are
// hermetic regardless of the invoking shell.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "RESEARCH_") {
			if i := strings.IndexByte(env, '='); i > 0 {
				os.Unsetenv(env[:i])
			}
		}
	}
	for _, name := range []string{"PORT", "MAX_ROWS", "CROSSREF_MAILTO", "NODE_ENV"} {
		os.Unsetenv(name)
	}
}
