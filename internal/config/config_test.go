package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(LegacyAPIKeyEnv, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "https://api.census.gov/data", cfg.Census.BaseURL)
	assert.Equal(t, 2022, cfg.Census.Year)
	assert.Equal(t, 10*time.Second, cfg.Census.Timeout)
	assert.Equal(t, 1, cfg.Census.Concurrency)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_PrefixedOverrides(t *testing.T) {
	t.Setenv("HOMETAG_PRIMARY__ENV", "production")
	t.Setenv("HOMETAG_SERVER__PORT", "9090")
	t.Setenv("HOMETAG_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("HOMETAG_CENSUS__TIMEOUT", "3s")
	t.Setenv("HOMETAG_CENSUS__CONCURRENCY", "4")
	t.Setenv("HOMETAG_OBSERVABILITY__LOGGING__LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Census.Timeout)
	assert.Equal(t, 4, cfg.Census.Concurrency)
	assert.Equal(t, "warn", cfg.Observability.GetLogLevel())
}

func TestLoadConfig_ListValues(t *testing.T) {
	t.Setenv("HOMETAG_SERVER__CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example,,https://c.example")
	t.Setenv("HOMETAG_OBSERVABILITY__HEALTH_CHECKS__CHECKS", "census")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, []string{HealthCheckCensus}, cfg.Observability.HealthChecks.Checks)
	assert.True(t, cfg.Observability.HealthCheckEnabled(HealthCheckCensus))
}

func TestLoadConfig_EmptyListRejected(t *testing.T) {
	t.Setenv("HOMETAG_SERVER__CORS_ALLOWED_ORIGINS", " , ")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a,b"))
	assert.Equal(t, []string{"*"}, splitList("*"))
	assert.Empty(t, splitList(""))
}

func TestLoadConfig_APIKeyPrecedence(t *testing.T) {
	t.Setenv(LegacyAPIKeyEnv, "legacy-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.Census.APIKey)

	t.Setenv("HOMETAG_CENSUS__API_KEY", "prefixed-key")

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.Census.APIKey)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero concurrency", "HOMETAG_CENSUS__CONCURRENCY", "0"},
		{"bad base url", "HOMETAG_CENSUS__BASE_URL", "not a url"},
		{"bad log level", "HOMETAG_OBSERVABILITY__LOGGING__LEVEL", "verbose"},
		{"unknown health check", "HOMETAG_OBSERVABILITY__HEALTH_CHECKS__CHECKS", "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestCensusConfig_HasPlaceholderKey(t *testing.T) {
	for _, key := range []string{"", PlaceholderAPIKey, DemoAPIKey} {
		assert.True(t, CensusConfig{APIKey: key}.HasPlaceholderKey(), "key %q", key)
	}
	assert.False(t, CensusConfig{APIKey: "0123456789abcdef"}.HasPlaceholderKey())
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""

	c.Environment = "production"
	assert.Equal(t, "info", c.GetLogLevel())

	c.Environment = "development"
	assert.Equal(t, "debug", c.GetLogLevel())
}

func TestObservabilityConfig_HealthCheckEnabled(t *testing.T) {
	c := DefaultObservabilityConfig()
	assert.False(t, c.HealthCheckEnabled(HealthCheckCensus))

	c.HealthChecks.Checks = []string{HealthCheckCensus}
	assert.True(t, c.HealthCheckEnabled(HealthCheckCensus))

	c.HealthChecks.Enabled = false
	assert.False(t, c.HealthCheckEnabled(HealthCheckCensus))
}
