// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one is present), loads them into structured Go types and
// validates them so they can be reused across the application runtime.
//
// Responsibilities:
//   - Provide defaults for every block so a bare checkout can boot.
//   - Map env vars into a structured Go config (structs).
//   - Validate values so the app fails fast on bad config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any of the providers below read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix HOMETAG_. The prefix is removed, the
	key is lowercased and a double underscore marks nesting, so

		HOMETAG_SERVER__PORT          -> server.port   -> Config.Server.Port
		HOMETAG_CENSUS__API_KEY       -> census.api_key -> Config.Census.APIKey

	The bare CENSUS_API_KEY variable is also honoured so existing `.env`
	files keep working. The prefixed form wins when both are set.
*/

const (
	// EnvPrefix is the prefix of every variable read by LoadConfig.
	EnvPrefix = "HOMETAG_"

	// LegacyAPIKeyEnv is the unprefixed variable holding the Census key.
	LegacyAPIKeyEnv = "CENSUS_API_KEY"

	// PlaceholderAPIKey is the key shipped in sample `.env` files.
	PlaceholderAPIKey = "YOUR_CENSUS_API_KEY_HERE"

	// DemoAPIKey is a well-known fake key that the Census API rejects.
	DemoAPIKey = "111111abc"

	// APIKeySignupURL is where operators get a real key.
	APIKeySignupURL = "https://api.census.gov/data/key_signup.html"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from and the
// `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Census        CensusConfig         `koanf:"census" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are durations ("15s", "2m"). WriteTimeout bounds a whole
// housing-data request, which makes two upstream calls per ZIP code, so
// it is generous by default.
type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// 0 disables the limiter.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// CensusConfig configures the outbound Census Bureau API client.
type CensusConfig struct {
	// APIKey is sent as the `key` query parameter on every call.
	APIKey string `koanf:"api_key"`

	// BaseURL is the data root, e.g. https://api.census.gov/data.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Year selects the vintage of both the ACS and CBP datasets.
	Year int `koanf:"year" validate:"required,min=2000"`

	// Timeout is the fixed per-call deadline. A call that exceeds it is
	// treated as failed for that ZIP code; there are no retries.
	Timeout time.Duration `koanf:"timeout" validate:"required"`

	// Concurrency is how many ZIP codes one request may look up at once.
	// 1 keeps lookups strictly sequential.
	Concurrency int `koanf:"concurrency" validate:"min=1,max=32"`
}

// HasPlaceholderKey reports whether the configured key is missing or one of
// the known sample values. Such keys are rejected by the upstream API.
func (c CensusConfig) HasPlaceholderKey() bool {
	switch c.APIKey {
	case "", PlaceholderAPIKey, DemoAPIKey:
		return true
	}
	return false
}

// listKeys are the keys whose env value is a comma-separated list.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// splitList turns "a, b,,c" into ["a" "b" "c"].
func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DefaultConfig returns the configuration used when no env var overrides a value.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8000",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       5 * time.Minute,
			IdleTimeout:        60 * time.Second,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          20,
		},
		Census: CensusConfig{
			APIKey:      PlaceholderAPIKey,
			BaseURL:     "https://api.census.gov/data",
			Year:        2022,
			Timeout:     10 * time.Second,
			Concurrency: 1,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it and returns the result.
//
// The caller decides how to fail; main logs fatally.
func LoadConfig() (*Config, error) {
	// "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	// Legacy key first so the prefixed form can override it.
	err := k.Load(env.Provider(LegacyAPIKeyEnv, ".", func(s string) string {
		if s != LegacyAPIKeyEnv {
			return ""
		}
		return "census.api_key"
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", LegacyAPIKeyEnv, err)
	}

	err = k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal only overwrites the keys that were present, so the defaults
	// survive for everything else. koanf's decoder turns "10s" into a
	// time.Duration.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; environment always follows primary.env so
	// logs and traces agree with each other.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
