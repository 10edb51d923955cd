package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("DUPLICATE_THRESHOLD", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := FromEnv()
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 0.85, cfg.Generation.DuplicateThreshold)
	assert.Equal(t, 60*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Empty(t, cfg.Store.RedisURL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", " Anthropic ")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("ANTHROPIC_MODEL", "claude-x")
	t.Setenv("REQUEST_TIMEOUT", "15s")
	t.Setenv("DUPLICATE_THRESHOLD", "0.9")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ARCHIVE_PREFIX", "/decks/prod/")
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, ProviderCredentials{APIKey: "ak", Model: "claude-x", BaseURL: "https://api.anthropic.com"}, cfg.Provider.Active())
	assert.Equal(t, 15*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, 0.9, cfg.Generation.DuplicateThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "decks/prod", cfg.Archive.Prefix)
	assert.Equal(t, 4096, cfg.Provider.MaxTokens)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider.Name = "cohere" }},
		{"zero threshold", func(c *Config) { c.Generation.DuplicateThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.Generation.DuplicateThreshold = 1.5 }},
		{"no timeout", func(c *Config) { c.Provider.RequestTimeout = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("AI_PROVIDER", "openai")
			cfg := FromEnv()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
