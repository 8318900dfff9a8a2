package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", cfg.GroqVisionModel)
	assert.Equal(t, "llama3-70b-8192", cfg.GroqTextModel)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeekModel)
	assert.Equal(t, "mistralai/mistral-nemo:free", cfg.OpenRouterModel)
	assert.Equal(t, time.Second, cfg.TrendsCooldown)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 60*time.Second, cfg.ScriptTimeout)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("TRENDS_COOLDOWN", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gk", cfg.GroqAPIKey)
	assert.Equal(t, 2*time.Second, cfg.TrendsCooldown)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
}

func TestEnvHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, Config{AppEnv: "DEV"}.IsDev())
	assert.True(t, Config{AppEnv: "Test"}.IsTest())
	assert.True(t, Config{AppEnv: "prod"}.IsProd())
	assert.False(t, Config{AppEnv: "prod"}.IsDev())
}

func TestGetAIBackoffConfig(t *testing.T) {
	t.Parallel()
	prod := Config{
		AppEnv:                   "prod",
		AIBackoffMaxElapsedTime:  45 * time.Second,
		AIBackoffInitialInterval: 2 * time.Second,
		AIBackoffMaxInterval:     20 * time.Second,
		AIBackoffMultiplier:      1.5,
	}
	maxElapsed, initial, maxIvl, mult := prod.GetAIBackoffConfig()
	assert.Equal(t, 45*time.Second, maxElapsed)
	assert.Equal(t, 2*time.Second, initial)
	assert.Equal(t, 20*time.Second, maxIvl)
	assert.Equal(t, 1.5, mult)

	test := Config{AppEnv: "test"}
	maxElapsed, initial, maxIvl, mult = test.GetAIBackoffConfig()
	assert.Equal(t, 2*time.Second, maxElapsed)
	assert.Equal(t, 50*time.Millisecond, initial)
	assert.Equal(t, 500*time.Millisecond, maxIvl)
	assert.Equal(t, 2.0, mult)
}
