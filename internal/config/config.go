// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8000"`

	// Groq (OpenAI-compatible; hosts the vision-capable llama models)
	GroqAPIKey      string `env:"GROQ_API_KEY"`
	GroqBaseURL     string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqVisionModel string `env:"GROQ_VISION_MODEL" envDefault:"meta-llama/llama-4-scout-17b-16e-instruct"`
	GroqTextModel   string `env:"GROQ_TEXT_MODEL" envDefault:"llama3-70b-8192"`
	// GroqLlavaModel is the second vision model used by the comparison endpoint.
	GroqLlavaModel string `env:"GROQ_LLAVA_MODEL" envDefault:"llava-v1.5-7b-4096-preview"`

	// DeepSeek (native endpoint)
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	DeepSeekModel   string `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`

	// OpenRouter (OpenAI-compatible aggregator)
	OpenRouterAPIKey      string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL     string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel       string `env:"OPENROUTER_MODEL" envDefault:"mistralai/mistral-nemo:free"`
	OpenRouterSocialModel string `env:"OPENROUTER_SOCIAL_MODEL" envDefault:"deepseek/deepseek-chat"`
	OpenRouterReferer     string `env:"OPENROUTER_REFERER" envDefault:"http://localhost:8000"`
	OpenRouterTitle       string `env:"OPENROUTER_TITLE" envDefault:"YouTube Thumbnail Analysis"`

	// Google Trends
	TrendsBaseURL  string        `env:"TRENDS_BASE_URL" envDefault:"https://trends.google.com/trends/api"`
	TrendsCooldown time.Duration `env:"TRENDS_COOLDOWN" envDefault:"1s"`
	TrendsTimeout  time.Duration `env:"TRENDS_TIMEOUT" envDefault:"25s"`

	// Per-call provider timeouts; script generation gets the longer budget.
	ChatTimeout   time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`
	ScriptTimeout time.Duration `env:"SCRIPT_TIMEOUT" envDefault:"60s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"thumbnail-analyzer"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"45s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the current
// environment. Test environments use much shorter intervals.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
