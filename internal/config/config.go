package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const defaultSystemPrompt = "You are a friendly football analyst assistant. Respond to the user's message."

const defaultGreeting = "Welcome to PitchTalk ⚽ Send your questions to POST /ai."

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string
	Greeting string

	// LLM provider
	LLMProvider        string
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicMaxTokens int
	GeminiAPIKey       string
	GeminiModel        string
	LLMConcurrentReqs  int
	LLMTimeout         time.Duration

	// Conversation
	SystemPrompt              string
	RollbackOnUpstreamFailure bool

	// Redis (optional)
	RedisURL string

	// Database (optional)
	DatabaseURL    string
	ArchiveWorkers int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderAnthropic))

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Greeting: getEnvOrDefault("GREETING", defaultGreeting),

		LLMProvider:        provider,
		AnthropicModel:     getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		AnthropicMaxTokens: getEnvAsIntOrDefault("ANTHROPIC_MAX_TOKENS", 1024),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMConcurrentReqs:  getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),
		LLMTimeout:         getEnvAsDurationOrDefault("LLM_TIMEOUT", 0),

		SystemPrompt:              getEnvOrDefault("SYSTEM_PROMPT", defaultSystemPrompt),
		RollbackOnUpstreamFailure: getEnvAsBoolOrDefault("ROLLBACK_ON_UPSTREAM_FAILURE", false),

		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		ArchiveWorkers: getEnvAsIntOrDefault("ARCHIVE_WORKERS", 2),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	switch provider {
	case ProviderAnthropic:
		cfg.AnthropicAPIKey = mustGetEnv("ANTHROPIC_API_KEY")
	case ProviderGemini:
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	default:
		panic(fmt.Sprintf("unsupported LLM_PROVIDER %q (want %q or %q)", provider, ProviderAnthropic, ProviderGemini))
	}

	if cfg.LLMConcurrentReqs < 1 {
		cfg.LLMConcurrentReqs = 1
	}

	return cfg
}

// IsDevelopment reports whether development-only routes should be mounted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ArchiveEnabled reports whether the transcript archive has both of its backends.
func (c *Config) ArchiveEnabled() bool {
	return c.RedisURL != "" && c.DatabaseURL != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvAsDurationOrDefault accepts Go duration strings ("30s") or bare seconds ("30").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
