package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	FrontendURL string
	AutoMigrate bool

	// Auth
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	GoogleJWKSURL      string
	AdminEmail         string
	AdminPasswordHash  string

	// LLM Configuration
	LLMProvider      string // groq, openrouter or lorem
	GroqAPIKey       string
	GroqURL          string
	GroqModel        string
	OpenRouterAPIKey string
	OpenRouterModel  string
	LLMTemperature   float64
	LLMMaxTokens     int
	LLMHistorySize   int
	LLMTimeout       time.Duration // whole generation, enforced by the gateway
	LLMHeaderTimeout time.Duration // upstream response headers

	// Generation sessions
	IdleSaveDelay        time.Duration
	SessionTTL           time.Duration
	RateLimitGenerations int
	QuotaTimezone        string

	// Logging
	LogDir      string
	LogMaxFiles int

	// Debug flags
	Debug bool // Enables SSE event IDs
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",

		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           getDuration("TOKEN_TTL", 7*24*time.Hour),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:8080/api/auth/google/callback"),
		GoogleJWKSURL:      getEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
		AdminEmail:         strings.ToLower(getEnv("ADMIN_EMAIL", "")),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),

		LLMProvider:      getEnv("LLM_PROVIDER", "groq"),
		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqURL:          getEnv("GROQ_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct"),
		LLMTemperature:   getFloat("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:     getInt("LLM_MAX_TOKENS", 8000),
		LLMHistorySize:   getInt("LLM_HISTORY_SIZE", 4),
		LLMTimeout:       getDuration("LLM_TIMEOUT", 5*time.Minute),
		LLMHeaderTimeout: getDuration("LLM_HEADER_TIMEOUT", time.Minute),

		IdleSaveDelay:        getDuration("IDLE_SAVE_DELAY", time.Second),
		SessionTTL:           getDuration("SESSION_TTL", 2*time.Hour),
		RateLimitGenerations: getInt("RATE_LIMIT_GENERATIONS", 10),
		QuotaTimezone:        getEnv("QUOTA_TIMEZONE", "UTC"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// QuotaLocation resolves QuotaTimezone, falling back to UTC.
func (c *Config) QuotaLocation() *time.Location {
	loc, err := time.LoadLocation(c.QuotaTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleConfigured reports whether Google sign-in can be offered.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
