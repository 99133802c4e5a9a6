package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the process-level settings for the agent system. Values come
// from the environment; zero values fall back to the defaults below.
type Config struct {
	// LLM gateway
	GatewayURL   string
	GatewayToken string
	Model        string
	Timeout      time.Duration

	// Qdrant vector search (optional)
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Tavily web search (optional)
	TavilyAPIKey string

	// Agent settings
	MaxRetries  int
	Temperature float64

	// Guardrail / audit settings
	MaxResponseLength     int
	AuditLightweightBelow int
}

const (
	DefaultGatewayURL = "http://localhost:4081"
	DefaultModel      = "gemini-2.0-flash"
	DefaultTimeout    = 120 * time.Second

	DefaultMaxRetries        = 3
	DefaultTemperature       = 0.7
	DefaultMaxResponseLength = 2000
	DefaultLightweightBelow  = 800
)

// FromEnv builds a Config from environment variables. Call godotenv.Load
// first if settings live in a .env file.
func FromEnv() *Config {
	cfg := &Config{
		GatewayURL:   getEnv("LLM_GATEWAY_URL", DefaultGatewayURL),
		GatewayToken: os.Getenv("LLM_GATEWAY_TOKEN"),
		Model:        getEnv("LLM_MODEL", DefaultModel),
		Timeout:      DefaultTimeout,

		QdrantURL:        os.Getenv("QDRANT_URL"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "product-knowledge"),

		TavilyAPIKey: os.Getenv("TAVILY_API_KEY"),

		MaxRetries:  getEnvInt("AGENT_MAX_RETRIES", DefaultMaxRetries),
		Temperature: DefaultTemperature,

		MaxResponseLength:     getEnvInt("GUARDRAIL_MAX_LENGTH", DefaultMaxResponseLength),
		AuditLightweightBelow: getEnvInt("AUDIT_LIGHTWEIGHT_BELOW", DefaultLightweightBelow),
	}
	if secs := getEnvInt("LLM_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.Timeout = time.Duration(secs) * time.Second
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
