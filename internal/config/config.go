package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port          string
	Environment   string
	KnowledgePath string

	// LLM fallback configuration. Either key enables the fallback stage;
	// the OpenRouter key selects the OpenRouter-shaped API unless the base
	// URL says otherwise.
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	Model            string
	APIBase          string
	SiteURL          string // OpenRouter HTTP-Referer attribution header
	AppName          string // OpenRouter X-Title attribution header
	LLMTimeout       time.Duration

	// HTTP surface
	AllowedOrigins string
	ChatRateMax    int // requests per minute per IP on /chat
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3001"),
		Environment:   strings.ToLower(getEnv("ENVIRONMENT", "development")),
		KnowledgePath: getEnv("KNOWLEDGE_PATH", "knowledge.json"),

		OpenAIAPIKey:     strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenRouterAPIKey: strings.TrimSpace(getEnv("OPENROUTER_API_KEY", "")),
		Model:            strings.TrimSpace(getEnv("OPENAI_MODEL", "gpt-4.1-mini")),
		APIBase:          strings.TrimSpace(getEnv("LLM_API_BASE", "")),
		SiteURL:          strings.TrimSpace(getEnv("OPENROUTER_SITE_URL", "")),
		AppName:          strings.TrimSpace(getEnv("OPENROUTER_APP_NAME", "GlueBot")),
		LLMTimeout:       time.Duration(getIntEnv("LLM_TIMEOUT_SECONDS", 20)) * time.Second,

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		ChatRateMax:    getIntEnv("RATE_LIMIT_CHAT", 60),
	}
}

// APIKey returns the effective fallback key: the OpenAI key wins when both
// are set, matching the precedence users expect from the env file.
func (c *Config) APIKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return c.OpenRouterAPIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
