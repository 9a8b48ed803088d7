package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration
type Config struct {
	// API Keys
	OpenRouterAPIKey string
	BraveAPIKey      string

	// Timeouts
	RequestTimeout time.Duration

	// Agent settings
	MaxOutputTokens int
	DefaultEffort   string

	// Model
	Model string

	// Verbose mode
	Verbose bool
}

// Load reads configuration from environment and defaults
func Load() *Config {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	return &Config{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		BraveAPIKey:      os.Getenv("BRAVE_API_KEY"),

		RequestTimeout: 5 * time.Minute,

		MaxOutputTokens: getEnvOrDefaultInt("RESEARCH_MAX_OUTPUT_TOKENS", 65000),
		DefaultEffort:   getEnvOrDefault("RESEARCH_EFFORT", "standard"),

		Model: getEnvOrDefault("RESEARCH_MODEL", "alibaba/tongyi-deepresearch-30b-a3b"),

		Verbose: os.Getenv("RESEARCH_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
