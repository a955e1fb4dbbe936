// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// AdminAPIURL is the base URL of the tenant admin platform that serves
	// bot configs, catalog search and the escalation record store.
	AdminAPIURL string
	AdminAPIKey string

	// AdminToken guards the administrative escalation-transition route.
	AdminToken string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OCRBaseURL string

	OpenAI OpenAIConfig

	RateLimit     int
	RateWindow    time.Duration
	SessionTurns  int
	SessionTTL    time.Duration
	PrefsTTL      time.Duration
	TenantCfgTTL  time.Duration
	RefreshEvery  time.Duration
	SearchLimit   int
	JournalPath   string
	JournalEvery  time.Duration
	ContextBudget int
}

// OpenAIConfig configures the completion/vision provider.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AdminAPIURL:   getEnv("ADMIN_API_URL", ""),
		AdminAPIKey:   getEnv("ADMIN_API_KEY", ""),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		OCRBaseURL:    getEnv("OCR_BASE_URL", ""),
		OpenAI: OpenAIConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			VisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o-mini"),
		},
		RateLimit:     getEnvInt("RATE_LIMIT", 10),
		RateWindow:    getEnvDuration("RATE_WINDOW", 60*time.Second),
		SessionTurns:  getEnvInt("SESSION_MAX_TURNS", 20),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		PrefsTTL:      getEnvDuration("PREFS_TTL", 7*24*time.Hour),
		TenantCfgTTL:  getEnvDuration("TENANT_CONFIG_TTL", 5*time.Minute),
		RefreshEvery:  getEnvDuration("TENANT_CONFIG_REFRESH", 0),
		SearchLimit:   getEnvInt("SEARCH_LIMIT", 5),
		JournalPath:   getEnv("JOURNAL_PATH", "./data/escalations.db"),
		JournalEvery:  getEnvDuration("JOURNAL_FLUSH_EVERY", time.Minute),
		ContextBudget: getEnvInt("CONTEXT_MAX_CHARS", 8000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.AdminAPIURL == "" {
		return fmt.Errorf("ADMIN_API_URL cannot be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be > 0")
	}
	if c.SessionTurns <= 0 {
		return fmt.Errorf("SESSION_MAX_TURNS must be > 0")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
