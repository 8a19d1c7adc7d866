package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	// Remote API
	APIBaseURL     string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// Local key-value store for subscription membership, recent searches and the session
	RedisURL string

	// JWTSecret verifies session tokens when set. Empty means claims are read unverified.
	JWTSecret string

	SearchHistoryMax int
	FeedPageSize     int

	ResolverCoalesce   bool
	ResolverCacheTTL   time.Duration
	ResolverExpirySkew time.Duration

	SubscriptionRollback bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8790"),
		AllowedOrigins:       parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		APIBaseURL:           getEnv("API_BASE_URL", "http://localhost:5000/api/"),
		ConnectTimeout:       getDurationEnv("HTTP_CONNECT_TIMEOUT", 60*time.Second),
		ReadTimeout:          getDurationEnv("HTTP_READ_TIMEOUT", 60*time.Second),
		WriteTimeout:         getDurationEnv("HTTP_WRITE_TIMEOUT", 2*time.Minute),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		SearchHistoryMax:     getIntEnv("SEARCH_HISTORY_MAX", 20),
		FeedPageSize:         getIntEnv("FEED_PAGE_SIZE", 20),
		ResolverCoalesce:     getBoolEnv("RESOLVER_COALESCE", false),
		ResolverCacheTTL:     getDurationEnv("RESOLVER_CACHE_TTL", 0),
		ResolverExpirySkew:   getDurationEnv("RESOLVER_EXPIRY_SKEW", 30*time.Second),
		SubscriptionRollback: getBoolEnv("SUBSCRIPTION_ROLLBACK", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default sensibly
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.SearchHistoryMax <= 0 {
		return fmt.Errorf("SEARCH_HISTORY_MAX must be positive, got %d", c.SearchHistoryMax)
	}
	if c.FeedPageSize <= 0 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive, got %d", c.FeedPageSize)
	}
	if c.ResolverCacheTTL < 0 || c.ResolverExpirySkew < 0 {
		return fmt.Errorf("resolver durations must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the bridge runs in a local environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv accepts Go duration strings ("90s", "2m") or plain seconds
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
