package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/hovr/booking-site/internal/checkout"
)

type Config struct {
	Port            string
	Production      bool
	LogLevel        string
	BackendURL      string
	CheckoutTimeout time.Duration
	SessionRedisURI string
	SessionSecret   string
	SessionTTL      time.Duration
	AllowedOrigins  []string
	OpenAPILocation string
}

// Load reads the environment. Call godotenv before it to pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:            env("PORT", "8080"),
		Production:      env("ENV", "") == "production",
		LogLevel:        env("LOG_LEVEL", "info"),
		BackendURL:      env("BACKEND_URL", checkout.DefaultBaseURL),
		SessionRedisURI: env("SESSION_REDIS_URI", ""),
		SessionSecret:   env("SESSION_SECRET", ""),
		OpenAPILocation: env("OPENAPI_LOCATION", ""),
		AllowedOrigins:  list(env("ALLOWED_ORIGINS", "")),
	}

	var err error
	if cfg.CheckoutTimeout, err = duration("CHECKOUT_TIMEOUT", 0); err != nil {
		return cfg, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.SessionTTL <= 0 {
		return cfg, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

func env(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	value := env(key, "")
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func list(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
