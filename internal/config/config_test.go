package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "BACKEND_URL", "CHECKOUT_TIMEOUT",
			"SESSION_REDIS_URI", "SESSION_SECRET", "SESSION_TTL", "ALLOWED_ORIGINS", "OPENAPI_LOCATION"} {
			t.Setenv(key, "")
		}

		cfg, err := Load()

		assert.Nil(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.False(t, cfg.Production)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
		assert.Equal(t, time.Duration(0), cfg.CheckoutTimeout)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, []string{}, cfg.AllowedOrigins)
	})

	t.Run("should read the environment", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("BACKEND_URL", "https://checkout.hover.example")
		t.Setenv("CHECKOUT_TIMEOUT", "4s")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("ALLOWED_ORIGINS", "https://hover.example, https://www.hover.example,")

		cfg, err := Load()

		assert.Nil(t, err)
		assert.True(t, cfg.Production)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "https://checkout.hover.example", cfg.BackendURL)
		assert.Equal(t, 4*time.Second, cfg.CheckoutTimeout)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.Equal(t, []string{"https://hover.example", "https://www.hover.example"}, cfg.AllowedOrigins)
	})

	t.Run("should reject malformed durations", func(t *testing.T) {
		t.Setenv("CHECKOUT_TIMEOUT", "soon")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load()
		assert.ErrorContains(t, err, "invalid CHECKOUT_TIMEOUT")
		assert.Equal(t, "warn", cfg.LogLevel, "the log level is usable to report the error")
	})
}
