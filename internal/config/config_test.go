package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_EXPIRY", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_EXPIRY", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REMINDERS_ENABLED", "false")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.ReminderEnabled)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "587", cfg.SMTPPort)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "soon")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	t.Setenv("STORAGE", "postgres")

	cfg := LoadConfig()

	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "mongo", cfg.Storage)
}
