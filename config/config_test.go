package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("REQUIRE_ACTIVATION", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.RequireActivation)
	assert.Equal(t, 5, cfg.Business.DefaultPageLimit)
	assert.Equal(t, "shop-events", cfg.Kafka.TopicEvents)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("REQUIRE_ACTIVATION", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("APP_BASE_URL", "https://shop.example.com/")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.RequireActivation)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "https://shop.example.com", cfg.Server.BaseURL)
	assert.True(t, cfg.Mail.Enabled())
}
