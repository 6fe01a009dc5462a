package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TERMINAL_ID", "OPERATOR_ID", "CURRENCY_SYMBOL", "DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS", "API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "Retail Terminal #01", cfg.Terminal.TerminalID)
	assert.Equal(t, "User-1", cfg.Terminal.OperatorID)
	assert.Equal(t, "₵", cfg.Terminal.CurrencySymbol)
	assert.Equal(t, 20*time.Second, cfg.Advisor.Timeout)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CHECKOUT_IDEMPOTENCY_TTL_SECONDS", "30")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.IdempotencyTTL)
	assert.True(t, cfg.Redis.Enabled())
}
