package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "REDIS_ADDR", "KAFKA_BROKERS", "CHECKOUT_ATOMIC", "CART_TTL", "JWT_EXPIRATION_HOURS", "DB_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "pos.sales", cfg.Kafka.Topic)
	assert.True(t, cfg.Checkout.Atomic)
	assert.Equal(t, 12*time.Hour, cfg.Redis.CartTTL)
	assert.Equal(t, 12, cfg.JWT.ExpirationHours)
	assert.Equal(t, logger.Warn, cfg.DB.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("CHECKOUT_ATOMIC", "false")
	t.Setenv("CART_TTL", "30m")
	t.Setenv("DB_LOG_LEVEL", "silent")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Checkout.Atomic)
	assert.Equal(t, 30*time.Minute, cfg.Redis.CartTTL)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
}

func TestLoadRejectsNonPositiveExpiration(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=pos sslmode=disable", c.GetDSN())
}
