package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// ServiceName identifies this service in logs and metrics
const ServiceName = "pos-service"

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds the session token configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// RedisConfig holds the cart cache configuration. An empty Addr keeps carts in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

// KafkaConfig holds the sales event stream configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CheckoutConfig holds checkout behaviour switches
type CheckoutConfig struct {
	// Atomic writes the order header and its items in one transaction.
	Atomic bool
}

// AdminConfig holds the optional administrator password
type AdminConfig struct {
	PasswordHash string
}

// Config holds all configuration
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	JWT      JWTConfig
	Log      LogConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Checkout CheckoutConfig
	Admin    AdminConfig
}

// Load loads configuration from the .env file (if any) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "pos"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "possessionsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 12),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CartTTL:  getEnvAsDuration("CART_TTL", 12*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "pos.sales"),
		},
		Checkout: CheckoutConfig{
			Atomic: getEnvAsBool("CHECKOUT_ATOMIC", true),
		},
		Admin: AdminConfig{
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
	}

	if config.JWT.ExpirationHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", config.JWT.ExpirationHours)
	}

	return config, nil
}

// LogConfig returns the non-secret configuration as zap fields
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Bool("redis_cart_store", c.Redis.Addr != ""),
		zap.Strings("kafka_brokers", c.Kafka.Brokers),
		zap.Bool("checkout_atomic", c.Checkout.Atomic),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// envAs parses key with parse, falling back to def when unset or malformed
func envAs[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func getEnvAsInt(key string, def int) int {
	return envAs(key, def, strconv.Atoi)
}

func getEnvAsBool(key string, def bool) bool {
	return envAs(key, def, strconv.ParseBool)
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	return envAs(key, def, time.ParseDuration)
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	var values []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

var gormLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func getEnvAsLogLevel(key string, def logger.LogLevel) logger.LogLevel {
	return envAs(key, def, func(s string) (logger.LogLevel, error) {
		if level, ok := gormLogLevels[strings.ToLower(s)]; ok {
			return level, nil
		}
		return def, fmt.Errorf("unknown gorm log level %q", s)
	})
}
