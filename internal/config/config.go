package config

import (
	"os"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Providers ProviderConfig
	Trading   TradingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the hot price cache configuration. An empty Addr
// disables Redis entirely.
type RedisConfig struct {
	Addr     string
	Password string
}

// KafkaConfig holds Kafka configuration. Empty Brokers disable both the
// order-event producer and the price-tick consumer.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
	TicksTopic  string
	TicksGroup  string
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret  string
	CookieName string
	CookiePath string
}

// ProviderConfig holds API keys for external market-data providers.
// Providers with an empty key are skipped by the price resolver.
type ProviderConfig struct {
	FinnhubKey      string
	AlphaVantageKey string
}

// TradingConfig holds order-execution settings
type TradingConfig struct {
	StartingBalance string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "papertrading"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers:     splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "order-events"),
			TicksTopic:  getEnv("KAFKA_TICKS_TOPIC", "price-ticks"),
			TicksGroup:  getEnv("KAFKA_TICKS_GROUP", "paper-trading"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE_NAME", "pt_session"),
			CookiePath: getEnv("SESSION_COOKIE_PATH", "/"),
		},
		Providers: ProviderConfig{
			FinnhubKey:      getEnv("FINNHUB_API_KEY", ""),
			AlphaVantageKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		},
		Trading: TradingConfig{
			StartingBalance: getEnv("STARTING_BALANCE", "10000.00"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
