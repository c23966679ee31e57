package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Kafka    KafkaConfig
	Booking  BookingConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// KafkaConfig holds booking event publishing configuration.
// No brokers means events are only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Catalog and session backends.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
)

// BookingConfig holds booking flow configuration.
type BookingConfig struct {
	CatalogSource     string // memory or postgres
	SeedCatalog       bool   // seed an empty postgres catalog with the built-in vehicles
	CacheCatalog      bool   // cache postgres catalog reads in redis
	SessionStore      string // memory or redis
	SessionTTL        time.Duration
	PaymentDelay      time.Duration
	LockTTL           time.Duration
	Timezone          string
	RecordBookedDates bool
}

// Location resolves Timezone. An empty Timezone means the server's local zone.
func (c BookingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid RENTAL_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// lockMargin is added to the payment delay when sizing the confirm lock.
const lockMargin = 5 * time.Second

// ConfirmLockTTL is LockTTL raised, if needed, so the confirm lock cannot
// lapse while the payment is still running.
func (c BookingConfig) ConfirmLockTTL() time.Duration {
	if floor := c.PaymentDelay + lockMargin; c.LockTTL < floor {
		return floor
	}
	return c.LockTTL
}

// NeedsRedis reports whether any configured component uses Redis.
func (c BookingConfig) NeedsRedis() bool {
	return c.SessionStore == SourceRedis || (c.CatalogSource == SourcePostgres && c.CacheCatalog)
}

// CORSConfig holds allowed browser origins. Empty allows every origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "vehicle_rental"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "vehicle-rental-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers: getListEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "booking.events"),
		},
		Booking: BookingConfig{
			CatalogSource:     getEnv("CATALOG_SOURCE", SourceMemory),
			SeedCatalog:       getBoolEnv("CATALOG_SEED", true),
			CacheCatalog:      getBoolEnv("CATALOG_CACHE", false),
			SessionStore:      getEnv("SESSION_STORE", SourceMemory),
			SessionTTL:        getDurationEnv("SESSION_TTL", 2*time.Hour),
			PaymentDelay:      getDurationEnv("PAYMENT_DELAY", 2*time.Second),
			LockTTL:           getDurationEnv("CONFIRM_LOCK_TTL", 30*time.Second),
			Timezone:          getEnv("RENTAL_TIMEZONE", ""),
			RecordBookedDates: getBoolEnv("RENTAL_RECORD_BOOKED_DATES", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
