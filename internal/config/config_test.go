package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, SourceMemory, cfg.Booking.CatalogSource)
	assert.Equal(t, SourceMemory, cfg.Booking.SessionStore)
	assert.Equal(t, 2*time.Second, cfg.Booking.PaymentDelay)
	assert.False(t, cfg.Booking.RecordBookedDates)
	assert.False(t, cfg.Booking.NeedsRedis())
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "booking.events", cfg.Kafka.Topic)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("CATALOG_CACHE", "true")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("PAYMENT_DELAY", "500ms")
	t.Setenv("RENTAL_RECORD_BOOKED_DATES", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, SourcePostgres, cfg.Booking.CatalogSource)
	assert.True(t, cfg.Booking.NeedsRedis())
	assert.Equal(t, 500*time.Millisecond, cfg.Booking.PaymentDelay)
	assert.True(t, cfg.Booking.RecordBookedDates)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 0, cfg.Redis.DB, "unparseable values fall back to the default")
}

func TestBookingConfig_Location(t *testing.T) {
	loc, err := BookingConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = BookingConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = BookingConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}

func TestBookingConfig_ConfirmLockTTL(t *testing.T) {
	tests := []struct {
		name    string
		lockTTL time.Duration
		delay   time.Duration
		want    time.Duration
	}{
		{"configured ttl covers the delay", 30 * time.Second, 2 * time.Second, 30 * time.Second},
		{"delay longer than ttl", 20 * time.Millisecond, 150 * time.Millisecond, 150*time.Millisecond + 5*time.Second},
		{"unset ttl", 0, 2 * time.Second, 7 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BookingConfig{LockTTL: tt.lockTTL, PaymentDelay: tt.delay}
			assert.Equal(t, tt.want, cfg.ConfirmLockTTL())
		})
	}
}
