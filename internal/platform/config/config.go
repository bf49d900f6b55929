package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string
	RedisAddr    string

	GatewayBaseURL string
	GatewayShopID  string
	GatewaySecret  string

	CoinExchangeRate int64
	Currency         string
	PaymentReturnURL string

	SweepSchedule     string
	SweepGraceAge     time.Duration
	SweepMaxAge       time.Duration
	SweepBatchLimit   int
	ReaperSchedule    string
	ReaperGraceAge    time.Duration
	OutboxRelayPeriod time.Duration

	EnableReconciliationSweep bool
	EnableAbandonedReaper     bool
	EnableOutboxRelay         bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "reelfund"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	// Empty means no broker: the worker falls back to the in-process bus.
	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,
		RedisAddr:    envString("REDIS_ADDR", "localhost:6379"),

		GatewayBaseURL: envString("PAYMENT_GATEWAY_URL", "https://api.yookassa.ru"),
		GatewayShopID:  os.Getenv("PAYMENT_SHOP_ID"),
		GatewaySecret:  os.Getenv("PAYMENT_SECRET_KEY"),

		CoinExchangeRate: envInt64("COIN_EXCHANGE_RATE", 10),
		Currency:         envString("PAYMENT_CURRENCY", "RUB"),
		PaymentReturnURL: envString("PAYMENT_RETURN_URL", "/wallet"),

		SweepSchedule:     envString("SWEEP_SCHEDULE", "@every 10m"),
		SweepGraceAge:     envDuration("SWEEP_GRACE_AGE", 10*time.Minute),
		SweepMaxAge:       envDuration("SWEEP_MAX_AGE", 24*time.Hour),
		SweepBatchLimit:   int(envInt64("SWEEP_BATCH_LIMIT", 50)),
		ReaperSchedule:    envString("REAPER_SCHEDULE", "@every 10m"),
		ReaperGraceAge:    envDuration("REAPER_GRACE_AGE", 30*time.Minute),
		OutboxRelayPeriod: envDuration("OUTBOX_RELAY_PERIOD", 5*time.Second),

		EnableReconciliationSweep: envBool("ENABLE_RECONCILIATION_SWEEP", true),
		EnableAbandonedReaper:     envBool("ENABLE_ABANDONED_REAPER", true),
		EnableOutboxRelay:         envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt64(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
