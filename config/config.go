package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	SessionDuration  time.Duration
	SweepInterval    time.Duration
	SweepBatchSize   int
	AbandonedCartTTL time.Duration

	MaxSessionsPerDevicePerHour int
	MaxSessionsPerTable         int
	MaxLineQuantity             int
	MaxOrderLines               int
	MaxNoteLength               int

	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigins       []string
	RateLimitRequests int
	RateLimitInterval time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env file not loaded: %v", err)
	}

	return &Config{
		Port:     EnvDefault("PORT", "8080"),
		GinMode:  EnvDefault("GIN_MODE", "debug"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver: EnvDefault("DB_DRIVER", "sqlite"),
		DBDSN:    EnvDefault("DB_DSN", "restaurant.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  EnvDurationDefault("TOKEN_TTL", 24*time.Hour),

		SessionDuration:  EnvDurationDefault("SESSION_DURATION", 4*time.Hour),
		SweepInterval:    EnvDurationDefault("SWEEP_INTERVAL", 15*time.Minute),
		SweepBatchSize:   EnvIntDefault("SWEEP_BATCH_SIZE", 100),
		AbandonedCartTTL: EnvDurationDefault("ABANDONED_CART_TTL", 24*time.Hour),

		MaxSessionsPerDevicePerHour: EnvIntDefault("MAX_SESSIONS_PER_DEVICE_PER_HOUR", 5),
		MaxSessionsPerTable:         EnvIntDefault("MAX_SESSIONS_PER_TABLE", 20),
		MaxLineQuantity:             EnvIntDefault("MAX_LINE_QUANTITY", 99),
		MaxOrderLines:               EnvIntDefault("MAX_ORDER_LINES", 50),
		MaxNoteLength:               EnvIntDefault("MAX_NOTE_LENGTH", 500),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "restaurant_ordering_events"),

		CORSOrigins:       CSV(EnvDefault("CORS_ORIGINS", "http://127.0.0.1:5500")),
		RateLimitRequests: EnvIntDefault("RATE_LIMIT_REQUESTS", 120),
		RateLimitInterval: EnvDurationDefault("RATE_LIMIT_INTERVAL", time.Minute),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
