package config

import (
	"os"
	"time"

	dErrors "fusebot/pkg/domain-errors"
)

// Config captures process-wide configuration for the bot server.
// It is loaded once at startup; services receive the pieces they need
// explicitly rather than reading the environment themselves.
type Config struct {
	Addr string

	// FSNHash is the shared integrity header attached to every identity
	// provider request. It is required: starting without it would silently
	// send an empty header and every provider call would fail downstream.
	FSNHash string

	ProviderBaseURL string
	ProviderTimeout time.Duration

	// RuntimeSigningKey verifies bearer tokens presented by the chat runtime
	// on the webhook surface.
	RuntimeSigningKey string

	SessionTTL time.Duration

	Redis       RedisConfig
	DatabaseURL string

	Kafka KafkaConfig
}

// RedisConfig holds connection settings for the session store backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit event sink. Empty brokers means
// audit events stay in the in-process store only.
type KafkaConfig struct {
	Brokers         string
	Topic           string
	DeliveryTimeout time.Duration
}

const (
	defaultAddr            = ":8080"
	defaultProviderBaseURL = "https://api.techfsn.com"
	defaultProviderTimeout = 15 * time.Second
	defaultSessionTTL      = 24 * time.Hour
	defaultAuditTopic      = "fusebot.audit"
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("BOT_ADDR", defaultAddr),
		FSNHash:           os.Getenv("FSN_HASH"),
		ProviderBaseURL:   envOr("PROVIDER_BASE_URL", defaultProviderBaseURL),
		ProviderTimeout:   durationOr("PROVIDER_TIMEOUT", defaultProviderTimeout),
		RuntimeSigningKey: os.Getenv("RUNTIME_SIGNING_KEY"),
		SessionTTL:        durationOr("SESSION_TTL", defaultSessionTTL),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			Topic:           envOr("KAFKA_AUDIT_TOPIC", defaultAuditTopic),
			DeliveryTimeout: durationOr("KAFKA_DELIVERY_TIMEOUT", 10*time.Second),
		},
	}
	return cfg
}

// Validate checks the configuration invariants that must fail fast at startup.
func (c Config) Validate() error {
	if c.FSNHash == "" {
		return dErrors.New(dErrors.CodeValidation, "FSN_HASH is required")
	}
	if c.ProviderBaseURL == "" {
		return dErrors.New(dErrors.CodeValidation, "PROVIDER_BASE_URL must not be empty")
	}
	if c.RuntimeSigningKey == "" {
		return dErrors.New(dErrors.CodeValidation, "RUNTIME_SIGNING_KEY is required")
	}
	if c.ProviderTimeout <= 0 {
		return dErrors.New(dErrors.CodeValidation, "PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
