package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"padron/internal/registry"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string

	// DatabaseURL enables the PostgreSQL ledger store when set.
	DatabaseURL string
	// Redis enables the shared credit balance store when configured.
	Redis RedisConfig
	// Kafka enables the ledger reconciliation stream when brokers are set.
	Kafka KafkaConfig

	DefaultCredits  int
	UpstreamTimeout time.Duration
	Endpoints       registry.Endpoints
}

// RedisConfig mirrors the connection knobs the platform redis client accepts.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the ledger stream publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("PADRON_ADDR", ":8080"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("KAFKA_LEDGER_TOPIC", "padron.ledger"),
		},
		DefaultCredits:  envInt("PADRON_DEFAULT_CREDITS", 50),
		UpstreamTimeout: envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	base := strings.TrimRight(envOr("UPSTREAM_BASE_URL", "http://localhost:9000"), "/")
	cfg.Endpoints = registry.Endpoints{
		registry.ServiceSOAT:       envOr("UPSTREAM_SOAT_URL", base+"/soat"),
		registry.ServiceInspection: envOr("UPSTREAM_REVISION_URL", base+"/revision"),
		registry.ServiceOwnership:  envOr("UPSTREAM_SUNARP_URL", base+"/sunarp"),
		registry.ServiceIdentity:   envOr("UPSTREAM_RENIEC_URL", base+"/reniec"),
		registry.ServiceLicense:    envOr("UPSTREAM_LICENCIA_URL", base+"/licencia"),
		registry.ServiceDebt:       envOr("UPSTREAM_DEUDAS_URL", base+"/deudas"),
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
