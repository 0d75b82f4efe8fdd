// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development default; production overrides
// via ADDISCARES_* variables.
package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	JWT      JWT
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
	// AdminToken guards the principal-directory admin endpoints.
	AdminToken string
}

// Postgres holds the notification store connection. An empty URL selects
// the in-memory backend at startup; the choice is injected into the core
// and never re-read mid-operation.
type Postgres struct {
	URL string
}

// Redis holds the unread-count cache connection. Empty URL disables the
// cache.
type Redis struct {
	URL       string
	UnreadTTL time.Duration
}

// Kafka holds the lifecycle event sink. No brokers means events are
// discarded.
type Kafka struct {
	Brokers []string
	Topic   string
}

type JWT struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:       envOr("ADDISCARES_ADDR", ":8080"),
			AdminToken: os.Getenv("ADDISCARES_ADMIN_TOKEN"),
		},
		Postgres: Postgres{
			URL: os.Getenv("ADDISCARES_POSTGRES_URL"),
		},
		Redis: Redis{
			URL:       os.Getenv("ADDISCARES_REDIS_URL"),
			UnreadTTL: durationOr("ADDISCARES_UNREAD_TTL", 30*time.Second),
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("ADDISCARES_KAFKA_BROKERS")),
			Topic:   envOr("ADDISCARES_KAFKA_TOPIC", "addiscares.notification-events"),
		},
		JWT: JWT{
			// Development default only; override in production.
			SigningKey: envOr("ADDISCARES_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envOr("ADDISCARES_JWT_ISSUER", "addiscares"),
			Audience:   envOr("ADDISCARES_JWT_AUDIENCE", "addiscares-api"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
