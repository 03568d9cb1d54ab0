package config

import (
	"os"
	"strings"
	"time"
)

// EvaluationWindow is how long after a promise's scheduled time a share can
// still be evaluated.
const EvaluationWindow = 24 * time.Hour

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr           string
	DatabaseURL    string
	MigrationsPath string
	// ShareBaseURL prefixes minted share tokens when building shareable links.
	ShareBaseURL string
	// JWTSigningKey validates caller access tokens on owner-scoped routes.
	JWTSigningKey string
	// AdminTokenHash is the bcrypt hash of the admin token guarding the
	// point policy and disbursement endpoints.
	AdminTokenHash string
	Redis          Redis
	Kafka          Kafka
}

// Redis holds cache connection settings. An empty URL disables the cache.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds audit pipeline settings. Empty brokers disable the Kafka
// publisher and fall back to the in-memory recorder.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:           getenv("PINKY_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("PINKY_DATABASE_URL"),
		MigrationsPath: getenv("PINKY_MIGRATIONS_PATH", "migrations"),
		ShareBaseURL:   getenv("PINKY_SHARE_BASE_URL", "https://pinky.app/s/"),
		JWTSigningKey:  os.Getenv("PINKY_JWT_SIGNING_KEY"),
		AdminTokenHash: os.Getenv("PINKY_ADMIN_TOKEN_HASH"),
		Redis: Redis{
			URL:          os.Getenv("PINKY_REDIS_URL"),
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Kafka: Kafka{
			AuditTopic: getenv("PINKY_AUDIT_TOPIC", "pinky.audit"),
		},
	}
	if brokers := os.Getenv("PINKY_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if cfg.JWTSigningKey == "" {
		// Development default; must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
