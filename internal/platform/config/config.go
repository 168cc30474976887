package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	IdempotencyNone     = "none"
	IdempotencyMemory   = "memory"
	IdempotencyPostgres = "postgres"
	IdempotencyRedis    = "redis"

	EventsNone     = "none"
	EventsRabbitMQ = "rabbitmq"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port string

	StorageBackend string
	DatabaseURL    string
	DBMaxConns     int32
	MigrateOnStart bool

	IdempotencyBackend string
	IdempotencyTTL     time.Duration
	RedisURL           string

	EventsBackend string
	RabbitMQURL   string

	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
}

// LoadFromEnv reads an optional .env file from the working directory, then the
// process environment. Variables already set in the environment win over .env.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Getenv)
}

// Load builds a Config from getenv, applying defaults and validating values.
func Load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:               get("PORT", "8080"),
		StorageBackend:     strings.ToLower(get("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:        get("DATABASE_URL", ""),
		DBMaxConns:         10,
		MigrateOnStart:     true,
		IdempotencyBackend: strings.ToLower(get("IDEMPOTENCY_BACKEND", "")),
		IdempotencyTTL:     24 * time.Hour,
		RedisURL:           get("REDIS_URL", ""),
		EventsBackend:      strings.ToLower(get("EVENTS_BACKEND", EventsNone)),
		RabbitMQURL:        get("RABBITMQ_URL", ""),
		LogLevel:           get("LOG_LEVEL", "info"),
		LogFormat:          get("LOG_FORMAT", "json"),
		ShutdownTimeout:    10 * time.Second,
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q (expected memory|postgres)", cfg.StorageBackend)
	}

	// Idempotency follows the storage backend unless set explicitly.
	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = cfg.StorageBackend
	}
	switch cfg.IdempotencyBackend {
	case IdempotencyNone, IdempotencyMemory:
	case IdempotencyPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when IDEMPOTENCY_BACKEND=postgres")
		}
	case IdempotencyRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when IDEMPOTENCY_BACKEND=redis")
		}
	default:
		return Config{}, fmt.Errorf("unsupported IDEMPOTENCY_BACKEND %q (expected none|memory|postgres|redis)", cfg.IdempotencyBackend)
	}

	switch cfg.EventsBackend {
	case EventsNone:
	case EventsRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, fmt.Errorf("RABBITMQ_URL is required when EVENTS_BACKEND=rabbitmq")
		}
	default:
		return Config{}, fmt.Errorf("unsupported EVENTS_BACKEND %q (expected none|rabbitmq)", cfg.EventsBackend)
	}

	if v := get("DB_MAX_CONNS", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("DB_MAX_CONNS must be a positive integer, got %q", v)
		}
		cfg.DBMaxConns = int32(n)
	}
	if v := get("MIGRATE_ON_START", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MIGRATE_ON_START must be a boolean: %w", err)
		}
		cfg.MigrateOnStart = b
	}
	if v := get("IDEMPOTENCY_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL must be a positive duration (e.g. 24h), got %q", v)
		}
		cfg.IdempotencyTTL = d
	}
	if v := get("SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be a positive duration (e.g. 10s), got %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
