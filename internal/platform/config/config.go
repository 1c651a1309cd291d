package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// devAntiForgerySecret mirrors the ANTIFORGERY_SECRET default; serve warns when it is in use.
const devAntiForgerySecret = "dev-antiforgery-secret-change-in-production"

// Server captures the whole process configuration.
type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	TracingEnabled  bool          `env:"TRACING_ENABLED"`

	Storage     Storage
	Redis       RedisConfig
	Kafka       Kafka
	AntiForgery AntiForgery
	Payment     Payment
}

type Storage struct {
	Backend         string        `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"sampad.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	TxTimeout       time.Duration `env:"DB_TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig is optional; an empty URL means the in-process replay store is used.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka is enabled when Brokers is non-empty.
type Kafka struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic             string        `env:"KAFKA_TOPIC" envDefault:"sampad.registrations"`
	Acks              string        `env:"KAFKA_ACKS" envDefault:"all"`
	ClientID          string        `env:"KAFKA_CLIENT_ID" envDefault:"sampad"`
	TopicPartitions   int32         `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16         `env:"KAFKA_REPLICATION_FACTOR" envDefault:"1"`
	PollInterval      time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	BatchSize         int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type AntiForgery struct {
	Enabled bool          `env:"ANTIFORGERY_ENABLED" envDefault:"true"`
	Secret  string        `env:"ANTIFORGERY_SECRET" envDefault:"dev-antiforgery-secret-change-in-production"`
	TTL     time.Duration `env:"ANTIFORGERY_TTL" envDefault:"30m"`
}

type Payment struct {
	CardNumber string `env:"PAYMENT_CARD_NUMBER"`
	CardOwner  string `env:"PAYMENT_CARD_OWNER"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot start a working server.
func (c Server) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
	}
	if c.AntiForgery.Enabled {
		if len(c.AntiForgery.Secret) < 16 {
			errs = append(errs, errors.New("ANTIFORGERY_SECRET must be at least 16 bytes"))
		}
		if c.AntiForgery.TTL <= 0 {
			errs = append(errs, errors.New("ANTIFORGERY_TTL must be positive"))
		}
	}
	if c.Kafka.Enabled() && c.Kafka.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// UsesDevSecret reports whether the built-in development anti-forgery secret is in use.
func (c Server) UsesDevSecret() bool {
	return c.AntiForgery.Secret == devAntiForgerySecret
}
