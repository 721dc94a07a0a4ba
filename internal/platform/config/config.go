// Package config loads service configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr string `env:"CLAIMSHUB_ADDR" envDefault:":8080"`

	// DatabaseURL selects the PostgreSQL claims store when set; otherwise the
	// service falls back to a local SQLite file.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"CLAIMSHUB_SQLITE_PATH" envDefault:"claimshub.db"`

	Redis RedisConfig

	// SessionTTL bounds how long an unsubmitted draft survives in the session
	// store. Mirrors browser sessionStorage ephemerality.
	SessionTTL time.Duration `env:"CLAIMSHUB_SESSION_TTL" envDefault:"30m"`

	// EligibilityDelay is the simulated finance-record check duration.
	EligibilityDelay time.Duration `env:"CLAIMSHUB_ELIGIBILITY_DELAY" envDefault:"3s"`

	// AutoAdvanceDelay is the visual-feedback pause reported to clients for
	// choice steps before navigating.
	AutoAdvanceDelay time.Duration `env:"CLAIMSHUB_AUTO_ADVANCE_DELAY" envDefault:"300ms"`

	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic   string   `env:"CLAIMSHUB_AUDIT_TOPIC" envDefault:"claims.audit"`

	AddressLookupURL string `env:"ADDRESS_LOOKUP_URL"`

	// Introducers seeds the registry as comma-separated slug=name pairs,
	// e.g. "intro1=Rufus Design,intro2=Acme Leads".
	Introducers []string `env:"CLAIMSHUB_INTRODUCERS" envSeparator:","`
}

// RedisConfig tunes the optional Redis-backed session draft store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Load builds a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
