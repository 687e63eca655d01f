package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/imeet/pkg/auth"
	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	APIBaseURL string `env:"IMEET_API_BASE_URL" envDefault:"http://localhost:8081"` // Backend base URL

	Store           string        `env:"IMEET_STORE" envDefault:"sqlite"`                // Session driver (memory, sqlite, redis)
	StorePath       string        `env:"IMEET_STORE_PATH" envDefault:"imeet-session.db"` // SQLite file
	StorePassphrase string        `env:"IMEET_STORE_PASSPHRASE"`                         // Optional: seal SQLite values at rest
	RedisAddr       string        `env:"IMEET_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix     string        `env:"IMEET_REDIS_PREFIX" envDefault:"imeet:session"`
	RedisTTL        time.Duration `env:"IMEET_REDIS_TTL" envDefault:"0s"` // Zero keeps keys until deleted

	RequestTimeout        time.Duration `env:"IMEET_REQUEST_TIMEOUT" envDefault:"5s"`
	RetryAttempts         int           `env:"IMEET_RETRY_ATTEMPTS" envDefault:"2"`
	RetryBackoff          time.Duration `env:"IMEET_RETRY_BACKOFF" envDefault:"300ms"`
	RetryForbiddenBackoff time.Duration `env:"IMEET_RETRY_FORBIDDEN_BACKOFF" envDefault:"0s"`
	CallbackSettle        time.Duration `env:"IMEET_CALLBACK_SETTLE" envDefault:"1500ms"`
	CallbackRetries       int           `env:"IMEET_CALLBACK_RETRIES" envDefault:"1"`
	RateLimit             float64       `env:"IMEET_RATE_LIMIT" envDefault:"0"` // Requests per second, 0 = unlimited

	Locale    string `env:"IMEET_LOCALE" envDefault:"en-US"`
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

// LoadConfigFrom reads the configuration from environ instead of the process
// environment.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	return parseConfig(env.Options{Environment: environ})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("IMEET_STORE: unknown driver %q", c.Store)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("IMEET_API_BASE_URL is required")
	}
	if c.Store == StoreSQLite && c.StorePath == "" {
		return fmt.Errorf("IMEET_STORE_PATH is required for the sqlite store")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("IMEET_REQUEST_TIMEOUT must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("IMEET_RETRY_ATTEMPTS must be at least 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("IMEET_RATE_LIMIT must not be negative")
	}
	return nil
}

// AuthConfig maps the settings onto the reconciler's configuration.
func (c Config) AuthConfig() auth.Config {
	return auth.Config{
		RequestTimeout: c.RequestTimeout,
		Retry: auth.RetryPolicy{
			Attempts:         c.RetryAttempts,
			Backoff:          c.RetryBackoff,
			ForbiddenBackoff: c.RetryForbiddenBackoff,
		},
		CallbackSettle:  c.CallbackSettle,
		CallbackRetries: c.CallbackRetries,
	}
}
