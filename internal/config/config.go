package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Store    StoreConfig    `envconfig:"STORE"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Postgres PostgresConfig `envconfig:"POSTGRES"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	AMQP     AMQPConfig     `envconfig:"AMQP"`
	SMTP     SMTPConfig     `envconfig:"SMTP"`
	Auth     AuthConfig     `envconfig:"JWT"`
	Jobs     JobsConfig     `envconfig:"JOBS"`
	Notify   NotifyConfig   `envconfig:"NOTIFY"`
	Otel     OtelConfig     `envconfig:"OTEL"`
}

type StoreConfig struct {
	Driver string `envconfig:"DRIVER" default:"postgres"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8080"`
	SubmitRateLimit int           `envconfig:"SUBMIT_RATE_LIMIT" default:"10"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"2h"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

type PostgresConfig struct {
	User     string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"DB"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"5432"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"MAX_CONNS" default:"10"`
}

func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     p.Name,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

// RedisConfig with an empty Addr runs without Redis: no cache, no
// idempotency, no rate limit, no live stream, no distributed job lock.
type RedisConfig struct {
	Addr     string        `envconfig:"ADDR"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB" default:"0"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// AMQPConfig with an empty URL logs pushes instead of publishing them.
type AMQPConfig struct {
	URL          string `envconfig:"URL"`
	PushExchange string `envconfig:"PUSH_EXCHANGE" default:"lodgego.push"`
}

// SMTPConfig with an empty Host disables the email push channel.
type SMTPConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"lodging@localhost"`
}

type AuthConfig struct {
	Secret string `envconfig:"SECRET"`
}

type JobsConfig struct {
	ReconcileAt      string        `envconfig:"RECONCILE_AT" default:"03:00"`
	ReconcileGrace   time.Duration `envconfig:"RECONCILE_GRACE" default:"48h"`
	DispatchInterval time.Duration `envconfig:"DISPATCH_INTERVAL" default:"1m"`
	Timezone         string        `envconfig:"TIMEZONE" default:"UTC"`
	LockTTL          time.Duration `envconfig:"LOCK_TTL" default:"10m"`
}

// ReconcileClock returns the hour and minute of JOBS_RECONCILE_AT.
func (j JobsConfig) ReconcileClock() (hour, minute uint, err error) {
	t, err := time.Parse("15:04", j.ReconcileAt)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid JOBS_RECONCILE_AT %q: %w", j.ReconcileAt, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

func (j JobsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(j.Timezone)
}

type NotifyConfig struct {
	DefaultTTL   time.Duration `envconfig:"DEFAULT_TTL" default:"168h"`
	BroadcastTTL time.Duration `envconfig:"BROADCAST_TTL" default:"24h"`
}

type OtelConfig struct {
	Endpoint string `envconfig:"ENDPOINT"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.User == "" {
			errs = append(errs, errors.New("missing POSTGRES_USER"))
		}
		if c.Postgres.Password == "" {
			errs = append(errs, errors.New("missing POSTGRES_PASSWORD"))
		}
		if c.Postgres.Name == "" {
			errs = append(errs, errors.New("missing POSTGRES_DB"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("missing JWT_SECRET"))
	}

	if _, _, err := c.Jobs.ReconcileClock(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Jobs.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid JOBS_TIMEZONE: %w", err))
	}

	if c.Jobs.DispatchInterval <= 0 {
		errs = append(errs, errors.New("JOBS_DISPATCH_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
