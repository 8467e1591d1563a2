package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "demeter-dev-secret"

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8007"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"demeter.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"demeter-dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	DeskLockTTL   time.Duration `env:"DESK_LOCK_TTL" envDefault:"5s"`
	DeskLockWait  time.Duration `env:"DESK_LOCK_WAIT" envDefault:"3s"`

	AMQPURL      string `env:"RABBITMQ_URL"`
	KitchenQueue string `env:"KITCHEN_QUEUE" envDefault:"kitchen.requests"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"50"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
	LoginRatePerMinute int     `env:"LOGIN_RATE_PER_MINUTE" envDefault:"5"`

	BootstrapAdminID     string `env:"BOOTSTRAP_ADMIN_ID"`
	BootstrapAdminSecret string `env:"BOOTSTRAP_ADMIN_SECRET"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is empty")
	}
	if c.TokenTTL <= 0 || c.DeskLockTTL <= 0 || c.DeskLockWait <= 0 {
		return errors.New("TOKEN_TTL, DESK_LOCK_TTL and DESK_LOCK_WAIT must be positive")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if (c.BootstrapAdminID == "") != (c.BootstrapAdminSecret == "") {
		return errors.New("BOOTSTRAP_ADMIN_ID and BOOTSTRAP_ADMIN_SECRET must be set together")
	}
	return nil
}
