package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is read once at startup and passed down explicitly.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5000"`
	Env            string        `env:"APP_ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"doctorsService"`

	AccessTokenSecret string        `env:"ACCESS_TOKEN"`
	TokenTTL          time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	StripeBaseURL   string `env:"STRIPE_BASE_URL"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SendGridHost   string `env:"SENDGRID_HOST"`
	EmailFrom      string `env:"EMAIL_FROM" envDefault:"no-reply@doctors-portal.local"`
	EmailFromName  string `env:"EMAIL_FROM_NAME" envDefault:"Doctors Portal"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Warn().Err(err).Strs("files", files).Msg("no .env loaded, using process environment")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", StoreMongo)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
