// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds every runtime setting for the service.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"portal"`

	// CronSecret guards the cleanup endpoint; only the scheduler that
	// knows it may trigger a sweep.
	CronSecret string `env:"CRON_SECRET"`

	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	Token     TokenConfig
	RateLimit RateLimitConfig
	Consul    ConsulConfig
}

// TokenConfig configures session token signing.
type TokenConfig struct {
	Secret           string        `env:"JWT_SECRET"`
	Issuer           string        `env:"JWT_ISSUER"              envDefault:"portal-auth-api"`
	SessionExpiresIn time.Duration `env:"SESSION_TOKEN_EXPIRES_IN" envDefault:"168h"`
}

// RateLimitConfig bounds forgot-password requests per client address.
type RateLimitConfig struct {
	ForgotPasswordLimit  int           `env:"FORGOT_PASSWORD_LIMIT"  envDefault:"5"`
	ForgotPasswordWindow time.Duration `env:"FORGOT_PASSWORD_WINDOW" envDefault:"15m"`
}

// ConsulConfig configures optional service registration. Registration is
// skipped when Address is empty.
type ConsulConfig struct {
	Address     string `env:"CONSUL_ADDRESS"`
	ServiceName string `env:"CONSUL_SERVICE_NAME" envDefault:"portal-auth-api"`
	ServiceHost string `env:"CONSUL_SERVICE_HOST" envDefault:"localhost"`
	ServicePort int    `env:"CONSUL_SERVICE_PORT" envDefault:"8080"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.CronSecret == "" {
		return fmt.Errorf("missing CRON_SECRET environment variable")
	}

	return nil
}
