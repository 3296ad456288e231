package config

import (
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication providers and session settings
//   - database.go: Postgres tenant directory and Redis session store
//   - gateway.go: Access-control route table and credential cookies
//   - http.go: HTTP server configuration
//   - payment.go: Payment API client
//   - observability.go: Logging, metrics and rate limiting
type AppConfig struct {
	// IsDev controls development mode behavior (static assets from disk, mock auth allowed).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Access gateway configuration
	Gateway GatewayConfig `envPrefix:"GATEWAY_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Payment API configuration
	Payment PaymentConfig `envPrefix:"PAYMENT_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Gateway.Sanitize()
	c.Payment.Sanitize()
	c.Observability.Sanitize()
}

// Warnings reports settings that are accepted but unsafe outside development.
func (c *AppConfig) Warnings() []string {
	var out []string
	out = append(out, c.HTTP.warnings...)
	if !c.Redis.Enabled {
		out = append(out, "REDIS_ENABLED=false: sessions are kept in memory and lost on restart")
	}
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		out = append(out, "AUTH_MODE=mock outside development: every login yields the configured dev identity")
	}
	return out
}

// LogWarnings writes Warnings to logger.
func (c *AppConfig) LogWarnings(logger *slog.Logger) {
	for _, w := range c.Warnings() {
		logger.Warn("configuration warning", "detail", w)
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
