package config

import (
	"log/slog"
	"strings"
	"time"
)

// ObservabilityConfig groups logging, metrics and credential-endpoint throttling.
type ObservabilityConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Metrics   MetricsConfig
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.RateLimit.Sanitize()
}

// SlogLevel maps LogLevel onto slog; unknown values mean info.
func (c ObservabilityConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// MetricsConfig controls the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// RateLimitConfig throttles POST /login, /register and /forgot-password per client IP.
type RateLimitConfig struct {
	Enabled    bool          `env:"ENABLED"     envDefault:"true"`
	PerMinute  int           `env:"PER_MINUTE"  envDefault:"10"`
	Burst      int           `env:"BURST"       envDefault:"5"`
	IdleTTL    time.Duration `env:"IDLE_TTL"    envDefault:"10m"`
	TrustProxy bool          `env:"TRUST_PROXY" envDefault:"false"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *RateLimitConfig) Sanitize() {
	if c.PerMinute <= 0 {
		c.PerMinute = 10
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.IdleTTL < time.Minute {
		c.IdleTTL = time.Minute
	}
}
