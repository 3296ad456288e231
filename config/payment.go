package config

import (
	"strings"
	"time"
)

// PaymentConfig configures the hosted-payment API client.
// The payment endpoint is disabled when URL or ServerKey is empty.
type PaymentConfig struct {
	URL       string        `env:"API_URL"`
	ServerKey string        `env:"SERVER_KEY"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize trims the endpoint and key.
func (p *PaymentConfig) Sanitize() {
	p.URL = strings.TrimSpace(p.URL)
	p.ServerKey = strings.TrimSpace(p.ServerKey)
	if p.Timeout <= 0 {
		p.Timeout = 15 * time.Second
	}
}

// Enabled reports whether the payment proxy should be served.
func (p PaymentConfig) Enabled() bool {
	return p.URL != "" && p.ServerKey != ""
}
