// Package devauth provides a simple, config-driven identity provider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// Config controls the dev auth provider behavior.
// UserID, Email and Role are required; HotelID is only meaningful for the hotel role.
type Config struct {
	UserID          string
	Name            string
	Email           string
	Role            string
	HotelID         string
	Password        string        // when set, password logins must match it
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider and ports.PasswordAuthenticator for local development.
// The redirect flow short-circuits by sending the browser straight to our own callback
// with locally generated state and nonce. Every successful login yields the configured identity.
type Provider struct {
	mu              sync.Mutex
	identity        domainauth.Identity
	password        string
	sessionDuration time.Duration
}

var (
	_ ports.AuthProvider          = (*Provider)(nil)
	_ ports.PasswordAuthenticator = (*Provider)(nil)
)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if _, ok := domainauth.ParseRole(cfg.Role, cfg.HotelID).(domainauth.UnknownRole); ok {
		return nil, fmt.Errorf("dev auth: unsupported role %q", cfg.Role)
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:  cfg.UserID,
			Name:    cfg.Name,
			Email:   cfg.Email,
			Role:    strings.ToLower(strings.TrimSpace(cfg.Role)),
			HotelID: strings.TrimSpace(cfg.HotelID),
		},
		password:        cfg.Password,
		sessionDuration: dur,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return p.current(), nil
}

// Authenticate accepts any email when no password is configured.
func (p *Provider) Authenticate(_ context.Context, creds ports.PasswordCredentials) (domainauth.Identity, error) {
	if p.password != "" && creds.Password != p.password {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}
	id := p.current()
	if creds.Email != "" {
		id.Email = creds.Email
	}
	return id, nil
}

// Register is a no-op in development.
func (p *Provider) Register(_ context.Context, _ ports.Registration) error { return nil }

// RequestPasswordReset is a no-op in development.
func (p *Provider) RequestPasswordReset(_ context.Context, _ string) error { return nil }

func (p *Provider) current() domainauth.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = time.Now().Add(p.sessionDuration)
	return id
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
