// Package backendapi talks to the hotel-booking REST backend for password
// login, registration and password-reset requests.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 1 << 20

// ResponsePaths are JMESPath expressions locating identity fields in the login response.
type ResponsePaths struct {
	Token   string
	Role    string
	HotelID string
	UserID  string
	Name    string
	Email   string
}

// DefaultResponsePaths matches the backend's {"data":{"token":...,"user":{...}}} envelope.
func DefaultResponsePaths() ResponsePaths {
	return ResponsePaths{
		Token:   "data.token",
		Role:    "data.user.role",
		HotelID: "data.user.hotel_id",
		UserID:  "data.user.id",
		Name:    "data.user.name",
		Email:   "data.user.email",
	}
}

// Config configures the backend client.
type Config struct {
	BaseURL            string
	LoginPath          string
	RegisterPath       string
	ForgotPasswordPath string
	Paths              ResponsePaths
	// SessionTTL bounds sessions whose token carries no exp claim.
	SessionTTL time.Duration
	HTTPClient *http.Client
}

// Client implements ports.PasswordAuthenticator against the REST backend.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

var _ ports.PasswordAuthenticator = (*Client)(nil)

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/api/auth/login"
	}
	if cfg.RegisterPath == "" {
		cfg.RegisterPath = "/api/auth/register"
	}
	if cfg.ForgotPasswordPath == "" {
		cfg.ForgotPasswordPath = "/api/auth/forgot-password"
	}
	def := DefaultResponsePaths()
	cfg.Paths.Token = firstNonEmpty(cfg.Paths.Token, def.Token)
	cfg.Paths.Role = firstNonEmpty(cfg.Paths.Role, def.Role)
	cfg.Paths.HotelID = firstNonEmpty(cfg.Paths.HotelID, def.HotelID)
	cfg.Paths.UserID = firstNonEmpty(cfg.Paths.UserID, def.UserID)
	cfg.Paths.Name = firstNonEmpty(cfg.Paths.Name, def.Name)
	cfg.Paths.Email = firstNonEmpty(cfg.Paths.Email, def.Email)
	for _, expr := range []string{cfg.Paths.Token, cfg.Paths.Role, cfg.Paths.HotelID, cfg.Paths.UserID, cfg.Paths.Name, cfg.Paths.Email} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid response path %q: %w", expr, err)
		}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, http: hc, now: time.Now}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// Authenticate posts the credentials and maps the response into an Identity.
// 400/401/403/422 answers are reported as domainauth.ErrInvalidCredentials.
func (c *Client) Authenticate(ctx context.Context, creds ports.PasswordCredentials) (domainauth.Identity, error) {
	var body any
	status, err := c.doJSON(ctx, c.cfg.LoginPath, loginRequest{Email: creds.Email, Password: creds.Password}, &body)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if isRejection(status) {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}
	if status >= 300 {
		return domainauth.Identity{}, apperrors.Newf(apperrors.ErrCodeUnavailable, "backend login status=%d", status)
	}

	id, err := c.identityFrom(body)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if id.Email == "" {
		id.Email = creds.Email
	}
	if id.UserID == "" {
		id.UserID = id.Email
	}
	return id, nil
}

// Register forwards the sign-up form. A 409 means the email is taken.
func (c *Client) Register(ctx context.Context, reg ports.Registration) error {
	status, err := c.doJSON(ctx, c.cfg.RegisterPath, reg, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusConflict:
		return apperrors.Conflict("email is already registered")
	case isRejection(status):
		return apperrors.Validation("registration was rejected")
	case status >= 300:
		return apperrors.Newf(apperrors.ErrCodeUnavailable, "backend register status=%d", status)
	}
	return nil
}

// RequestPasswordReset forwards the email. Unknown addresses are not reported.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	status, err := c.doJSON(ctx, c.cfg.ForgotPasswordPath, forgotPasswordRequest{Email: email}, nil)
	if err != nil {
		return err
	}
	if status >= 500 {
		return apperrors.Newf(apperrors.ErrCodeUnavailable, "backend forgot-password status=%d", status)
	}
	return nil
}

func (c *Client) identityFrom(body any) (domainauth.Identity, error) {
	token := c.search(c.cfg.Paths.Token, body)
	if token == "" {
		return domainauth.Identity{}, apperrors.New(apperrors.ErrCodeUnavailable, "backend login response has no token")
	}
	return domainauth.Identity{
		UserID:    c.search(c.cfg.Paths.UserID, body),
		Name:      c.search(c.cfg.Paths.Name, body),
		Email:     c.search(c.cfg.Paths.Email, body),
		Role:      c.search(c.cfg.Paths.Role, body),
		HotelID:   c.search(c.cfg.Paths.HotelID, body),
		Token:     token,
		ExpiresAt: c.expiry(token),
	}, nil
}

// search evaluates expr and renders scalars as strings; anything else is "".
func (c *Client) search(expr string, body any) string {
	v, err := jmespath.Search(expr, body)
	if err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%.0f", t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// expiry reads exp from a JWT without verifying it; the backend remains the
// authority on token validity. The session ends at exp or after SessionTTL,
// whichever comes first.
func (c *Client) expiry(token string) time.Time {
	fallback := c.now().Add(c.cfg.SessionTTL)
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fallback
	}
	if claims.ExpiresAt == nil {
		return fallback
	}
	if claims.ExpiresAt.Time.Before(fallback) {
		return claims.ExpiresAt.Time
	}
	return fallback
}

// doJSON posts in as JSON and decodes the response into out when out is non-nil
// and the status is 2xx. Transport failures are Unavailable.
func (c *Client) doJSON(ctx context.Context, path string, in, out any) (int, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "backend request failed")
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return resp.StatusCode, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode backend response")
	}
	return resp.StatusCode, nil
}

func isRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
