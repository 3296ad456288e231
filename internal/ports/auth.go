// Package ports defines interfaces (hexagonal ports) for auth, tenancy and payment behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"encoding/json"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes a redirect-based authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// PasswordCredentials is an email/password pair submitted by the login form.
type PasswordCredentials struct {
	Email    string
	Password string
}

// Registration is the sign-up form payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// PasswordAuthenticator verifies credentials against the booking backend.
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, creds PasswordCredentials) (domainauth.Identity, error)
	Register(ctx context.Context, reg Registration) error
	RequestPasswordReset(ctx context.Context, email string) error
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to a role name.
type RoleMapper interface {
	Map(groups []string) string
}

// StaffAssignment links a hotel-role user to the hotel they administer.
type StaffAssignment struct {
	UserID    string
	HotelID   domainauth.TenantID
	CreatedAt time.Time
}

// TenantDirectory resolves which hotel a hotel-role user belongs to.
type TenantDirectory interface {
	Lookup(ctx context.Context, userID string) (domainauth.TenantID, error)
	Assign(ctx context.Context, userID string, hotelID domainauth.TenantID) error
	Remove(ctx context.Context, userID string) error
	List(ctx context.Context) ([]StaffAssignment, error)
}

// PaymentRequest is the transaction payload forwarded to the payment API.
// Customer and Items are passed through untouched.
type PaymentRequest struct {
	OrderID     string          `json:"order_id"`
	GrossAmount int64           `json:"gross_amount"`
	Customer    json.RawMessage `json:"customer,omitempty"`
	Items       json.RawMessage `json:"items,omitempty"`
}

// PaymentToken is the hosted payment session returned by the payment API.
type PaymentToken struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentGateway creates hosted payment sessions.
type PaymentGateway interface {
	CreateToken(ctx context.Context, req PaymentRequest) (PaymentToken, error)
}
