package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeBackend logs users in with email and password against the booking REST backend.
	AuthModeBackend AuthMode = "backend"
	// AuthModeOIDC signs staff in through an OpenID Connect provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "backend", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	case "oauth":
		*a = AuthModeOIDC
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, oidc, mock)", v)
	}
}

// BackendConfig points at the booking REST backend used in backend mode.
type BackendConfig struct {
	URL                string        `env:"API_URL"`
	LoginPath          string        `env:"LOGIN_PATH"           envDefault:"/api/auth/login"`
	RegisterPath       string        `env:"REGISTER_PATH"        envDefault:"/api/auth/register"`
	ForgotPasswordPath string        `env:"FORGOT_PASSWORD_PATH" envDefault:"/api/auth/forgot-password"`
	Timeout            time.Duration `env:"TIMEOUT"              envDefault:"10s"`
}

// ResponsePathsConfig holds JMESPath expressions over the backend login response.
type ResponsePathsConfig struct {
	Token   string `env:"TOKEN_PATH"    envDefault:"data.token"`
	Role    string `env:"ROLE_PATH"     envDefault:"data.user.role"`
	HotelID string `env:"HOTEL_ID_PATH" envDefault:"data.user.hotel_id"`
	UserID  string `env:"USER_ID_PATH"  envDefault:"data.user.id"`
	Name    string `env:"NAME_PATH"     envDefault:"data.user.name"`
	Email   string `env:"EMAIL_PATH"    envDefault:"data.user.email"`
}

// OIDCConfig contains OAuth/OIDC configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	GroupsClaim  string `env:"GROUPS_CLAIM"  envDefault:"groups"`
	// HotelIDClaim names a token claim carrying the hotel id. Empty means
	// hotel ids come only from the tenant directory.
	HotelIDClaim string `env:"HOTEL_ID_CLAIM"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"  envDefault:"dev-user"`
	Name     string `env:"NAME"     envDefault:"Dev User"`
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
	Role     string `env:"ROLE"     envDefault:"admin"`
	HotelID  string `env:"HOTEL_ID"`
	Password string `env:"PASSWORD"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	Backend       BackendConfig       `envPrefix:"BACKEND_"`
	ResponsePaths ResponsePathsConfig `envPrefix:"AUTH_"`
	OIDC          OIDCConfig          `envPrefix:"OIDC_"`
	DevAuth       DevAuthConfig       `envPrefix:"DEV_AUTH_"`

	// SessionTTL bounds every session; backend tokens with an earlier exp end sooner.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`

	// Group names mapped onto roles in oidc mode.
	AdminGroup string `env:"AUTH_ADMIN_GROUP" envDefault:"hotelweb-admins"`
	HotelGroup string `env:"AUTH_HOTEL_GROUP" envDefault:"hotelweb-hotels"`
	StaffGroup string `env:"AUTH_STAFF_GROUP" envDefault:"hotelweb-staff"`

	// StaticTenants is "user=hotel;user2=hotel2", used when DB_ENABLED=false.
	StaticTenants string `env:"AUTH_STATIC_TENANTS"`
}

// Sanitize trims values and applies defaults that env tags cannot express.
func (a *AuthConfig) Sanitize() {
	a.Backend.URL = strings.TrimSpace(a.Backend.URL)
	if a.Backend.Timeout <= 0 {
		a.Backend.Timeout = 10 * time.Second
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = 24 * time.Hour
	}
	a.OIDC.DiscoveryURL = strings.TrimSpace(a.OIDC.DiscoveryURL)
	if a.OIDC.GroupsClaim == "" {
		a.OIDC.GroupsClaim = "groups"
	}
	a.DevAuth.Role = strings.ToLower(strings.TrimSpace(a.DevAuth.Role))
}

// Validate reports missing settings for the selected mode.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeBackend:
		if a.Backend.URL == "" {
			return fmt.Errorf("BACKEND_API_URL is required when AUTH_MODE=%s", a.Mode)
		}
	case AuthModeOIDC:
		switch {
		case a.OIDC.ClientID == "":
			return fmt.Errorf("OIDC_CLIENT_ID is required when AUTH_MODE=%s", a.Mode)
		case a.OIDC.ClientSecret == "":
			return fmt.Errorf("OIDC_CLIENT_SECRET is required when AUTH_MODE=%s", a.Mode)
		case a.OIDC.DiscoveryURL == "":
			return fmt.Errorf("OIDC_DISCOVERY_URL is required when AUTH_MODE=%s", a.Mode)
		}
	case AuthModeMock:
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", a.Mode)
	}
	return nil
}
