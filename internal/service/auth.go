package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// DefaultSessionTTL applies when a provider reports no expiry.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrSessionExpired is returned by GetSession for sessions past their expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrFlowUnsupported is returned when the configured auth mode lacks the requested flow.
	ErrFlowUnsupported = errors.New("login flow not supported in this auth mode")
	// ErrRoleNotRecognized is returned when a provider reports a role the gateway does not know.
	ErrRoleNotRecognized = errors.New("account role not recognized")
)

// AuthFlows holds the login mechanisms available in the configured auth mode. Either may be nil.
type AuthFlows struct {
	Redirect ports.AuthProvider
	Password ports.PasswordAuthenticator
}

// SessionOptions configures session persistence.
type SessionOptions struct {
	Store ports.SessionStore
	TTL   time.Duration // fallback when the identity carries no expiry
}

// IdentityDirectory resolves roles and hotel tenants for provider identities. Both are optional.
type IdentityDirectory struct {
	Roles   ports.RoleMapper
	Tenants ports.TenantDirectory
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Flows     AuthFlows
	Sessions  SessionOptions
	Directory IdentityDirectory
	Logger    *slog.Logger
}

// AuthService turns provider identities into persisted sessions whose
// id, role and hotel id become the token, role and hotel_id cookies.
type AuthService struct {
	provider ports.AuthProvider
	password ports.PasswordAuthenticator
	sessions ports.SessionStore
	ttl      time.Duration
	roles    ports.RoleMapper
	tenants  ports.TenantDirectory
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService. A session store is required.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Sessions.Store == nil {
		panic("auth service: session store is required")
	}
	ttl := opts.Sessions.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Flows.Redirect,
		password: opts.Flows.Password,
		sessions: opts.Sessions.Store,
		ttl:      ttl,
		roles:    opts.Directory.Roles,
		tenants:  opts.Directory.Tenants,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}
}

// SupportsPassword reports whether email/password login is available.
func (s *AuthService) SupportsPassword() bool { return s.password != nil }

// SupportsRedirect reports whether a redirect (SSO) login is available.
func (s *AuthService) SupportsRedirect() bool { return s.provider != nil }

// Login verifies an email/password pair and persists a session.
func (s *AuthService) Login(ctx context.Context, creds ports.PasswordCredentials) (*domainauth.Session, error) {
	if s.password == nil {
		return nil, ErrFlowUnsupported
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" {
		return nil, apperrors.ValidationField("email", "Email is required")
	}
	if creds.Password == "" {
		return nil, apperrors.ValidationField("password", "Password is required")
	}

	identity, err := s.password.Authenticate(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return s.startSession(ctx, identity)
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error) {
	if s.password == nil {
		return nil, ErrFlowUnsupported
	}
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
	switch {
	case reg.Name == "":
		return nil, apperrors.ValidationField("name", "Name is required")
	case !validEmail(reg.Email):
		return nil, apperrors.ValidationField("email", "A valid email is required")
	case len(reg.Password) < 8:
		return nil, apperrors.ValidationField("password", "Password must be at least 8 characters")
	}

	if err := s.password.Register(ctx, reg); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.Login(ctx, ports.PasswordCredentials{Email: reg.Email, Password: reg.Password})
}

// ForgotPassword forwards a reset request. The caller shows the same
// confirmation whether or not the address exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if s.password == nil {
		return ErrFlowUnsupported
	}
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return apperrors.ValidationField("email", "A valid email is required")
	}
	if err := s.password.RequestPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates a redirect flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrFlowUnsupported
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity, resolves its role and
// hotel, and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, ErrFlowUnsupported
	}
	switch {
	case input.Code == "":
		return nil, errors.New("authorization code is required")
	case input.State == "":
		return nil, errors.New("state parameter is required")
	case input.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return s.startSession(ctx, identity)
}

// GetSession retrieves a live session by ID. Expired sessions are deleted.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Logout removes a session. An empty id is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, identity domainauth.Identity) (*domainauth.Session, error) {
	role, err := s.resolveRole(ctx, identity)
	if err != nil {
		return nil, err
	}

	session := domainauth.Session{
		ID:        identity.Token,
		UserID:    identity.UserID,
		Name:      identity.Name,
		Email:     identity.Email,
		RoleName:  role.Name(),
		ExpiresAt: identity.ExpiresAt,
	}
	if tenant, ok := domainauth.TenantOf(role); ok {
		session.HotelID = tenant.String()
	}
	if session.ID == "" {
		session.ID = generateSessionID()
	}
	now := s.now()
	if session.ExpiresAt.IsZero() || session.ExpiresAt.After(now.Add(s.ttl)) {
		session.ExpiresAt = now.Add(s.ttl)
	}
	if session.Expired(now) {
		return nil, apperrors.Unauthorized("credentials have already expired")
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.InfoContext(ctx, "session started",
		"user_id", session.UserID,
		"role", session.RoleName,
		"hotel_id", session.HotelID,
		"expires_at", session.ExpiresAt)
	return &session, nil
}

// resolveRole prefers a role reported by the provider and falls back to group
// mapping. A hotel role takes its tenant from the identity or, failing that,
// the tenant directory; without one the session stays unscoped.
func (s *AuthService) resolveRole(ctx context.Context, identity domainauth.Identity) (domainauth.Role, error) {
	name := identity.Role
	if strings.TrimSpace(name) == "" && s.roles != nil {
		name = s.roles.Map(identity.Groups)
	}

	role := domainauth.ParseRole(name, identity.HotelID)
	switch role.(type) {
	case domainauth.UnknownRole:
		s.logger.WarnContext(ctx, "login rejected: unrecognized role", "user_id", identity.UserID, "role", name)
		return nil, apperrors.Wrap(ErrRoleNotRecognized, apperrors.ErrCodeUnauthorized, "Your account has no access to this site")
	case domainauth.UnscopedHotelRole:
		return s.lookupTenant(ctx, identity.UserID)
	}
	return role, nil
}

func (s *AuthService) lookupTenant(ctx context.Context, userID string) (domainauth.Role, error) {
	if s.tenants == nil || userID == "" {
		s.logger.WarnContext(ctx, "hotel session without hotel id", "user_id", userID)
		return domainauth.UnscopedHotelRole{}, nil
	}
	tenant, err := s.tenants.Lookup(ctx, userID)
	if errors.Is(err, domainauth.ErrTenantNotAssigned) {
		s.logger.WarnContext(ctx, "hotel user has no hotel assignment", "user_id", userID)
		return domainauth.UnscopedHotelRole{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	return domainauth.NewHotelRole(tenant), nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// generateSessionID creates a random session ID for providers that issue no token.
func generateSessionID() string {
	return uuid.New().String()
}
