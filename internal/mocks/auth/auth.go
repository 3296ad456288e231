// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider          = (*MockAuthProvider)(nil)
	_ ports.PasswordAuthenticator = (*StubPasswordAuthenticator)(nil)
	_ ports.SessionStore          = (*MemorySessionStore)(nil)
	_ ports.RoleMapper            = (*StaticRoleMapper)(nil)
	_ ports.TenantDirectory       = (*MapTenantDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultIdentity(),
	}
}

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID: "mock-user-1",
		Name:   "Mock User",
		Email:  "mock.user@example.com",
		Groups: []string{"guests"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = defaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// StubPasswordAuthenticator accepts a fixed set of email/password pairs.
type StubPasswordAuthenticator struct {
	// Users maps email to the identity returned on a password match.
	Users     map[string]StubUser
	ResetErr  error
	Resets    []string
	Registers []ports.Registration
}

// StubUser is a known account of StubPasswordAuthenticator.
type StubUser struct {
	Password string
	Identity domainauth.Identity
}

func (s *StubPasswordAuthenticator) Authenticate(_ context.Context, creds ports.PasswordCredentials) (domainauth.Identity, error) {
	u, ok := s.Users[creds.Email]
	if !ok || u.Password != creds.Password {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}
	id := u.Identity
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = time.Now().Add(time.Hour)
	}
	return id, nil
}

func (s *StubPasswordAuthenticator) Register(_ context.Context, reg ports.Registration) error {
	if _, exists := s.Users[reg.Email]; exists {
		return apperrors.Conflict("email already registered")
	}
	if s.Users == nil {
		s.Users = make(map[string]StubUser)
	}
	s.Registers = append(s.Registers, reg)
	s.Users[reg.Email] = StubUser{
		Password: reg.Password,
		Identity: domainauth.Identity{
			UserID: reg.Email,
			Name:   reg.Name,
			Email:  reg.Email,
			Role:   domainauth.RoleNameCustomer,
		},
	}
	return nil
}

func (s *StubPasswordAuthenticator) RequestPasswordReset(_ context.Context, email string) error {
	s.Resets = append(s.Resets, email)
	return s.ResetErr
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	HotelGroup string
}

func (m StaticRoleMapper) Map(groups []string) string {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleNameAdmin
		}
	}
	for _, g := range groups {
		if m.HotelGroup != "" && g == m.HotelGroup {
			return domainauth.RoleNameHotel
		}
	}
	return domainauth.RoleNameCustomer
}

// MapTenantDirectory is a map-backed tenant directory.
type MapTenantDirectory struct {
	mu      sync.Mutex
	tenants map[string]domainauth.TenantID
	// Err, when set, is returned by every call.
	Err error
}

// NewMapTenantDirectory creates a directory pre-populated with tenants.
func NewMapTenantDirectory(tenants map[string]domainauth.TenantID) *MapTenantDirectory {
	d := &MapTenantDirectory{tenants: make(map[string]domainauth.TenantID, len(tenants))}
	for k, v := range tenants {
		d.tenants[k] = v
	}
	return d
}

func (d *MapTenantDirectory) Lookup(_ context.Context, userID string) (domainauth.TenantID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	t, ok := d.tenants[userID]
	if !ok {
		return "", domainauth.ErrTenantNotAssigned
	}
	return t, nil
}

func (d *MapTenantDirectory) Assign(_ context.Context, userID string, hotelID domainauth.TenantID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	if d.tenants == nil {
		d.tenants = make(map[string]domainauth.TenantID)
	}
	d.tenants[userID] = hotelID
	return nil
}

func (d *MapTenantDirectory) Remove(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	delete(d.tenants, userID)
	return nil
}

func (d *MapTenantDirectory) List(_ context.Context) ([]ports.StaffAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	out := make([]ports.StaffAssignment, 0, len(d.tenants))
	for u, h := range d.tenants {
		out = append(out, ports.StaffAssignment{UserID: u, HotelID: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
