package httpx

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	hotelweb "github.com/hotelbooking/hotelweb"
	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/mocks"
	mockauth "github.com/hotelbooking/hotelweb/internal/mocks/auth"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/hotelbooking/hotelweb/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testCSRF = "test-csrf-token"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	sub, err := fs.Sub(hotelweb.TemplateFS, "frontend/templates")
	require.NoError(t, err)
	r, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: sub, Logger: discardLogger()})
	require.NoError(t, err)
	return r
}

func testUsers() map[string]mockauth.StubUser {
	user := func(token, role, hotelID string) mockauth.StubUser {
		return mockauth.StubUser{Password: "secret123", Identity: domainauth.Identity{
			UserID:  token,
			Name:    "User " + token,
			Role:    role,
			HotelID: hotelID,
			Token:   token,
		}}
	}
	return map[string]mockauth.StubUser{
		"guest@example.com":   user("tok-guest", domainauth.RoleNameCustomer, ""),
		"admin@example.com":   user("tok-admin", domainauth.RoleNameAdmin, ""),
		"op@example.com":      user("tok-op", domainauth.RoleNameHotel, "42"),
		"staff@example.com":   user("tok-staff", domainauth.RoleNameStaff, ""),
		"nohotel@example.com": user("tok-nohotel", domainauth.RoleNameHotel, ""),
		"ghost@example.com":   user("tok-ghost", "manager", ""),
	}
}

type fixtureOptions struct {
	password    ports.PasswordAuthenticator // replaces the stub when set
	rateLimiter *RateLimiter
	noPayments  bool
}

type fixture struct {
	handler  http.Handler
	auth     *service.AuthService
	store    *mockauth.MemorySessionStore
	stub     *mockauth.StubPasswordAuthenticator
	provider *mockauth.MockAuthProvider
	gateway  *mocks.MockPaymentGateway
	metrics  *Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, fixtureOptions{})
}

func newFixtureWith(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := discardLogger()

	f := &fixture{
		store:    mockauth.NewMemorySessionStore(),
		stub:     &mockauth.StubPasswordAuthenticator{Users: testUsers()},
		provider: mockauth.NewMockAuthProvider(),
		gateway:  mocks.NewMockPaymentGateway(ctrl),
		metrics:  NewMetrics(),
	}
	var password ports.PasswordAuthenticator = f.stub
	if opts.password != nil {
		password = opts.password
	}
	f.auth = service.NewAuthService(service.AuthServiceOptions{
		Flows:    service.AuthFlows{Redirect: f.provider, Password: password},
		Sessions: service.SessionOptions{Store: f.store, TTL: time.Hour},
		Directory: service.IdentityDirectory{
			Roles:   mockauth.StaticRoleMapper{AdminGroup: "admins", HotelGroup: "hotels"},
			Tenants: mockauth.NewMapTenantDirectory(map[string]domainauth.TenantID{"sso-op": "42"}),
		},
		Logger: logger,
	})

	services := RouterServices{
		Auth:         f.auth,
		Gate:         NewGate(GateOptions{Policy: access.DefaultPolicy(), Metrics: f.metrics, Logger: logger}),
		Renderer:     newTestRenderer(t),
		Cookies:      CookieJar{},
		RateLimiter:  opts.rateLimiter,
		Metrics:      f.metrics,
		HealthChecks: map[string]HealthCheck{},
		Logger:       logger,
	}
	if !opts.noPayments {
		services.Payments = service.NewPaymentService(service.PaymentServiceOptions{Gateway: f.gateway, Logger: logger})
	}
	f.handler = NewRouter(services)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// saveSession stores a live session and returns a request carrying its cookies.
func (f *fixture) saveSession(t *testing.T, req *http.Request, s domainauth.Session) *http.Request {
	t.Helper()
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(time.Hour)
	}
	require.NoError(t, f.store.Save(req.Context(), s))
	return withCredential(req, s.ID, s.RoleName, s.HotelID)
}

func withCredential(req *http.Request, token, role, hotelID string) *http.Request {
	names := DefaultCookieNames()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: names.Token, Value: token})
	}
	if role != "" {
		req.AddCookie(&http.Cookie{Name: names.Role, Value: role})
	}
	if hotelID != "" {
		req.AddCookie(&http.Cookie{Name: names.HotelID, Value: hotelID})
	}
	return req
}

// formRequest builds a form POST that passes CSRF validation.
func formRequest(path string, form url.Values) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(CSRFFormField, testCSRF)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRF})
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
