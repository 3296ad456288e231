package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFromRequest(t *testing.T) {
	names := DefaultCookieNames()

	r := withCredential(httptest.NewRequest(http.MethodGet, "/", nil), "abc", "hotel", "42")
	cred := CredentialFromRequest(r, names)
	assert.True(t, cred.Authenticated())
	assert.Equal(t, domainauth.HotelRole{Tenant: "42"}, cred.Role)

	r = withCredential(httptest.NewRequest(http.MethodGet, "/", nil), "", "admin", "")
	cred = CredentialFromRequest(r, names)
	assert.False(t, cred.Authenticated())
	assert.Equal(t, domainauth.UnknownRole{}, cred.RoleOrUnknown(), "a role without a token is ignored")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
	r.AddCookie(&http.Cookie{Name: "r", Value: "admin"})
	cred = CredentialFromRequest(r, CookieNames{Token: "sid", Role: "r"})
	assert.Equal(t, domainauth.AdminRole{}, cred.Role)
}

func TestGate_WrapPassesAllowedRequestsUnmodified(t *testing.T) {
	gate := NewGate(GateOptions{Logger: discardLogger()})

	var seen *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusTeapot)
	})
	req := withCredential(httptest.NewRequest(http.MethodGet, "/home", nil), "abc", "customer", "")
	rec := httptest.NewRecorder()
	gate.Wrap(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Same(t, req, seen)
	assert.Empty(t, rec.Result().Cookies(), "the gateway never writes cookies")
}

func TestGate_WrapRedirects(t *testing.T) {
	metrics := NewMetrics()
	gate := NewGate(GateOptions{Metrics: metrics, Logger: discardLogger()})
	called := false
	h := gate.WrapFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect=/profile", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Hx-Request", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login?redirect=/profile", rec.Header().Get("Hx-Redirect"))
	assert.Empty(t, rec.Header().Get("Location"))

	assert.Contains(t, scrape(t, metrics), `hotelweb_gateway_decisions_total{outcome="redirect",reason="login_required"} 2`)
}

func TestGate_Probe(t *testing.T) {
	gate := NewGate(GateOptions{Logger: discardLogger()})

	d, err := gate.Probe("/hotel/dashboard/42/rooms", "abc", "hotel", "42")
	require.NoError(t, err)
	assert.True(t, d.Allowed())
	assert.Equal(t, access.ClassTenantScoped, d.Class)

	d, err = gate.Probe("/hotel/dashboard/7", "abc", "hotel", "42")
	require.NoError(t, err)
	assert.Equal(t, access.ReasonCrossTenant, d.Reason)
	assert.Equal(t, "/home", d.Location)

	d, err = gate.Probe("/dashboard/users", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/login?redirect=/dashboard/users", d.Location)

	_, err = gate.Probe("%zz", "", "", "")
	require.Error(t, err)
}

func TestGate_TenantPattern(t *testing.T) {
	assert.Equal(t, "/hotel/dashboard/{hotelID}", NewGate(GateOptions{}).TenantPattern())

	routes := access.DefaultRoutes()
	routes.TenantScoped = "/properties/"
	gate := NewGate(GateOptions{Policy: access.NewPolicy(routes)})
	assert.Equal(t, "/properties/{hotelID}", gate.TenantPattern())
}

// The numbered scenarios of the access contract, exercised through the full router.
func TestRouter_AccessProperties(t *testing.T) {
	f := newFixture(t)

	type cookies struct{ token, role, hotelID string }
	tests := []struct {
		name     string
		path     string
		cookies  cookies
		status   int
		location string
	}{
		{name: "public page with token goes home (customer)", path: "/login", cookies: cookies{"abc", "customer", ""}, status: 303, location: "/home"},
		{name: "public page with token goes home (hotel)", path: "/register", cookies: cookies{"abc", "hotel", "9"}, status: 303, location: "/hotel/dashboard/9"},
		{name: "public page with token goes home (staff)", path: "/forgot-password", cookies: cookies{"abc", "petugas", ""}, status: 303, location: "/dashboard"},
		{name: "protected without token", path: "/profile", status: 303, location: "/login?redirect=/profile"},
		{name: "tenant path without token", path: "/hotel/dashboard/42", status: 303, location: "/login?redirect=/hotel/dashboard/42"},
		{name: "customer on dashboard", path: "/dashboard", cookies: cookies{"abc", "customer", ""}, status: 303, location: "/home"},
		{name: "customer on hotel", path: "/hotel/dashboard/42", cookies: cookies{"abc", "customer", "42"}, status: 303, location: "/home"},
		{name: "customer on admin", path: "/admin", cookies: cookies{"abc", "customer", ""}, status: 303, location: "/home"},
		{name: "hotel without hotel_id", path: "/hotel/dashboard/42", cookies: cookies{"abc", "hotel", ""}, status: 303, location: "/home"},
		{name: "hotel on other tenant", path: "/hotel/dashboard/43/rooms", cookies: cookies{"abc", "hotel", "42"}, status: 303, location: "/home"},
		{name: "staff on admin", path: "/admin", cookies: cookies{"abc", "petugas", ""}, status: 303, location: "/home"},
		{name: "hotel on admin", path: "/admin/users", cookies: cookies{"abc", "hotel", "42"}, status: 303, location: "/home"},
		{name: "own tenant passes (7)", path: "/hotel/dashboard/42", cookies: cookies{"abc", "hotel", "42"}, status: 200},
		{name: "other tenant redirected (8)", path: "/hotel/dashboard/42", cookies: cookies{"abc", "hotel", "7"}, status: 303, location: "/home"},
		{name: "admin on login (9)", path: "/login", cookies: cookies{"abc", "admin", ""}, status: 303, location: "/dashboard"},
		{name: "signed out deep link (10)", path: "/dashboard/users", status: 303, location: "/login?redirect=/dashboard/users"},
		{name: "admin on any tenant", path: "/hotel/dashboard/7", cookies: cookies{"abc", "admin", ""}, status: 200},
		{name: "unknown role on public page stays", path: "/login", cookies: cookies{"abc", "manager", ""}, status: 200},
		{name: "unknown role on register goes to login", path: "/register", cookies: cookies{"abc", "manager", ""}, status: 303, location: "/login"},
		{name: "unknown role on dashboard", path: "/dashboard/users", cookies: cookies{"abc", "manager", ""}, status: 303, location: "/login?redirect=/dashboard/users"},
		{name: "unknown role on tenant", path: "/hotel/dashboard/42", cookies: cookies{"abc", "manager", "42"}, status: 303, location: "/login?redirect=/hotel/dashboard/42"},
		{name: "hotel on dashboard root", path: "/hotel/dashboard", cookies: cookies{"abc", "hotel", "42"}, status: 303, location: "/hotel/dashboard/42"},
		{name: "open path passes", path: "/healthz", status: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withCredential(httptest.NewRequest(http.MethodGet, tt.path, nil), tt.cookies.token, tt.cookies.role, tt.cookies.hotelID)
			rec := f.do(req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			for _, c := range rec.Result().Cookies() {
				assert.False(t, strings.HasPrefix(c.Name, "token") || c.Name == "role" || c.Name == "hotel_id",
					"gateway must not touch credential cookies, got %s", c.Name)
			}
		})
	}
}

func TestRouter_TenantCheckedForUnroutedMethods(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := withCredential(httptest.NewRequest(method, "/hotel/dashboard/7", nil), "abc", "hotel", "42")
		rec := f.do(req)
		assert.Equal(t, http.StatusSeeOther, rec.Code, method)
		assert.Equal(t, "/home", rec.Header().Get("Location"), method)
	}
}
