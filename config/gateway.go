package config

import (
	"strings"

	"github.com/hotelbooking/hotelweb/internal/domain/access"
)

// GatewayConfig overrides the access gateway's route table and cookie names.
// Every field defaults to the application's built-in routes.
type GatewayConfig struct {
	PublicRoutes     []string `env:"PUBLIC_ROUTES"     envSeparator:","`
	ProtectedRoutes  []string `env:"PROTECTED_ROUTES"  envSeparator:","`
	RestrictedRoutes []string `env:"RESTRICTED_ROUTES" envSeparator:","`
	TenantRoute      string   `env:"TENANT_ROUTE"`
	AdminRoute       string   `env:"ADMIN_ROUTE"`
	LoginRoute       string   `env:"LOGIN_ROUTE"`
	CustomerHome     string   `env:"CUSTOMER_HOME"`
	AdminHome        string   `env:"ADMIN_HOME"`
	StaffHome        string   `env:"STAFF_HOME"`

	TokenCookie   string `env:"TOKEN_COOKIE"    envDefault:"token"`
	RoleCookie    string `env:"ROLE_COOKIE"     envDefault:"role"`
	HotelIDCookie string `env:"HOTEL_ID_COOKIE" envDefault:"hotel_id"`
}

// Sanitize normalizes configured paths to a leading slash without a trailing one.
func (g *GatewayConfig) Sanitize() {
	g.PublicRoutes = normalizePaths(g.PublicRoutes)
	g.ProtectedRoutes = normalizePaths(g.ProtectedRoutes)
	g.RestrictedRoutes = normalizePaths(g.RestrictedRoutes)
	for _, p := range []*string{&g.TenantRoute, &g.AdminRoute, &g.LoginRoute, &g.CustomerHome, &g.AdminHome, &g.StaffHome} {
		*p = normalizePath(*p)
	}
	g.TokenCookie = strings.TrimSpace(g.TokenCookie)
	g.RoleCookie = strings.TrimSpace(g.RoleCookie)
	g.HotelIDCookie = strings.TrimSpace(g.HotelIDCookie)
}

// Routes merges the overrides onto access.DefaultRoutes.
func (g GatewayConfig) Routes() access.Routes {
	r := access.DefaultRoutes()
	if len(g.PublicRoutes) > 0 {
		r.Public = g.PublicRoutes
	}
	if len(g.ProtectedRoutes) > 0 {
		r.Protected = g.ProtectedRoutes
	}
	if len(g.RestrictedRoutes) > 0 {
		r.Restricted = g.RestrictedRoutes
	}
	r.TenantScoped = firstNonEmpty(g.TenantRoute, r.TenantScoped)
	r.AdminOnly = firstNonEmpty(g.AdminRoute, r.AdminOnly)
	r.Login = firstNonEmpty(g.LoginRoute, r.Login)
	r.CustomerHome = firstNonEmpty(g.CustomerHome, r.CustomerHome)
	r.AdminHome = firstNonEmpty(g.AdminHome, r.AdminHome)
	r.StaffHome = firstNonEmpty(g.StaffHome, r.StaffHome)
	return r
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if n := normalizePath(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
