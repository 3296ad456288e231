// Package access implements the request authorization and role-routing policy
// that gates every page of the application. Decide is a pure function of the
// requested target and the session credential; it performs no I/O and holds no
// shared mutable state, so one Policy may be used from any number of goroutines.
package access

import (
	"net/url"
	"strings"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// RouteClass is the classification of a requested path.
type RouteClass int

const (
	// ClassOpen paths match no configured prefix and are passed through.
	ClassOpen RouteClass = iota
	// ClassPublic paths are the auth pages (login, register, forgot-password).
	ClassPublic
	// ClassProtected paths require a token.
	ClassProtected
	// ClassTenantScoped paths require a token and belong to a single hotel.
	ClassTenantScoped
)

func (c RouteClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassProtected:
		return "protected"
	case ClassTenantScoped:
		return "tenant-scoped"
	default:
		return "open"
	}
}

// Routes holds the path prefixes and landing pages the policy works with.
// Prefixes match whole segments: "/home" matches "/home" and "/home/x" but not "/homework".
type Routes struct {
	Public       []string
	Protected    []string
	TenantScoped string   // hotel dashboard root; the next segment is the tenant id
	Restricted   []string // administrative areas closed to customers
	AdminOnly    string

	Login         string
	CustomerHome  string
	AdminHome     string
	StaffHome     string
	LoginRedirect string // query parameter carrying the original path
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() Routes {
	return Routes{
		Public:        []string{"/login", "/register", "/forgot-password"},
		Protected:     []string{"/dashboard", "/admin", "/home", "/profile", "/hotel"},
		TenantScoped:  "/hotel/dashboard",
		Restricted:    []string{"/dashboard", "/hotel", "/admin"},
		AdminOnly:     "/admin",
		Login:         "/login",
		CustomerHome:  "/home",
		AdminHome:     "/dashboard",
		StaffHome:     "/dashboard",
		LoginRedirect: "redirect",
	}
}

// Classify returns the class of path. Tenant-scoped wins over the generic
// protected prefixes it is nested under.
func (r Routes) Classify(path string) RouteClass {
	path = cleanPath(path)
	switch {
	case r.TenantScoped != "" && hasSegmentPrefix(path, r.TenantScoped):
		return ClassTenantScoped
	case hasAnySegmentPrefix(path, r.Public):
		return ClassPublic
	case hasAnySegmentPrefix(path, r.Protected):
		return ClassProtected
	default:
		return ClassOpen
	}
}

// HomeFor returns the default landing page of a role.
func (r Routes) HomeFor(role domainauth.Role) string {
	switch v := role.(type) {
	case domainauth.AdminRole:
		return r.AdminHome
	case domainauth.HotelRole:
		return r.TenantHome(v.Tenant)
	case domainauth.CustomerRole:
		return r.CustomerHome
	case domainauth.StaffRole:
		return r.StaffHome
	case domainauth.UnscopedHotelRole:
		return r.CustomerHome
	default:
		return r.Login
	}
}

// TenantHome returns the dashboard path of a hotel.
func (r Routes) TenantHome(tenant domainauth.TenantID) string {
	return strings.TrimSuffix(r.TenantScoped, "/") + "/" + url.PathEscape(tenant.String())
}

// TenantFromPath returns the tenant segment of a tenant-scoped path, or the
// zero TenantID when path has none ("/hotel/dashboard").
func (r Routes) TenantFromPath(path string) domainauth.TenantID {
	root := strings.TrimSuffix(r.TenantScoped, "/")
	path = cleanPath(path)
	if root == "" || !strings.HasPrefix(path, root+"/") {
		return ""
	}
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, root+"/"), "/")
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	return domainauth.ParseTenantID(seg)
}

// LoginURL returns the login page carrying original as the redirect parameter.
// Slashes stay literal in the query value.
func (r Routes) LoginURL(original string) string {
	if original == "" {
		return r.Login
	}
	v := strings.ReplaceAll(url.QueryEscape(original), "%2F", "/")
	return r.Login + "?" + r.LoginRedirect + "=" + v
}

func hasAnySegmentPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasSegmentPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasSegmentPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
