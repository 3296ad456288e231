// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// Wire values of the role cookie.
const (
	RoleNameAdmin    = "admin"
	RoleNameHotel    = "hotel"
	RoleNameCustomer = "customer"
	RoleNameStaff    = "petugas"
)

// TenantID identifies the hotel a hotel-role session may administer.
type TenantID string

// String returns the raw identifier.
func (t TenantID) String() string { return string(t) }

// IsZero reports whether no tenant is set.
func (t TenantID) IsZero() bool { return t == "" }

// ParseTenantID trims the raw value; an empty result means "absent".
func ParseTenantID(raw string) TenantID {
	return TenantID(strings.TrimSpace(raw))
}

// Role is a closed set of session roles. The unexported method seals it to
// the variants declared in this package.
type Role interface {
	// Name is the wire value written to the role cookie ("" for UnknownRole).
	Name() string
	isRole()
}

// AdminRole may access every area.
type AdminRole struct{}

// HotelRole administers exactly one tenant. Tenant is never empty; construct
// it through NewHotelRole or ParseRole.
type HotelRole struct{ Tenant TenantID }

// CustomerRole browses and books.
type CustomerRole struct{}

// StaffRole is the legacy "petugas" staff role.
type StaffRole struct{}

// UnscopedHotelRole is a hotel session that arrived without a tenant id.
// It is never granted hotel access.
type UnscopedHotelRole struct{}

// UnknownRole covers a missing or unrecognised role value.
type UnknownRole struct{}

func (AdminRole) Name() string         { return RoleNameAdmin }
func (HotelRole) Name() string         { return RoleNameHotel }
func (CustomerRole) Name() string      { return RoleNameCustomer }
func (StaffRole) Name() string         { return RoleNameStaff }
func (UnscopedHotelRole) Name() string { return RoleNameHotel }
func (UnknownRole) Name() string       { return "" }

func (AdminRole) isRole()         {}
func (HotelRole) isRole()         {}
func (CustomerRole) isRole()      {}
func (StaffRole) isRole()         {}
func (UnscopedHotelRole) isRole() {}
func (UnknownRole) isRole()       {}

// NewHotelRole returns HotelRole for a non-empty tenant and UnscopedHotelRole otherwise.
func NewHotelRole(tenant TenantID) Role {
	if tenant.IsZero() {
		return UnscopedHotelRole{}
	}
	return HotelRole{Tenant: tenant}
}

// ParseRole maps the role and hotel_id cookie values onto a Role variant.
// Matching is case-insensitive; hotelID is only consulted for the hotel role.
func ParseRole(role, hotelID string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleNameAdmin:
		return AdminRole{}
	case RoleNameHotel:
		return NewHotelRole(ParseTenantID(hotelID))
	case RoleNameCustomer:
		return CustomerRole{}
	case RoleNameStaff, "staff":
		return StaffRole{}
	default:
		return UnknownRole{}
	}
}

// TenantOf returns the tenant carried by r, if any.
func TenantOf(r Role) (TenantID, bool) {
	if h, ok := r.(HotelRole); ok {
		return h.Tenant, true
	}
	return "", false
}

// Credential is the (token, role, hotel_id) triple carried by a request.
// A credential without a token never carries a role.
type Credential struct {
	Token string
	Role  Role
}

// ParseCredential builds a Credential from raw cookie values. Role and
// hotelID are ignored when token is empty.
func ParseCredential(token, role, hotelID string) Credential {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{Role: UnknownRole{}}
	}
	return Credential{Token: token, Role: ParseRole(role, hotelID)}
}

// Authenticated reports whether a token is present.
func (c Credential) Authenticated() bool { return c.Token != "" }

// RoleOrUnknown never returns nil.
func (c Credential) RoleOrUnknown() Role {
	if c.Role == nil || !c.Authenticated() {
		return UnknownRole{}
	}
	return c.Role
}

// Identity represents the authenticated principal returned by a provider.
// Adapters map provider-specific payloads into this shape.
type Identity struct {
	UserID    string
	Name      string
	Email     string
	Groups    []string
	Role      string // raw role value when the provider reports one directly
	HotelID   string
	Token     string    // provider-issued API token, if any
	ExpiresAt time.Time // absolute expiry
}

// Session is the server-side record persisted for an authenticated user.
// ID is the value of the token cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleName  string    `json:"role"`
	HotelID   string    `json:"hotel_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Role returns the typed role of the session.
func (s Session) Role() Role { return ParseRole(s.RoleName, s.HotelID) }

// Credential returns the credential the session's cookies encode.
func (s Session) Credential() Credential {
	return ParseCredential(s.ID, s.RoleName, s.HotelID)
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }
