package authroles

import (
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups onto role names by simple membership rules.
// Precedence is admin, then hotel, then staff; anyone else is a customer.
type StaticRoleMapper struct {
	AdminGroup string
	HotelGroup string
	StaffGroup string
}

func (m StaticRoleMapper) Map(groups []string) string {
	switch {
	case m.has(groups, m.AdminGroup):
		return domainauth.RoleNameAdmin
	case m.has(groups, m.HotelGroup):
		return domainauth.RoleNameHotel
	case m.has(groups, m.StaffGroup):
		return domainauth.RoleNameStaff
	default:
		return domainauth.RoleNameCustomer
	}
}

func (StaticRoleMapper) has(groups []string, want string) bool {
	if want == "" {
		return false
	}
	for _, g := range groups {
		if g == want {
			return true
		}
	}
	return false
}
