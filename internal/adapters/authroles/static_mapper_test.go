package authroles

import (
	"testing"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/stretchr/testify/assert"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "hb-admins", HotelGroup: "hb-hotels", StaffGroup: "hb-staff"}

	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{name: "admin wins over hotel", groups: []string{"hb-hotels", "hb-admins"}, want: domainauth.RoleNameAdmin},
		{name: "hotel", groups: []string{"hb-hotels"}, want: domainauth.RoleNameHotel},
		{name: "hotel wins over staff", groups: []string{"hb-staff", "hb-hotels"}, want: domainauth.RoleNameHotel},
		{name: "staff", groups: []string{"hb-staff", "other"}, want: domainauth.RoleNameStaff},
		{name: "no groups", groups: nil, want: domainauth.RoleNameCustomer},
		{name: "unrelated", groups: []string{"everyone"}, want: domainauth.RoleNameCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyConfig(t *testing.T) {
	assert.Equal(t, domainauth.RoleNameCustomer, StaticRoleMapper{}.Map([]string{""}))
}
