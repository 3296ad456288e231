package httpx

import (
	"net/http"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// Viewer is what a page knows about the requester, taken from the credential cookies.
type Viewer struct {
	Authenticated bool
	Role          string
	HotelID       string
}

// PageData is the template model shared by every page.
type PageData struct {
	Title     string
	Page      string
	Viewer    Viewer
	CSRFToken string

	// Form pages.
	Error           string
	Notice          string
	Email           string
	Name            string
	Redirect        string
	PasswordEnabled bool
	OIDCEnabled     bool

	// Hotel dashboard.
	HotelID string
}

func newPageData(r *http.Request, cookies CookieNames, page, title string) PageData {
	cred := CredentialFromRequest(r, cookies)
	v := Viewer{Authenticated: cred.Authenticated()}
	if v.Authenticated {
		role := cred.RoleOrUnknown()
		v.Role = role.Name()
		if tenant, ok := domainauth.TenantOf(role); ok {
			v.HotelID = tenant.String()
		}
	}
	return PageData{
		Title:     title,
		Page:      page,
		Viewer:    v,
		CSRFToken: CSRFToken(r),
	}
}
