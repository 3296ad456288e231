package httpx

// Page identifiers used to pick the content template inside the layout.
const (
	PageLogin          = "login"
	PageRegister       = "register"
	PageForgotPassword = "forgot-password"
	PageHome           = "home"
	PageDashboard      = "dashboard"
	PageAdmin          = "admin"
	PageHotelDashboard = "hotel-dashboard"
	PageProfile        = "profile"
	PageNotFound       = "not-found"
	PageError          = "error"
)

// ContentTemplateFor maps a page identifier to its "<page>-content" template.
// Unknown pages render the not-found content.
func ContentTemplateFor(page string) string {
	switch page {
	case PageLogin, PageRegister, PageForgotPassword, PageHome, PageDashboard,
		PageAdmin, PageHotelDashboard, PageProfile, PageError:
		return page + "-content"
	default:
		return PageNotFound + "-content"
	}
}
