package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// SessionReader loads a live session by token.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// PageHandlers serves the role areas. Access is decided by the Gate before
// any of these run.
type PageHandlers struct {
	Sessions SessionReader
	Renderer PageRenderer
	Cookies  CookieNames
	Routes   access.Routes
	Logger   *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Root sends the visitor to the landing page of their role.
// GET /.
func (h *PageHandlers) Root(w http.ResponseWriter, r *http.Request) {
	cred := CredentialFromRequest(r, h.Cookies)
	redirectTo(w, r, h.Routes.HomeFor(cred.RoleOrUnknown()))
}

// Home renders the customer area.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newPageData(r, h.Cookies, PageHome, "Find your stay"))
}

// Dashboard renders the back-office landing page for admins and staff.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newPageData(r, h.Cookies, PageDashboard, "Dashboard"))
}

// Admin renders the administration area.
func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newPageData(r, h.Cookies, PageAdmin, "Administration"))
}

// HotelDashboard renders the dashboard of the hotel named by the route.
// GET /hotel/dashboard/{hotelID}.
func (h *PageHandlers) HotelDashboard(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, h.Cookies, PageHotelDashboard, "Hotel dashboard")
	data.HotelID = r.PathValue(TenantPathValue)
	h.render(w, r, http.StatusOK, data)
}

// Profile renders the signed-in user's details from the session store.
func (h *PageHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, h.Cookies, PageProfile, "Your profile")
	if h.Sessions != nil {
		token := cookieValue(r, h.Cookies.withDefaults().Token)
		if s, err := h.Sessions.GetSession(r.Context(), token); err == nil {
			data.Name = s.Name
			data.Email = s.Email
		} else if !isSessionGone(err) {
			h.logger().WarnContext(r.Context(), "profile session lookup failed", "error", err)
		}
	}
	h.render(w, r, http.StatusOK, data)
}

// NotFound renders the 404 page.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, newPageData(r, h.Cookies, PageNotFound, "Not found"))
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if err := h.Renderer.Render(w, r, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed", "page", data.Page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
