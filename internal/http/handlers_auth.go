package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/hotelbooking/hotelweb/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SupportsPassword() bool
	SupportsRedirect() bool
	Login(ctx context.Context, creds ports.PasswordCredentials) (*domainauth.Session, error)
	Register(ctx context.Context, reg ports.Registration) (*domainauth.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// PageRenderer renders a page model.
type PageRenderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, data PageData) error
}

// Login flow labels for the auth_logins_total metric.
const (
	flowPassword = "password"
	flowRegister = "register"
	flowRedirect = "redirect"
)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc      AuthServiceInterface
	Renderer PageRenderer
	Cookies  CookieJar
	Routes   access.Routes
	Metrics  *Metrics
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginPage renders the sign-in form.
// GET /login?redirect=<optional_path>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.formPage(r, PageLogin, "Sign in")
	data.Redirect = safeRedirectPath(r.URL.Query().Get(h.Routes.LoginRedirect))
	h.render(w, r, http.StatusOK, data)
}

// LoginSubmit handles the password sign-in form.
// POST /login.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	redirect := safeRedirectPath(r.PostFormValue("redirect"))

	session, err := h.Svc.Login(r.Context(), ports.PasswordCredentials{
		Email:    email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		status, msg, result := loginFailure(err)
		h.Metrics.ObserveLogin(flowPassword, result)
		h.logFailure(r, flowPassword, err)

		data := h.formPage(r, PageLogin, "Sign in")
		data.Email = email
		data.Redirect = redirect
		data.Error = msg
		h.render(w, r, status, data)
		return
	}

	h.Metrics.ObserveLogin(flowPassword, "success")
	h.Cookies.SetSession(w, r, *session)
	redirectTo(w, r, h.postLoginTarget(redirect, session))
}

// RegisterPage renders the sign-up form.
// GET /register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.formPage(r, PageRegister, "Create account"))
}

// RegisterSubmit creates the account and signs the new user in.
// POST /register.
func (h *AuthHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	reg := ports.Registration{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Password: r.PostFormValue("password"),
	}

	fail := func(status int, msg string) {
		data := h.formPage(r, PageRegister, "Create account")
		data.Name = reg.Name
		data.Email = reg.Email
		data.Error = msg
		h.render(w, r, status, data)
	}

	if reg.Password != r.PostFormValue("password_confirmation") {
		fail(http.StatusBadRequest, "Passwords do not match.")
		return
	}

	session, err := h.Svc.Register(r.Context(), reg)
	if err != nil {
		h.logFailure(r, flowRegister, err)
		switch {
		case apperrors.IsValidation(err):
			h.Metrics.ObserveLogin(flowRegister, "invalid")
			fail(http.StatusBadRequest, userMessage(err))
		case apperrors.IsConflict(err):
			h.Metrics.ObserveLogin(flowRegister, "conflict")
			fail(http.StatusConflict, "An account with this email already exists.")
		default:
			status, msg, result := loginFailure(err)
			h.Metrics.ObserveLogin(flowRegister, result)
			fail(status, msg)
		}
		return
	}

	h.Metrics.ObserveLogin(flowRegister, "success")
	h.Cookies.SetSession(w, r, *session)
	redirectTo(w, r, h.postLoginTarget("", session))
}

// ForgotPasswordPage renders the reset request form.
// GET /forgot-password.
func (h *AuthHandlers) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.formPage(r, PageForgotPassword, "Reset password"))
}

// ForgotPasswordSubmit forwards the reset request. The confirmation is the
// same whether or not the address is known.
// POST /forgot-password.
func (h *AuthHandlers) ForgotPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	data := h.formPage(r, PageForgotPassword, "Reset password")
	data.Email = email

	if err := h.Svc.ForgotPassword(r.Context(), email); err != nil {
		h.logFailure(r, "forgot_password", err)
		switch {
		case apperrors.IsValidation(err):
			data.Error = userMessage(err)
			h.render(w, r, http.StatusBadRequest, data)
		case apperrors.IsUnavailable(err):
			data.Error = msgUnavailable
			h.render(w, r, http.StatusBadGateway, data)
		default:
			data.Error = msgGeneric
			h.render(w, r, http.StatusInternalServerError, data)
		}
		return
	}

	data.Notice = "If an account exists for that email, a reset link is on its way."
	h.render(w, r, http.StatusOK, data)
}

// OIDCLogin starts the single sign-on flow.
// GET /auth/oidc/login?redirect=<optional_path>.
func (h *AuthHandlers) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get(h.Routes.LoginRedirect))

	result, err := h.Svc.BeginLogin(r.Context(), callbackTarget(redirectURI))
	if err != nil {
		h.logFailure(r, flowRedirect, err)
		if errors.Is(err, service.ErrFlowUnsupported) {
			h.renderNotFound(w, r)
			return
		}
		h.Metrics.ObserveLogin(flowRedirect, "error")
		data := h.formPage(r, PageLogin, "Sign in")
		data.Error = msgGeneric
		h.render(w, r, http.StatusBadGateway, data)
		return
	}

	h.Cookies.SetShortLived(w, r, oauthStateCookie, result.State)
	h.Cookies.SetShortLived(w, r, oauthNonceCookie, result.Nonce)
	if redirectURI != "" {
		h.Cookies.SetShortLived(w, r, postLoginCookie, redirectURI)
	}

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the single sign-on flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	stateCookie, stateErr := r.Cookie(oauthStateCookie)
	nonceCookie, nonceErr := r.Cookie(oauthNonceCookie)
	h.Cookies.Clear(w, r, oauthStateCookie)
	h.Cookies.Clear(w, r, oauthNonceCookie)

	switch {
	case code == "" || state == "":
		h.callbackFailed(w, r, http.StatusBadRequest, errors.New("missing code or state"))
		return
	case stateErr != nil || stateCookie.Value != state:
		h.callbackFailed(w, r, http.StatusBadRequest, errors.New("invalid or missing state"))
		return
	case nonceErr != nil || nonceCookie.Value == "":
		h.callbackFailed(w, r, http.StatusBadRequest, errors.New("missing nonce"))
		return
	}

	session, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		status, _, _ := loginFailure(err)
		h.callbackFailed(w, r, status, err)
		return
	}

	h.Metrics.ObserveLogin(flowRedirect, "success")
	h.Cookies.SetSession(w, r, *session)
	redirectTo(w, r, h.postLoginTarget(h.takePostLoginRedirect(w, r), session))
}

// Logout revokes the session and clears the credential cookies.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := cookieValue(r, h.Cookies.Names.withDefaults().Token); token != "" {
		if err := h.Svc.Logout(r.Context(), token); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.ClearSession(w, r)

	if WantsJSON(r) && !IsHTMX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": h.Routes.Login,
		})
		return
	}
	redirectTo(w, r, h.Routes.Login)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, h.Cookies.Names.withDefaults().Token)
	if token == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), token)
	if err != nil {
		if !isSessionGone(err) {
			h.logger().ErrorContext(r.Context(), "session lookup failed", "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "session_store_unavailable",
				Err:     errors.New("session status is temporarily unavailable"),
			})
			return
		}
		h.Cookies.ClearSession(w, r)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	body := map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    session.UserID,
			"name":  session.Name,
			"email": session.Email,
			"role":  session.RoleName,
		},
		"expires_at": session.ExpiresAt,
	}
	if session.HotelID != "" {
		body["hotel_id"] = session.HotelID
	}
	WriteJSON(w, http.StatusOK, body)
}

const (
	msgInvalidCredentials = "Email or password is incorrect."
	msgRoleNotPermitted   = "This account cannot sign in here."
	msgUnavailable        = "Sign-in is temporarily unavailable. Please try again shortly."
	msgGeneric            = "Something went wrong. Please try again."
)

// loginFailure maps a login error to the response status, the message shown
// on the form and the metric result label.
func loginFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials, "invalid"
	case errors.Is(err, service.ErrRoleNotRecognized):
		return http.StatusForbidden, msgRoleNotPermitted, "forbidden"
	case errors.Is(err, service.ErrFlowUnsupported):
		return http.StatusNotFound, "This sign-in method is not enabled.", "unsupported"
	case apperrors.IsValidation(err):
		return http.StatusBadRequest, "Email and password are required.", "invalid"
	case apperrors.IsUnavailable(err):
		return http.StatusBadGateway, msgUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, msgGeneric, "error"
	}
}

// userMessage returns the AppError message, which is written for end users.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message + "."
	}
	return msgGeneric
}

func isSessionGone(err error) bool {
	return errors.Is(err, domainauth.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired)
}

func (h *AuthHandlers) callbackFailed(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.Metrics.ObserveLogin(flowRedirect, "error")
	h.logFailure(r, flowRedirect, err)
	h.Cookies.Clear(w, r, postLoginCookie)

	data := h.formPage(r, PageLogin, "Sign in")
	switch status {
	case http.StatusBadRequest:
		data.Error = "Your sign-in attempt expired. Please try again."
	case http.StatusForbidden:
		data.Error = msgRoleNotPermitted
	default:
		data.Error = msgGeneric
	}
	h.render(w, r, status, data)
}

func (h *AuthHandlers) logFailure(r *http.Request, flow string, err error) {
	level := slog.LevelWarn
	if !apperrors.IsValidation(err) && !errors.Is(err, domainauth.ErrInvalidCredentials) &&
		apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger().Log(r.Context(), level, "authentication failed", "flow", flow, "error", err)
}

// postLoginTarget prefers a safe requested path and falls back to the role's home.
func (h *AuthHandlers) postLoginTarget(requested string, session *domainauth.Session) string {
	if requested != "" && requested != "/" {
		return requested
	}
	return h.Routes.HomeFor(session.Role())
}

// takePostLoginRedirect returns the remembered redirect and clears its cookie.
func (h *AuthHandlers) takePostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(postLoginCookie)
	if err != nil {
		return ""
	}
	h.Cookies.Clear(w, r, postLoginCookie)
	return safeRedirectPath(c.Value)
}

func (h *AuthHandlers) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *AuthHandlers) formPage(r *http.Request, page, title string) PageData {
	data := newPageData(r, h.Cookies.Names, page, title)
	data.PasswordEnabled = h.Svc.SupportsPassword()
	data.OIDCEnabled = h.Svc.SupportsRedirect()
	return data
}

func (h *AuthHandlers) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if err := h.Renderer.Render(w, r, status, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed", "page", data.Page, "error", err)
	}
}

func (h *AuthHandlers) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, newPageData(r, h.Cookies.Names, PageNotFound, "Not found"))
}

// callbackTarget is what the provider sees as the post-login target; the
// configured redirect_uri is always used for the code exchange.
func callbackTarget(redirect string) string {
	if redirect == "" {
		return "/"
	}
	return redirect
}

// safeRedirectPath returns candidate when it is a same-origin relative path
// and "" otherwise.
func safeRedirectPath(candidate string) string {
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return candidate
}
