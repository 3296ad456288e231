package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"

	hotelweb "github.com/hotelbooking/hotelweb"
)

// defaultMaxBodyBytes caps form and JSON bodies.
const defaultMaxBodyBytes = 1 << 20

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth     AuthServiceInterface    // Required
	Payments PaymentServiceInterface // Optional; /api/payments/token is not served without it
	Gate     *Gate                   // Required
	Renderer PageRenderer            // Required
	Cookies  CookieJar
	CSRF     CSRF
	// Optional: credential endpoints are not throttled without it.
	RateLimiter *RateLimiter
	// Optional: no /metrics and no request metrics without it.
	Metrics      *Metrics
	HealthChecks map[string]HealthCheck
	MaxBodyBytes int64
	IsDev        bool // serve /static from disk
	Logger       *slog.Logger
}

// NewRouter creates the application router with its middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	routes := services.Gate.Policy().Routes()

	authHandlers := &AuthHandlers{
		Svc:      services.Auth,
		Renderer: services.Renderer,
		Cookies:  services.Cookies,
		Routes:   routes,
		Metrics:  services.Metrics,
		Logger:   logger,
	}
	pageHandlers := &PageHandlers{
		Sessions: services.Auth,
		Renderer: services.Renderer,
		Cookies:  services.Cookies.Names,
		Routes:   routes,
		Logger:   logger,
	}

	mux := http.NewServeMux()
	registerOpsRoutes(mux, services)
	registerAuthRoutes(mux, authHandlers, services)
	registerPageRoutes(mux, pageHandlers, services)
	if services.Payments != nil {
		payments := &PaymentHandlers{Svc: services.Payments, Logger: logger}
		mux.Handle("POST /api/payments/token",
			RequireSession(services.Auth, services.Cookies.Names)(http.HandlerFunc(payments.CreateToken)))
	}
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))

	maxBody := services.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	// Instrument sits directly on the mux so it sees the matched pattern.
	var handler http.Handler = services.Metrics.Instrument(mux)
	handler = MaxBodyBytes(maxBody)(handler)
	handler = SecurityHeaders(handler)
	handler = RequestID(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerOpsRoutes(mux *http.ServeMux, services RouterServices) {
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.HealthChecks))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, services RouterServices) {
	gate, csrf := services.Gate, services.CSRF
	form := func(fn http.HandlerFunc) http.Handler { return gate.Wrap(csrf.Protect(fn)) }
	submit := func(fn http.HandlerFunc) http.Handler {
		var next http.Handler = csrf.Protect(fn)
		if services.RateLimiter != nil {
			next = services.RateLimiter.Middleware(next)
		}
		return gate.Wrap(next)
	}

	mux.Handle("GET "+h.Routes.Login, form(h.LoginPage))
	mux.Handle("POST "+h.Routes.Login, submit(h.LoginSubmit))
	mux.Handle("GET /register", form(h.RegisterPage))
	mux.Handle("POST /register", submit(h.RegisterSubmit))
	mux.Handle("GET /forgot-password", form(h.ForgotPasswordPage))
	mux.Handle("POST /forgot-password", submit(h.ForgotPasswordSubmit))

	mux.Handle("GET /auth/oidc/login", http.HandlerFunc(h.OIDCLogin))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("GET /auth/status", http.HandlerFunc(h.Status))
	mux.Handle("POST /logout", csrf.Protect(http.HandlerFunc(h.Logout)))
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers, services RouterServices) {
	gate, csrf := services.Gate, services.CSRF
	page := func(fn http.HandlerFunc) http.Handler { return gate.Wrap(csrf.Protect(fn)) }
	routes := h.Routes

	mux.Handle("GET /{$}", http.HandlerFunc(h.Root))

	// Configured homes may coincide; the first handler registered for a path wins.
	seen := map[string]bool{}
	handlePage := func(path string, fn http.HandlerFunc) {
		if path == "" || path == "/" || seen[path] {
			return
		}
		seen[path] = true
		mux.Handle("GET "+path, page(fn))
	}
	handlePage(routes.CustomerHome, h.Home)
	handlePage(routes.AdminHome, h.Dashboard)
	handlePage(routes.AdminOnly, h.Admin)
	handlePage(routes.StaffHome, h.Dashboard)
	handlePage("/profile", h.Profile)
	mux.Handle("GET "+gate.TenantPattern(), page(h.HotelDashboard))
	mux.Handle("GET "+gate.TenantPattern()+"/{rest...}", page(h.HotelDashboard))

	// Everything else is still gated so protected prefixes never leak a 404
	// to signed-out visitors.
	mux.Handle("/", page(h.NotFound))
}

// staticHandler serves /static/* from disk in dev mode and from the embedded
// FS otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	staticSub, err := fs.Sub(hotelweb.StaticFS, "frontend/static")
	if err != nil {
		logger.Error("failed to create sub-filesystem for static assets", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))), true)
}

func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
