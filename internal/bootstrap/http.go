package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	hotelweb "github.com/hotelbooking/hotelweb"
	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/domain/access"
	httpx "github.com/hotelbooking/hotelweb/internal/http"
	"github.com/hotelbooking/hotelweb/internal/service"
)

// HTTPHandlerConfig contains everything the HTTP handler is built from.
type HTTPHandlerConfig struct {
	Config       *config.AppConfig
	Auth         *service.AuthService    // Required
	Payments     *service.PaymentService // Optional
	Metrics      *httpx.Metrics          // Optional
	RateLimiter  *httpx.RateLimiter      // Optional
	HealthChecks map[string]httpx.HealthCheck
	Logger       *slog.Logger
}

// GatewayCookieNames maps the configured cookie names.
func GatewayCookieNames(g config.GatewayConfig) httpx.CookieNames {
	return httpx.CookieNames{Token: g.TokenCookie, Role: g.RoleCookie, HotelID: g.HotelIDCookie}
}

// NewGate builds the access gateway from the configured route table.
func NewGate(cfg config.GatewayConfig, metrics *httpx.Metrics, logger *slog.Logger) *httpx.Gate {
	return httpx.NewGate(httpx.GateOptions{
		Policy:  access.NewPolicy(cfg.Routes()),
		Cookies: GatewayCookieNames(cfg),
		Metrics: metrics,
		Logger:  logger,
	})
}

// BuildHTTPHandler wires the gateway, renderer and handlers into the router.
func BuildHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	if cfg.Auth == nil {
		return nil, errors.New("http handler: auth service is required")
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := fs.Sub(hotelweb.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, fmt.Errorf("template filesystem: %w", err)
	}
	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{TemplateFS: templates, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	services := httpx.RouterServices{
		Auth:     cfg.Auth,
		Gate:     NewGate(appCfg.Gateway, cfg.Metrics, logger),
		Renderer: renderer,
		Cookies: httpx.CookieJar{
			Names:       GatewayCookieNames(appCfg.Gateway),
			Domain:      appCfg.HTTP.CookieDomain,
			ForceSecure: appCfg.HTTP.CookieSecure,
		},
		CSRF:         httpx.CSRF{Domain: appCfg.HTTP.CookieDomain},
		RateLimiter:  cfg.RateLimiter,
		Metrics:      cfg.Metrics,
		HealthChecks: cfg.HealthChecks,
		MaxBodyBytes: appCfg.HTTP.MaxBodyBytes,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	}
	// A nil *PaymentService must not become a non-nil interface.
	if cfg.Payments != nil {
		services.Payments = cfg.Payments
	}
	return httpx.NewRouter(services), nil
}

// NewHTTPServer returns a server with the configured timeouts.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// shutdownHTTPServer drains in-flight requests within timeout.
func shutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	logger.InfoContext(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}
