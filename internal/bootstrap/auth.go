package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/adapters/authroles"
	"github.com/hotelbooking/hotelweb/internal/adapters/backendapi"
	"github.com/hotelbooking/hotelweb/internal/adapters/devauth"
	"github.com/hotelbooking/hotelweb/internal/adapters/oidc"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/hotelbooking/hotelweb/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Sessions ports.SessionStore    // Required
	Tenants  ports.TenantDirectory // Optional; resolves hotel ids for SSO users
	Logger   *slog.Logger
	// HTTPClient overrides the client used for backend and OIDC calls.
	HTTPClient *http.Client
}

// BuildAuthService creates an auth service for the configured auth mode.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("auth service: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	flows, err := buildAuthFlows(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("authentication configured",
		"mode", cfg.Auth.Mode,
		"password_login", flows.Password != nil,
		"sso_login", flows.Redirect != nil,
	)

	return service.NewAuthService(service.AuthServiceOptions{
		Flows:    flows,
		Sessions: service.SessionOptions{Store: cfg.Sessions, TTL: cfg.Auth.SessionTTL},
		Directory: service.IdentityDirectory{
			Roles: authroles.StaticRoleMapper{
				AdminGroup: cfg.Auth.AdminGroup,
				HotelGroup: cfg.Auth.HotelGroup,
				StaffGroup: cfg.Auth.StaffGroup,
			},
			Tenants: cfg.Tenants,
		},
		Logger: logger,
	}), nil
}

func buildAuthFlows(cfg AuthConfig) (service.AuthFlows, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeBackend:
		return buildBackendFlows(cfg)
	case config.AuthModeOIDC:
		return buildOIDCFlows(cfg)
	case config.AuthModeMock:
		return buildDevAuthFlows(cfg)
	default:
		return service.AuthFlows{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildBackendFlows(cfg AuthConfig) (service.AuthFlows, error) {
	b, p := cfg.Auth.Backend, cfg.Auth.ResponsePaths
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: b.Timeout}
	}
	client, err := backendapi.New(backendapi.Config{
		BaseURL:            b.URL,
		LoginPath:          b.LoginPath,
		RegisterPath:       b.RegisterPath,
		ForgotPasswordPath: b.ForgotPasswordPath,
		Paths: backendapi.ResponsePaths{
			Token:   p.Token,
			Role:    p.Role,
			HotelID: p.HotelID,
			UserID:  p.UserID,
			Name:    p.Name,
			Email:   p.Email,
		},
		SessionTTL: cfg.Auth.SessionTTL,
		HTTPClient: hc,
	})
	if err != nil {
		return service.AuthFlows{}, fmt.Errorf("backend auth client: %w", err)
	}
	return service.AuthFlows{Password: client}, nil
}

func buildOIDCFlows(cfg AuthConfig) (service.AuthFlows, error) {
	o := cfg.Auth.OIDC
	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURL,
		Scope:        o.Scope,
		DiscoveryURL: o.DiscoveryURL,
		Claims:       oidc.ClaimNames{Groups: o.GroupsClaim, HotelID: o.HotelIDClaim},
		HTTPClient:   cfg.HTTPClient,
	})
	if err != nil {
		return service.AuthFlows{}, fmt.Errorf("oidc provider: %w", err)
	}
	return service.AuthFlows{Redirect: prov}, nil
}

func buildDevAuthFlows(cfg AuthConfig) (service.AuthFlows, error) {
	d := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          d.UserID,
		Name:            d.Name,
		Email:           d.Email,
		Role:            d.Role,
		HotelID:         d.HotelID,
		Password:        d.Password,
		SessionDuration: cfg.Auth.SessionTTL,
	})
	if err != nil {
		return service.AuthFlows{}, fmt.Errorf("dev auth provider: %w", err)
	}
	return service.AuthFlows{Redirect: prov, Password: prov}, nil
}
