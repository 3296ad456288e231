package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hotelbooking/hotelweb/internal/domain/access"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// TenantPathValue is the route wildcard that carries the hotel id on tenant-scoped routes.
const TenantPathValue = "hotelID"

// CookieNames names the cookies that make up the session credential.
type CookieNames struct {
	Token   string
	Role    string
	HotelID string
}

// DefaultCookieNames returns the token/role/hotel_id names the booking frontend uses.
func DefaultCookieNames() CookieNames {
	return CookieNames{Token: "token", Role: "role", HotelID: "hotel_id"}
}

func (n CookieNames) withDefaults() CookieNames {
	d := DefaultCookieNames()
	if n.Token == "" {
		n.Token = d.Token
	}
	if n.Role == "" {
		n.Role = d.Role
	}
	if n.HotelID == "" {
		n.HotelID = d.HotelID
	}
	return n
}

// CredentialFromRequest reads the credential cookies. Role and hotel id are
// only read when a token is present.
func CredentialFromRequest(r *http.Request, names CookieNames) domainauth.Credential {
	names = names.withDefaults()
	token := cookieValue(r, names.Token)
	if token == "" {
		return domainauth.ParseCredential("", "", "")
	}
	return domainauth.ParseCredential(token, cookieValue(r, names.Role), cookieValue(r, names.HotelID))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// GateOptions configures the access gateway middleware.
type GateOptions struct {
	Policy  *access.Policy // defaults to access.DefaultPolicy()
	Cookies CookieNames
	Metrics *Metrics // optional
	Logger  *slog.Logger
}

// Gate evaluates every wrapped request against the access policy. It only
// reads the request: no cookies are written and no I/O is performed.
type Gate struct {
	policy  *access.Policy
	cookies CookieNames
	metrics *Metrics
	logger  *slog.Logger
}

// NewGate builds a Gate from opts.
func NewGate(opts GateOptions) *Gate {
	policy := opts.Policy
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		policy:  policy,
		cookies: opts.Cookies.withDefaults(),
		metrics: opts.Metrics,
		logger:  logger.With("component", "gateway"),
	}
}

// Policy returns the policy the gate evaluates.
func (g *Gate) Policy() *access.Policy { return g.policy }

// Evaluate returns the decision for r without writing anything. The tenant
// comes from the {hotelID} route parameter, so r must already be routed.
func (g *Gate) Evaluate(r *http.Request) access.Decision {
	target := access.Target{
		Path:     r.URL.Path,
		TenantID: domainauth.ParseTenantID(r.PathValue(TenantPathValue)),
	}
	return g.policy.Decide(target, CredentialFromRequest(r, g.cookies))
}

// Wrap passes allowed requests to next unmodified and redirects the rest.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Evaluate(r)
		g.metrics.ObserveDecision(d.Outcome.String(), string(d.Reason))
		if d.Allowed() {
			next.ServeHTTP(w, r)
			return
		}
		g.logger.DebugContext(r.Context(), "gateway redirect",
			"path", r.URL.Path,
			"class", d.Class.String(),
			"reason", string(d.Reason),
			"location", d.Location)
		redirectTo(w, r, d.Location)
	})
}

// WrapFunc is Wrap for handler functions.
func (g *Gate) WrapFunc(fn http.HandlerFunc) http.Handler { return g.Wrap(fn) }

// redirectTo issues a 303 for regular requests. htmx requests get a 200 with
// Hx-Redirect so the browser navigates instead of swapping the target.
func redirectTo(w http.ResponseWriter, r *http.Request, location string) {
	if IsHTMX(r) {
		SetHXRedirect(w, location)
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusSeeOther)
}

// TenantPattern is the mux pattern of the tenant dashboard, e.g.
// "/hotel/dashboard/{hotelID}".
func (g *Gate) TenantPattern() string {
	return strings.TrimSuffix(g.policy.Routes().TenantScoped, "/") + "/{" + TenantPathValue + "}"
}

// Probe routes a synthetic GET for target carrying the given cookie values
// and returns the gateway decision, exactly as the application router would
// see it.
func (g *Gate) Probe(target, token, role, hotelID string) (access.Decision, error) {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return access.Decision{}, fmt.Errorf("build probe request: %w", err)
	}
	for name, value := range map[string]string{g.cookies.Token: token, g.cookies.Role: role, g.cookies.HotelID: hotelID} {
		if value != "" {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}

	var (
		d      access.Decision
		routed bool
	)
	capture := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		d, routed = g.Evaluate(r), true
	})
	mux := http.NewServeMux()
	mux.Handle(g.TenantPattern(), capture)
	mux.Handle(g.TenantPattern()+"/{rest...}", capture)
	mux.Handle("/", capture)
	mux.ServeHTTP(discardResponse{header: http.Header{}}, req)

	if !routed {
		d = g.Evaluate(req)
	}
	return d, nil
}

type discardResponse struct{ header http.Header }

func (d discardResponse) Header() http.Header         { return d.header }
func (d discardResponse) Write(b []byte) (int, error) { return len(b), nil }
func (d discardResponse) WriteHeader(int)             {}
