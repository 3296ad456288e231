package access

import (
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

// Outcome is what the gateway does with a request.
type Outcome int

const (
	// OutcomeAllow lets the request proceed unmodified.
	OutcomeAllow Outcome = iota
	// OutcomeRedirect sends the client to Decision.Location.
	OutcomeRedirect
)

func (o Outcome) String() string {
	if o == OutcomeRedirect {
		return "redirect"
	}
	return "allow"
}

// Reason names the rule that produced a decision.
type Reason string

const (
	ReasonOpenRoute           Reason = "open_route"
	ReasonAllowed             Reason = "allowed"
	ReasonAuthenticatedPublic Reason = "authenticated_on_public"
	ReasonLoginRequired       Reason = "login_required"
	ReasonUnknownRole         Reason = "unknown_role"
	ReasonCustomerScope       Reason = "customer_scope"
	ReasonHotelWithoutTenant  Reason = "hotel_without_tenant"
	ReasonCrossTenant         Reason = "cross_tenant"
	ReasonTenantMissing       Reason = "tenant_missing"
	ReasonAdminOnly           Reason = "admin_only"
)

// Target is the request being evaluated. TenantID is the hotel identifier the
// router extracted from the matched pattern; when empty on a tenant-scoped
// path the policy reads the tenant segment from Path instead.
type Target struct {
	Path     string
	TenantID domainauth.TenantID
}

// Decision is the gateway's verdict for one request.
type Decision struct {
	Outcome  Outcome
	Location string
	Reason   Reason
	Class    RouteClass
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Policy evaluates the decision table against a route table.
type Policy struct {
	routes Routes
}

// NewPolicy builds a Policy over routes.
func NewPolicy(routes Routes) *Policy {
	return &Policy{routes: routes}
}

// DefaultPolicy is NewPolicy(DefaultRoutes()).
func DefaultPolicy() *Policy { return NewPolicy(DefaultRoutes()) }

// Routes returns the route table the policy was built with.
func (p *Policy) Routes() Routes { return p.routes }

// Decide evaluates the rules in order; the first rule that fires wins. Paths
// outside every configured prefix pass through untouched.
//
//  1. public page with a token: go to the role's home
//  2. protected page without a token, or with an unrecognised role: go to
//     login, remembering the path
//  3. customer on an administrative area: go to the customer home
//  4. hotel role without tenant, or on another tenant's dashboard: go to the customer home;
//     hotel role on the dashboard root: go to its own dashboard
//  5. admin area without the admin role: go to the customer home
//  6. allow
func (p *Policy) Decide(t Target, cred domainauth.Credential) Decision {
	r := p.routes
	path := cleanPath(t.Path)
	class := r.Classify(path)

	if !cred.Authenticated() {
		if class == ClassProtected || class == ClassTenantScoped {
			return redirect(class, ReasonLoginRequired, r.LoginURL(path))
		}
		return allow(class, reasonForAllow(class))
	}

	role := cred.RoleOrUnknown()

	if class == ClassPublic {
		home := r.HomeFor(role)
		// Only the home page itself is exempt, or login would loop onto login.
		if cleanPath(home) != path {
			return redirect(class, ReasonAuthenticatedPublic, home)
		}
		return allow(class, ReasonAllowed)
	}

	if class == ClassOpen {
		return allow(class, ReasonOpenRoute)
	}

	if _, ok := role.(domainauth.UnknownRole); ok {
		return redirect(class, ReasonUnknownRole, r.LoginURL(path))
	}

	if _, ok := role.(domainauth.CustomerRole); ok && hasAnySegmentPrefix(path, r.Restricted) {
		return redirect(class, ReasonCustomerScope, r.CustomerHome)
	}

	switch v := role.(type) {
	case domainauth.UnscopedHotelRole:
		// The customer area is where a malformed hotel session lands.
		if !hasSegmentPrefix(path, r.CustomerHome) {
			return redirect(class, ReasonHotelWithoutTenant, r.CustomerHome)
		}
	case domainauth.HotelRole:
		if class == ClassTenantScoped {
			tenant := t.TenantID
			if tenant.IsZero() {
				tenant = r.TenantFromPath(path)
			}
			if tenant.IsZero() {
				return redirect(class, ReasonTenantMissing, r.HomeFor(v))
			}
			if tenant != v.Tenant {
				return redirect(class, ReasonCrossTenant, r.CustomerHome)
			}
		}
	}

	if hasSegmentPrefix(path, r.AdminOnly) {
		if _, ok := role.(domainauth.AdminRole); !ok {
			return redirect(class, ReasonAdminOnly, r.CustomerHome)
		}
	}

	return allow(class, ReasonAllowed)
}

func reasonForAllow(class RouteClass) Reason {
	if class == ClassOpen {
		return ReasonOpenRoute
	}
	return ReasonAllowed
}

func allow(class RouteClass, reason Reason) Decision {
	return Decision{Outcome: OutcomeAllow, Reason: reason, Class: class}
}

func redirect(class RouteClass, reason Reason, location string) Decision {
	return Decision{Outcome: OutcomeRedirect, Location: location, Reason: reason, Class: class}
}
