package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginCookie     = "post_login_redirect"
	oauthCookieLifetime = 10 * time.Minute
)

// CookieJar writes and clears the credential cookies with consistent attributes.
type CookieJar struct {
	Names  CookieNames
	Domain string
	// ForceSecure marks cookies Secure even on plain-HTTP requests (behind TLS-terminating proxies
	// that do not send X-Forwarded-Proto).
	ForceSecure bool
	now         func() time.Time
}

func (j CookieJar) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

func (j CookieJar) secure(r *http.Request) bool {
	return j.ForceSecure || r.TLS != nil || isForwardedHTTPS(r)
}

// SetSession writes token (HttpOnly), role and, for scoped hotel sessions, hotel_id.
// role and hotel_id stay readable by page scripts; the gateway never trusts them without a token.
func (j CookieJar) SetSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	names := j.Names.withDefaults()
	maxAge := int(s.ExpiresAt.Sub(j.clock()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	j.set(w, r, &http.Cookie{Name: names.Token, Value: s.ID, HttpOnly: true, MaxAge: maxAge})
	j.set(w, r, &http.Cookie{Name: names.Role, Value: s.RoleName, MaxAge: maxAge})
	if s.HotelID != "" {
		j.set(w, r, &http.Cookie{Name: names.HotelID, Value: s.HotelID, MaxAge: maxAge})
	} else {
		j.Clear(w, r, names.HotelID)
	}
}

// ClearSession expires all three credential cookies.
func (j CookieJar) ClearSession(w http.ResponseWriter, r *http.Request) {
	names := j.Names.withDefaults()
	j.Clear(w, r, names.Token)
	j.Clear(w, r, names.Role)
	j.Clear(w, r, names.HotelID)
}

// Clear expires the named cookie.
func (j CookieJar) Clear(w http.ResponseWriter, r *http.Request, name string) {
	j.set(w, r, &http.Cookie{
		Name:     name,
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// SetShortLived writes an HttpOnly cookie used during the OIDC round trip.
func (j CookieJar) SetShortLived(w http.ResponseWriter, r *http.Request, name, value string) {
	j.set(w, r, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		MaxAge:   int(oauthCookieLifetime.Seconds()),
	})
}

func (j CookieJar) set(w http.ResponseWriter, r *http.Request, c *http.Cookie) {
	c.Path = "/"
	c.Domain = j.Domain
	c.Secure = j.secure(r)
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}

// isForwardedHTTPS handles comma-separated X-Forwarded-Proto values such as "https,http".
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
