package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName holds the double-submit token.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName carries the token on htmx/XHR requests.
	CSRFHeaderName = "X-Csrf-Token"
	// CSRFFormField carries the token on form posts.
	CSRFFormField = "csrf_token"

	csrfTokenBytes = 32
	csrfMaxAge     = 12 * 60 * 60
)

// CSRF implements the double-submit cookie pattern for the credential forms.
type CSRF struct {
	Domain string
}

type csrfTokenKey struct{}

// Protect issues a token when the request has none and validates it on unsafe methods.
func (c CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cookieValue(r, CSRFCookieName)
		if token == "" {
			var err error
			if token, err = newCSRFToken(); err != nil {
				http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				Domain:   c.Domain,
				Secure:   r.TLS != nil || isForwardedHTTPS(r),
				SameSite: http.SameSiteStrictMode,
				MaxAge:   csrfMaxAge,
			})
		}

		if unsafeMethod(r.Method) && !csrfTokenMatches(r, token) {
			WriteError(w, ErrorParams{
				Code:    http.StatusForbidden,
				ErrCode: "csrf_failed",
				Err:     errors.New("CSRF token validation failed"),
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token)))
	})
}

// CSRFToken returns the token for embedding in forms.
func CSRFToken(r *http.Request) string {
	if v, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return v
	}
	return ""
}

func unsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

// csrfTokenMatches compares the header, then the form field, against the cookie in constant time.
func csrfTokenMatches(r *http.Request, cookieToken string) bool {
	submitted := r.Header.Get(CSRFHeaderName)
	if submitted == "" {
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
			submitted = r.PostFormValue(CSRFFormField)
		}
	}
	if submitted == "" || cookieToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
