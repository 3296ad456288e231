package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "17",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", SessionTTL: 2 * time.Hour})
	require.NoError(t, err)
	return c
}

func TestAuthenticate_HotelUser(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := signedToken(t, exp)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "op@hotel.example", req.Email)
		assert.Equal(t, "pw", req.Password)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"token": token,
				"user":  map[string]any{"id": 17, "name": "Operator", "role": "hotel", "hotel_id": 42},
			},
		})
	})

	id, err := c.Authenticate(context.Background(), ports.PasswordCredentials{Email: "op@hotel.example", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "17", id.UserID)
	assert.Equal(t, "Operator", id.Name)
	assert.Equal(t, "op@hotel.example", id.Email)
	assert.Equal(t, "hotel", id.Role)
	assert.Equal(t, "42", id.HotelID)
	assert.Equal(t, token, id.Token)
	assert.True(t, id.ExpiresAt.Equal(exp), "session should end at the token's exp")
}

func TestAuthenticate_OpaqueTokenUsesTTL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"token":"opaque-123","user":{"role":"customer","email":"c@example.com"}}}`))
	})
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	id, err := c.Authenticate(context.Background(), ports.PasswordCredentials{Email: "x@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", id.Email)
	assert.Equal(t, "c@example.com", id.UserID)
	assert.Equal(t, now.Add(2*time.Hour), id.ExpiresAt)
}

func TestAuthenticate_LongLivedJWTCappedByTTL(t *testing.T) {
	token := signedToken(t, time.Now().Add(30*24*time.Hour))
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"token": token}})
	})

	id, err := c.Authenticate(context.Background(), ports.PasswordCredentials{Email: "a@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), id.ExpiresAt, time.Minute)
}

func TestAuthenticate_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"invalid"}`))
		})
		_, err := c.Authenticate(context.Background(), ports.PasswordCredentials{Email: "a", Password: "b"})
		assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials, "status %d", status)
	}
}

func TestAuthenticate_BackendFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := c.Authenticate(context.Background(), ports.PasswordCredentials{})
		assert.True(t, apperrors.IsUnavailable(err))
	})

	t.Run("missing token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"user":{}}}`))
		})
		_, err := c.Authenticate(context.Background(), ports.PasswordCredentials{})
		assert.True(t, apperrors.IsUnavailable(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := c.Authenticate(context.Background(), ports.PasswordCredentials{})
		assert.True(t, apperrors.IsUnavailable(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := New(Config{BaseURL: srv.URL})
		require.NoError(t, err)
		_, err = c.Authenticate(context.Background(), ports.PasswordCredentials{})
		assert.True(t, apperrors.IsUnavailable(err))
	})
}

func TestAuthenticate_CustomPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t","profile":{"roles":["admin"],"hotel":null}}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL: srv.URL,
		Paths:   ResponsePaths{Token: "access_token", Role: "profile.roles[0]", HotelID: "profile.hotel"},
	})
	require.NoError(t, err)

	id, err := c.Authenticate(context.Background(), ports.PasswordCredentials{Email: "root@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Role)
	assert.Empty(t, id.HotelID)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{BaseURL: "http://x", Paths: ResponsePaths{Token: "data.["}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response path")
}

func TestRegister(t *testing.T) {
	var got ports.Registration
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Email == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.Register(context.Background(), ports.Registration{Name: "N", Email: "new@example.com", Password: "pw"}))
	assert.Equal(t, "N", got.Name)

	err := c.Register(context.Background(), ports.Registration{Email: "taken@example.com"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRequestPasswordReset(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/auth/forgot-password", r.URL.Path)
		if calls == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	assert.NoError(t, c.RequestPasswordReset(context.Background(), "unknown@example.com"))
	err := c.RequestPasswordReset(context.Background(), "x@example.com")
	assert.True(t, apperrors.IsUnavailable(err))
}
