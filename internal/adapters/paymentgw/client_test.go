package paymentgw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "SB-server-key", user)
		assert.Empty(t, pass)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `{"order_id":"BK-1","gross_amount":350000}`, string(body["transaction_details"]))
		assert.JSONEq(t, `{"first_name":"Ana"}`, string(body["customer_details"]))
		_, hasItems := body["item_details"]
		assert.False(t, hasItems)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-tok","redirect_url":"https://pay.example/snap/snap-tok"}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, ServerKey: "SB-server-key"})
	require.NoError(t, err)

	tok, err := c.CreateToken(context.Background(), ports.PaymentRequest{
		OrderID:     "BK-1",
		GrossAmount: 350000,
		Customer:    json.RawMessage(`{"first_name":"Ana"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, ports.PaymentToken{Token: "snap-tok", RedirectURL: "https://pay.example/snap/snap-tok"}, tok)
}

func TestCreateToken_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_messages":["transaction_details.order_id has already been taken"]}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, ServerKey: "k"})
	require.NoError(t, err)

	_, err = c.CreateToken(context.Background(), ports.PaymentRequest{OrderID: "BK-1", GrossAmount: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Contains(t, err.Error(), "already been taken")
}

func TestCreateToken_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, ServerKey: "k"})
	require.NoError(t, err)
	_, err = c.CreateToken(context.Background(), ports.PaymentRequest{OrderID: "x", GrossAmount: 1})
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{ServerKey: "k"})
	assert.Error(t, err)
	_, err = New(Config{URL: "http://x"})
	assert.Error(t, err)
}
