// Package paymentgw creates hosted payment sessions on the payment provider's snap-style API.
package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

const maxResponseBytes = 1 << 20

// Config configures the payment API client.
type Config struct {
	// URL is the full transaction endpoint.
	URL string
	// ServerKey is sent as the Basic-auth user with an empty password.
	ServerKey  string
	HTTPClient *http.Client
}

// Client implements ports.PaymentGateway.
type Client struct {
	url       string
	serverKey string
	http      *http.Client
}

var _ ports.PaymentGateway = (*Client)(nil)

// New returns a client for cfg.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("payment API URL is required")
	}
	if cfg.ServerKey == "" {
		return nil, errors.New("payment server key is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{url: cfg.URL, serverKey: cfg.ServerKey, http: hc}, nil
}

// transactionDetails is the nesting the payment API expects for order fields.
type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type createTokenRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	CustomerDetails    json.RawMessage    `json:"customer_details,omitempty"`
	ItemDetails        json.RawMessage    `json:"item_details,omitempty"`
}

type errorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

// CreateToken posts the transaction and returns the hosted session token.
func (c *Client) CreateToken(ctx context.Context, req ports.PaymentRequest) (ports.PaymentToken, error) {
	body, err := json.Marshal(createTokenRequest{
		TransactionDetails: transactionDetails{OrderID: req.OrderID, GrossAmount: req.GrossAmount},
		CustomerDetails:    req.Customer,
		ItemDetails:        req.Items,
	})
	if err != nil {
		return ports.PaymentToken{}, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return ports.PaymentToken{}, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.serverKey, "")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return ports.PaymentToken{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "payment API request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.PaymentToken{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "read payment API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := fmt.Sprintf("payment API status=%d", resp.StatusCode)
		if len(e.ErrorMessages) > 0 {
			msg += ": " + e.ErrorMessages[0]
		}
		return ports.PaymentToken{}, apperrors.New(apperrors.ErrCodeUnavailable, msg)
	}

	var out ports.PaymentToken
	if err := json.Unmarshal(raw, &out); err != nil {
		return ports.PaymentToken{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode payment API response")
	}
	if out.Token == "" {
		return ports.PaymentToken{}, apperrors.New(apperrors.ErrCodeUnavailable, "payment API returned no token")
	}
	return out, nil
}
