package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Gateway ports.PaymentGateway // Required
	Logger  *slog.Logger         // Optional
}

// PaymentService validates payment initiation requests and forwards them to the gateway.
type PaymentService struct {
	gateway ports.PaymentGateway
	logger  *slog.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	if opts.Gateway == nil {
		panic("payment service: gateway is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{gateway: opts.Gateway, logger: logger.With("component", "payment_service")}
}

// CreateToken checks the order id and amount and returns the hosted payment token.
// Customer and item details are forwarded untouched.
func (s *PaymentService) CreateToken(ctx context.Context, req ports.PaymentRequest) (ports.PaymentToken, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" {
		return ports.PaymentToken{}, apperrors.ValidationField("order_id", "order_id is required")
	}
	if req.GrossAmount <= 0 {
		return ports.PaymentToken{}, apperrors.ValidationField("gross_amount", "gross_amount must be greater than zero")
	}

	tok, err := s.gateway.CreateToken(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment token request failed", "order_id", req.OrderID, "error", err)
		return ports.PaymentToken{}, fmt.Errorf("create payment token: %w", err)
	}
	s.logger.InfoContext(ctx, "payment token created", "order_id", req.OrderID)
	return tok, nil
}
