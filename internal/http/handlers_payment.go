package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/hotelbooking/hotelweb/internal/errors"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// PaymentServiceInterface creates payment tokens.
type PaymentServiceInterface interface {
	CreateToken(ctx context.Context, req ports.PaymentRequest) (ports.PaymentToken, error)
}

// PaymentHandlers proxies payment initiation to the payment gateway.
type PaymentHandlers struct {
	Svc    PaymentServiceInterface
	Logger *slog.Logger
}

func (h *PaymentHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// CreateToken returns the gateway's {"token","redirect_url"} for an order.
// POST /api/payments/token.
func (h *PaymentHandlers) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req ports.PaymentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	token, err := h.Svc.CreateToken(r.Context(), req)
	if err != nil {
		attrs := []any{"order_id", req.OrderID, "request_id", RequestIDFromContext(r.Context()), "error", err}
		if s, ok := SessionFromContext(r.Context()); ok {
			attrs = append(attrs, "user_id", s.UserID)
		}
		switch {
		case apperrors.IsValidation(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_request", Err: err})
		case apperrors.IsUnavailable(err):
			h.logger().WarnContext(r.Context(), "payment gateway failed", attrs...)
			WriteError(w, ErrorParams{
				Code:    http.StatusBadGateway,
				ErrCode: "payment_gateway_error",
				Err:     errors.New("payment gateway is unavailable"),
			})
		default:
			h.logger().ErrorContext(r.Context(), "create payment token failed", attrs...)
			WriteAppError(w, err, "payment_failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, token)
}
