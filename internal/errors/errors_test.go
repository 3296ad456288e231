package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  NotFound("assignment not found"),
			want: "assignment not found",
		},
		{
			name: "error with cause",
			err:  Wrap(errors.New("dial tcp: refused"), ErrCodeUnavailable, "backend login"),
			want: "backend login: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_UnwrapThroughFmt(t *testing.T) {
	cause := errors.New("underlying error")
	err := fmt.Errorf("service: %w", Wrap(cause, ErrCodeInternal, "wrapped"))

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should find the cause through AppError")
	}
	if GetCode(err) != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInternal)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  *AppError
		code ErrorCode
	}{
		{NotFound("x"), ErrCodeNotFound},
		{Conflict("x"), ErrCodeConflict},
		{Validation("x"), ErrCodeValidation},
		{Unauthorized("x"), ErrCodeUnauthorized},
		{Internal("x"), ErrCodeInternal},
		{Newf(ErrCodeRateLimited, "retry in %ds", 3), ErrCodeRateLimited},
		{Wrapf(errors.New("c"), ErrCodeUnavailable, "upstream %s", "payments"), ErrCodeUnavailable},
	}
	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("code = %v, want %v", tt.err.Code, tt.code)
		}
	}
	if got := Newf(ErrCodeRateLimited, "retry in %ds", 3).Message; got != "retry in 3s" {
		t.Errorf("Newf message = %q", got)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("order_id", "order_id is required")
	if !IsValidation(err) {
		t.Error("expected validation error")
	}
	if GetField(err) != "order_id" {
		t.Errorf("GetField() = %q", GetField(err))
	}
	if GetField(errors.New("plain")) != "" {
		t.Error("GetField on plain error should be empty")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(NotFound("x")) || IsNotFound(Conflict("x")) {
		t.Error("IsNotFound mismatch")
	}
	if !IsConflict(Conflict("x")) {
		t.Error("IsConflict mismatch")
	}
	if !IsUnavailable(New(ErrCodeUnavailable, "x")) {
		t.Error("IsUnavailable mismatch")
	}
	if Is(nil, ErrCodeInternal) {
		t.Error("nil error has no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{New(ErrCodeRateLimited, "x"), http.StatusTooManyRequests},
		{New(ErrCodeUnavailable, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeCanceled, "x"), 499},
		{Internal("x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
