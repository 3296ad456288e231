package devauth

import (
	"context"
	"strings"
	"testing"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", Role: "hotel", HotelID: "42"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(url, "/auth/callback?") {
		t.Fatalf("unexpected authURL: %s", url)
	}
	if len(state) != 24 || len(nonce) != 24 {
		t.Fatalf("state and nonce should be 24 chars, got %q %q", state, nonce)
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.UserID != "dev-user" || id.Role != "hotel" || id.HotelID != "42" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.ExpiresAt.IsZero() {
		t.Fatal("expiry should be set")
	}
}

func TestProvider_Authenticate(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "u", Email: "dev@example.com", Role: "Admin", Password: "secret"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, err := prov.Authenticate(context.Background(), ports.PasswordCredentials{Email: "x@example.com", Password: "wrong"}); err != domainauth.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	id, err := prov.Authenticate(context.Background(), ports.PasswordCredentials{Email: "x@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if id.Email != "x@example.com" || id.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	cases := []Config{
		{Email: "e", Role: "admin"},
		{UserID: "u", Role: "admin"},
		{UserID: "u", Email: "e", Role: "wizard"},
	}
	for _, c := range cases {
		if _, err := NewProvider(c); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}
