package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/adapters/memory"
	"github.com/hotelbooking/hotelweb/internal/adapters/paymentgw"
	redisadapter "github.com/hotelbooking/hotelweb/internal/adapters/redis"
	"github.com/hotelbooking/hotelweb/internal/data"
	"github.com/hotelbooking/hotelweb/internal/ports"
	"github.com/hotelbooking/hotelweb/internal/service"
	"github.com/redis/go-redis/v9"
)

// SessionStores holds the configured session store. Memory is set only when
// sessions are kept in process, so the caller can run its sweeper.
type SessionStores struct {
	Store  ports.SessionStore
	Memory *memory.SessionStore
}

// BuildSessionStore uses Redis when a client is given and an in-memory store otherwise.
func BuildSessionStore(client redis.UniversalClient, prefix string, logger *slog.Logger) SessionStores {
	if client != nil {
		return SessionStores{Store: redisadapter.NewSessionStore(client, prefix)}
	}
	if logger != nil {
		logger.Warn("sessions are stored in memory; they are lost on restart and not shared between replicas")
	}
	mem := memory.NewSessionStore()
	return SessionStores{Store: mem, Memory: mem}
}

// BuildTenantDirectory returns the Postgres directory when db is set and the
// static AUTH_STATIC_TENANTS directory otherwise.
func BuildTenantDirectory(db *sql.DB, static string) (ports.TenantDirectory, error) {
	if db != nil {
		return data.NewStaffRepo(db), nil
	}
	dir, err := data.ParseStaticTenants(static)
	if err != nil {
		return nil, fmt.Errorf("parse AUTH_STATIC_TENANTS: %w", err)
	}
	return dir, nil
}

// BuildPaymentService returns nil when the payment API is not configured.
func BuildPaymentService(cfg config.PaymentConfig, logger *slog.Logger) (*service.PaymentService, error) {
	if !cfg.Enabled() {
		if logger != nil {
			logger.Info("payment proxy disabled: PAYMENT_API_URL or PAYMENT_SERVER_KEY not set")
		}
		return nil, nil
	}
	client, err := paymentgw.New(paymentgw.Config{
		URL:        cfg.URL,
		ServerKey:  cfg.ServerKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("payment client: %w", err)
	}
	return service.NewPaymentService(service.PaymentServiceOptions{Gateway: client, Logger: logger}), nil
}

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

func dbHealthCheck(db pinger) func(context.Context) error {
	return db.PingContext
}

func redisHealthCheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
