// Package testutil provides Postgres and Redis fixtures for integration tests.
// Fixtures skip the calling test when the backing service is unreachable unless
// TEST_REQUIRE_DB / TEST_REQUIRE_REDIS / TEST_REQUIRE_INFRA is set.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hotelbooking/hotelweb/internal/migrate"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisAddr = "localhost:56379"
	defaultRedisDB   = 9
)

// TestDBConfig locates the integration test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* and falls back to the docker-compose
// test profile on port 55432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "hotelweb"),
		Password: envOr("TEST_DB_PASSWORD", "hotelweb"),
		DBName:   envOr("TEST_DB_NAME", "hotelweb"),
	}
}

// DSN renders the config as a postgres URL.
func (c TestDBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName,
		envOr("DB_SSL_MODE", "disable"))
}

// SetupTestDB opens the test database, applies migrations and empties
// hotel_staff. The connection is closed when the test finishes.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN())
	if err != nil {
		unavailable(t, requireDB(), "test database: %v", err)
		return nil
	}
	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("close test db: %v", cerr)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		unavailable(t, requireDB(), "test database: %v", err)
		return nil
	}
	if _, err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM hotel_staff"); err != nil {
		t.Fatalf("clean hotel_staff: %v", err)
	}
	return db
}

// TestRedisAddr returns TEST_REDIS_ADDR, then REDIS_ADDR (set in CI), then
// the local test port.
func TestRedisAddr() string {
	return envOr("TEST_REDIS_ADDR", envOr("REDIS_ADDR", defaultRedisAddr))
}

// SetupTestRedis connects to the test Redis and flushes the selected DB
// (TEST_REDIS_DB, default 9). The caller closes the client.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := TestRedisAddr()
	db := defaultRedisDB
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			db = i
		}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		unavailable(t, requireRedis(), "redis at %s: %v", addr, err)
		return nil
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("flush redis db %d: %v", db, err)
	}
	return client
}

func unavailable(t testing.TB, required bool, format string, args ...any) {
	t.Helper()
	if required {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envBool accepts 1/true/yes/y in any case.
func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
