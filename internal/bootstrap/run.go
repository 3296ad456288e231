package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/adapters/memory"
	httpx "github.com/hotelbooking/hotelweb/internal/http"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const sweepInterval = time.Minute

// Runtime is the wired application: infrastructure clients, the HTTP handler
// and the background loops that keep process-local state bounded.
type Runtime struct {
	Config  *config.AppConfig
	DB      *sql.DB               // nil when DB_ENABLED=false
	Redis   redis.UniversalClient // nil when REDIS_ENABLED=false
	Handler http.Handler

	limiter  *httpx.RateLimiter
	sessions *memory.SessionStore
	logger   *slog.Logger
}

// Build connects infrastructure and wires every service. On error, anything
// already opened is closed.
func Build(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (rt *Runtime, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt = &Runtime{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			err = errors.Join(err, rt.Close())
			rt = nil
		}
	}()

	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	checks := map[string]httpx.HealthCheck{}

	if cfg.Postgres.Enabled {
		if rt.DB, err = ConnectDB(ctx, dbCfg); err != nil {
			return rt, fmt.Errorf("connect db: %w", err)
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, rt.DB, logger); err != nil {
				return rt, err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		checks["database"] = dbHealthCheck(rt.DB)
	}

	if cfg.Redis.Enabled {
		if rt.Redis, err = ConnectRedis(ctx, dbCfg); err != nil {
			return rt, fmt.Errorf("connect redis: %w", err)
		}
		checks["sessions"] = redisHealthCheck(rt.Redis)
	}

	stores := BuildSessionStore(rt.Redis, cfg.Redis.KeyPrefix, logger)
	rt.sessions = stores.Memory

	tenants, err := BuildTenantDirectory(rt.DB, cfg.Auth.StaticTenants)
	if err != nil {
		return rt, err
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:     cfg.Auth,
		Sessions: stores.Store,
		Tenants:  tenants,
		Logger:   logger,
	})
	if err != nil {
		return rt, err
	}

	payments, err := BuildPaymentService(cfg.Payment, logger)
	if err != nil {
		return rt, err
	}

	var metrics *httpx.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = httpx.NewMetrics()
	}
	if rl := cfg.Observability.RateLimit; rl.Enabled {
		rt.limiter = httpx.NewRateLimiter(httpx.RateLimitConfig{
			PerMinute:  rl.PerMinute,
			Burst:      rl.Burst,
			IdleTTL:    rl.IdleTTL,
			TrustProxy: rl.TrustProxy,
		})
	}

	rt.Handler, err = BuildHTTPHandler(HTTPHandlerConfig{
		Config:       cfg,
		Auth:         auth,
		Payments:     payments,
		Metrics:      metrics,
		RateLimiter:  rt.limiter,
		HealthChecks: checks,
		Logger:       logger,
	})
	if err != nil {
		return rt, err
	}
	return rt, nil
}

// Serve runs the HTTP server and background sweepers until ctx is canceled
// or SIGINT/SIGTERM arrives, then shuts the server down gracefully.
func (rt *Runtime) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(rt.Config.HTTP, rt.Handler)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdownHTTPServer(gctx, server, rt.Config.HTTP.ShutdownTimeout, rt.logger)
	})
	if rt.limiter != nil {
		g.Go(func() error { return rt.limiter.Run(gctx, sweepInterval) })
	}
	if rt.sessions != nil {
		g.Go(func() error {
			rt.sessions.RunSweeper(gctx, sweepInterval)
			return nil
		})
	}

	return g.Wait()
}

// Close releases the database and Redis connections.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if rt.DB != nil {
		if err := rt.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
