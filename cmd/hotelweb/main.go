package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/hotelbooking/hotelweb/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	bootstrap.SetLogLevel(cfg.Observability.SlogLevel())

	logStartupInfo(ctx, logger, &cfg)
	cfg.LogWarnings(logger)

	rt, err := bootstrap.Build(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close runtime failed", "error", cerr)
		}
	}()

	return rt.Serve(ctx)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting hotelweb gateway",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"dev", cfg.IsDev,
		"tenant_db", cfg.Postgres.Enabled,
		"redis_sessions", cfg.Redis.Enabled,
		"payments", cfg.Payment.Enabled())
}
