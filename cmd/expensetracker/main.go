package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.LogError(context.Background(), "Invalid backend configuration", err, applog.OpStartup, nil)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.LogError(context.Background(), "Failed to initialize backend", err, applog.OpStartup,
			applog.NewFields().WithComponent(applog.ComponentBackend))
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Backend:            result.Backend,
		Photos:             result.Photos,
		Publisher:          result.Publisher,
		Sessions:           session.NewStore(cfg.SessionTTL),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MaxPhotoBytes:      cfg.MaxPhotoBytes,
		SessionTTL:         cfg.SessionTTL,
		SecureCookies:      cfg.SecureCookies,
		Ready:              result.Ready,
	})

	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	_, _, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.LogError(ctx, "Server shutdown error", err, applog.OpShutdown, nil)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.LogError(ctx, "Backend cleanup error", err, applog.OpShutdown, nil)
			}
		}
	})

	logger.Info("Starting expense tracker", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.LogError(context.Background(), "Server error", err, applog.OpStartup, nil)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
