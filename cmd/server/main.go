package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/scidesk/internal/artifact"
	"github.com/JonMunkholm/scidesk/internal/auth"
	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
	_ "github.com/JonMunkholm/scidesk/internal/core/tables" // Register the form catalog
	"github.com/JonMunkholm/scidesk/internal/logging"
	"github.com/JonMunkholm/scidesk/internal/mail"
	"github.com/JonMunkholm/scidesk/internal/metrics"
	"github.com/JonMunkholm/scidesk/internal/store"
	"github.com/JonMunkholm/scidesk/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"mail_driver", cfg.Mail.Driver,
		"artifact_driver", cfg.Artifacts.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sender, err := mail.Open(cfg.Mail)
	if err != nil {
		slog.Error("failed to configure mail", "error", err)
		os.Exit(1)
	}

	artifacts, err := artifact.Open(ctx, cfg.Artifacts)
	if err != nil {
		slog.Error("failed to configure artifact store", "error", err)
		os.Exit(1)
	}

	recorder := metrics.New()

	service, err := core.NewService(core.Options{
		Store:     st,
		Sender:    sender,
		Limiter:   core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		Artifacts: artifacts,
		Metrics:   recorder,

		BatchTimeout: cfg.Upload.Timeout,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("form catalog registered",
		"forms", core.FormCount(),
		"user_forms", len(core.ByAudience(core.AudienceUser)),
		"coordinator_forms", len(core.ByAudience(core.AudienceCoordinator)),
	)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	server := web.NewServer(service, cfg, verifier, recorder.Handler())

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running batches finish their mails and documents
		limiter := service.Limiter()
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for batches to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("batches did not complete in time", "error", err)
			} else {
				slog.Info("all batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
