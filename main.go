package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bdickey/b6/internal/config"
	"github.com/bdickey/b6/internal/database"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/server"
	"github.com/bdickey/b6/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	location, err := cfg.Location()
	if err != nil {
		slog.Error("loading timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settingsRepo := repository.NewSettingsRepository(db)
	if cfg.CarpoolFile != "" {
		matrix, err := config.LoadCarpoolFile(cfg.CarpoolFile)
		if err != nil {
			slog.Error("loading carpool file", "error", err)
			os.Exit(1)
		}
		if err := settingsRepo.SetCarpoolMatrix(ctx, matrix); err != nil {
			slog.Error("saving carpool matrix", "error", err)
			os.Exit(1)
		}
		slog.Info("loaded carpool matrix", "path", cfg.CarpoolFile, "days", len(matrix))
	}

	authService, err := services.NewAuthService(ctx, cfg,
		repository.NewUserRepository(db),
		repository.NewAPITokenRepository(db),
	)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	maintenance := services.NewMaintenanceService(
		repository.NewBookingRepository(db),
		repository.NewTransportRepository(db),
		location,
	)
	if err := maintenance.Run(ctx); err != nil {
		slog.Error("startup maintenance", "error", err)
	}
	scheduler, err := maintenance.Schedule(cfg.MaintenanceCron)
	if err != nil {
		slog.Error("scheduling maintenance", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	srv := server.New(db, cfg, authService, location)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutting down server", "error", err)
	}
	<-scheduler.Stop().Done()
}
