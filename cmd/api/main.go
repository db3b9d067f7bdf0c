package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutrilog-io/nutrilog/internal/api"
	"github.com/nutrilog-io/nutrilog/internal/auth"
	"github.com/nutrilog-io/nutrilog/internal/config"
	"github.com/nutrilog-io/nutrilog/internal/database"
	"github.com/nutrilog-io/nutrilog/internal/export"
	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/metrics"
	"github.com/nutrilog-io/nutrilog/internal/models"
	"github.com/nutrilog-io/nutrilog/internal/store"
	"github.com/nutrilog-io/nutrilog/internal/tracking"
)

const version = "0.1.0"

// newS3Client is swapped in tests.
var newS3Client = func(ctx context.Context, cfg config.ExportConfig) (models.ObjectStorage, error) {
	return export.NewS3Client(ctx, cfg)
}

func initializeAPI(ctx context.Context, cfg *config.Config, db *sql.DB, log *logger.Logger) (*api.Api, error) {
	st := store.New(db)

	sessions := auth.NewManager(st, st, cfg.Session.TTL, log)
	authService, err := auth.NewService(st, sessions, cfg.Auth.BcryptCost, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	trackingService := tracking.NewService(st, st, log)

	// storage stays a nil interface when exports are off.
	var storage models.ObjectStorage
	if cfg.Export.Enabled() {
		storage, err = newS3Client(ctx, cfg.Export)
		if err != nil {
			return nil, fmt.Errorf("failed to create export storage: %w", err)
		}
		log.Info("Food log export enabled", "bucket", cfg.Export.Bucket)
	}

	return api.NewApi(*cfg, api.Services{
		Auth:     authService,
		Tracking: trackingService,
		Metrics:  metrics.NewService(st, st, log),
		Export:   export.NewService(trackingService, storage, cfg.Export.URLExpiry, log),
		DB:       st,
	}, log), nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.New(0).Fatal("Failed to load config", "error", err.Error())
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting NutriLog API", "version", version, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", "error", err.Error())
	}
	defer db.Close()

	server, err := initializeAPI(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("Failed to initialize API", "error", err.Error())
	}

	if err := server.Serve(ctx); err != nil {
		log.Error("API server stopped", "error", err.Error())
		return
	}
	log.Info("API server stopped")
}
