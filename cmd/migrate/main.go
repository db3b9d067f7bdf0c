// Command migrate applies the embedded schema migrations and reports the
// resulting schema version. The API server migrates on start as well; this is
// for running them ahead of a deploy.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/nutrilog-io/nutrilog/internal/config"
	"github.com/nutrilog-io/nutrilog/internal/database"
	"github.com/nutrilog-io/nutrilog/internal/logger"
)

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Give up after this long")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.New(0).Fatal("Failed to load config", "error", err.Error())
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to migrate database", "error", err.Error())
	}
	defer db.Close()

	version, err := database.SchemaVersion(ctx, db)
	if err != nil {
		log.Fatal("Failed to read schema version", "error", err.Error())
	}

	log.Info("Database is up to date", "version", version)
}
