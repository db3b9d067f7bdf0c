// Package database opens the PostgreSQL connection pool shared by every store.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/nutrilog-io/nutrilog/internal/config"
	"github.com/nutrilog-io/nutrilog/internal/logger"
)

// Open connects to PostgreSQL, applies the pool limits from cfg, verifies the
// connection and runs migrations. The caller owns the returned handle.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := prepare(ctx, db, cfg, log); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func prepare(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig, log *logger.Logger) error {
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database: running migrations")
	if err := Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("Database: ready",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns)

	return nil
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
