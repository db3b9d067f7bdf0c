// Package store implements the model store interfaces on PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

var (
	_ models.UserStore     = (*Store)(nil)
	_ models.SessionStore  = (*Store)(nil)
	_ models.FoodStore     = (*Store)(nil)
	_ models.TrackingStore = (*Store)(nil)
	_ models.WeightStore   = (*Store)(nil)
	_ models.MacroStore    = (*Store)(nil)
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new store instance
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, committing on success and rolling back on
// any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var constraintFields = map[string]string{
	"users_email_key":   "email",
	"users_user_id_key": "user_id",
	"foods_barcode_key": "barcode",
}

// asConflict converts a unique violation into *models.ConflictError.
func asConflict(err error) (error, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return nil, false
	}

	field, ok := constraintFields[pqErr.Constraint]
	if !ok {
		field = strings.TrimSuffix(pqErr.Constraint, "_key")
	}
	return &models.ConflictError{Field: field}, true
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}
