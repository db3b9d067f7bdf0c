package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

const userColumns = `id, user_id, email, name, password_hash, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Handle, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a user. Email and handle collisions are returned as
// *models.ConflictError.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (id, user_id, email, name, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.ID, user.Handle, user.Email, user.Name, user.PasswordHash,
	)

	created, err := scanUser(row)
	if err != nil {
		if conflict, ok := asConflict(err); ok {
			return models.User{}, conflict
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user by email: %w", notFound(err))
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user by id: %w", notFound(err))
	}
	return u, nil
}
