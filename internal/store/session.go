package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

// CreateSession inserts the session, doing nothing on a token collision.
func (s *Store) CreateSession(ctx context.Context, session models.Session) (bool, error) {
	data := string(session.Data)
	if data == "" {
		data = "{}"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, data, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		session.ID, session.UserID, data, session.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// GetSession returns the session for token if it has not expired.
func (s *Store) GetSession(ctx context.Context, token string) (models.Session, error) {
	var sess models.Session
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, data, created_at, expires_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		token,
	).Scan(&sess.ID, &sess.UserID, &data, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session: %w", notFound(err))
	}
	sess.Data = data
	return sess, nil
}

// DeleteSession is idempotent.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes every session of userID and returns the count.
func (s *Store) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
