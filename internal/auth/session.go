package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

// maxTokenAttempts bounds regeneration after a token collision.
const maxTokenAttempts = 3

// Manager issues, resolves and destroys opaque session tokens.
type Manager struct {
	sessions models.SessionStore
	users    models.UserStore
	ttl      time.Duration
	logger   *logger.Logger
	now      func() time.Time
	newToken func() (string, error)
}

// NewManager returns a manager whose sessions live for ttl.
func NewManager(sessions models.SessionStore, users models.UserStore, ttl time.Duration, logger *logger.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		newToken: generateToken,
	}
}

// CreateSession stores a fresh session for userID and returns its token.
func (m *Manager) CreateSession(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	expiresAt := m.now().Add(m.ttl)

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := m.newToken()
		if err != nil {
			return "", time.Time{}, err
		}

		created, err := m.sessions.CreateSession(ctx, models.Session{
			ID:        token,
			UserID:    userID,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			m.logger.Error("Session manager: failed to create session",
				"user_id", userID,
				"error", err.Error())
			return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
		}
		if created {
			return token, expiresAt, nil
		}

		m.logger.Warn("Session manager: token collision, regenerating",
			"user_id", userID,
			"attempt", attempt)
	}

	return "", time.Time{}, fmt.Errorf("failed to create session: token collided %d times", maxTokenAttempts)
}

// GetSession returns the live session for token. A missing, malformed,
// expired or unknown token all report ok=false without an error.
func (m *Manager) GetSession(ctx context.Context, token string) (models.Session, bool, error) {
	if !wellFormedToken(token) {
		return models.Session{}, false, nil
	}

	sess, err := m.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, true, nil
}

// CurrentUser resolves token to its user. It returns models.ErrUnauthenticated
// when there is no usable session. If the session outlived its user, every
// session of that user is deleted first.
func (m *Manager) CurrentUser(ctx context.Context, token string) (models.User, error) {
	sess, ok, err := m.GetSession(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, models.ErrUnauthenticated
	}

	user, err := m.users.GetUserByID(ctx, sess.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, fmt.Errorf("failed to get session user: %w", err)
	}

	removed, err := m.sessions.DeleteUserSessions(ctx, sess.UserID)
	if err != nil {
		m.logger.Error("Session manager: failed to delete orphaned sessions",
			"user_id", sess.UserID,
			"error", err.Error())
	} else {
		m.logger.Info("Session manager: deleted orphaned sessions",
			"user_id", sess.UserID,
			"count", removed)
	}
	return models.User{}, models.ErrUnauthenticated
}

// DestroySession deletes the session. Unknown tokens are not an error.
func (m *Manager) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// ReapExpired deletes every expired session.
func (m *Manager) ReapExpired(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reap sessions: %w", err)
	}
	return n, nil
}

// RunReaper calls ReapExpired every interval until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := m.ReapExpired(ctx)
		if err != nil {
			m.logger.Error("Session manager: cleanup failed", "error", err.Error())
		} else if n > 0 {
			m.logger.Info("Session manager: removed expired sessions", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
