package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists login sessions keyed by an opaque token.
type SessionStore interface {
	// CreateSession inserts the session and reports whether a row was written.
	// A token collision writes nothing and returns false.
	CreateSession(ctx context.Context, session Session) (bool, error)
	// GetSession returns a non-expired session or ErrNotFound.
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Session ties an opaque token to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    uuid.UUID
	Data      json.RawMessage
	CreatedAt time.Time
	ExpiresAt time.Time
}
