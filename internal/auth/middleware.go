package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext retrieves the user stored by RequireSession.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}

// RequireSession resolves the session cookie to a user. Requests without one
// get the session cookie cleared and are passed to unauthorized; lookup
// failures go to failed.
func RequireSession(
	m *Manager,
	cookies *CookieHelper,
	unauthorized http.HandlerFunc,
	failed func(w http.ResponseWriter, r *http.Request, err error),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := m.CurrentUser(r.Context(), cookies.Token(r))
			if err != nil {
				if errors.Is(err, models.ErrUnauthenticated) {
					cookies.Clear(w)
					unauthorized(w, r)
					return
				}
				failed(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
