package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutrilog-io/nutrilog/internal/mocks"
	"github.com/nutrilog-io/nutrilog/internal/models"
	"github.com/nutrilog-io/nutrilog/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *mocks.UserStore, *mocks.SessionStore) {
	t.Helper()
	users := new(mocks.UserStore)
	sessions := new(mocks.SessionStore)
	log := testutil.MakeNoopLogger()

	svc, err := NewService(users, NewManager(sessions, users, time.Hour, log), bcrypt.MinCost, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		users.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})
	return svc, users, sessions
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and hashes", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		users.On("CreateUser", ctx, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "ann@example.com" &&
				u.Name == "Ann" &&
				u.Handle != nil && *u.Handle == "ann_b" &&
				u.PasswordHash != "secret123" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil
		})).Return(models.User{ID: uuid.New(), Email: "ann@example.com", Name: "Ann"}, nil)

		user, err := svc.Register(ctx, RegisterInput{
			Email:    "  Ann@Example.COM ",
			Name:     " Ann ",
			Password: "secret123",
			Handle:   "ann_b",
		})
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", user.Email)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Name: "", Password: "short", Handle: "x"})
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "password")
		assert.Contains(t, verr.Fields, "user_id")
	})

	t.Run("conflict", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		users.On("CreateUser", ctx, mock.Anything).
			Return(models.User{}, &models.ConflictError{Field: "email"})

		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Name: "A", Password: "secret123"})
		var conflict *models.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "email", conflict.Field)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: uuid.New(), Email: "a@b.com", Name: "A", PasswordHash: hashed(t, "secret123")}

	t.Run("success", func(t *testing.T) {
		svc, users, sessions := newTestService(t)
		users.On("GetUserByEmail", ctx, "a@b.com").Return(user, nil)
		sessions.On("CreateSession", ctx, mock.MatchedBy(func(s models.Session) bool {
			return s.UserID == user.ID && wellFormedToken(s.ID)
		})).Return(true, nil)

		res, err := svc.Login(ctx, " A@B.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)
		assert.True(t, wellFormedToken(res.Token))
		assert.True(t, res.ExpiresAt.After(time.Now()))
	})

	t.Run("unknown email and wrong password are identical", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		users.On("GetUserByEmail", ctx, "nobody@b.com").Return(models.User{}, models.ErrNotFound)
		users.On("GetUserByEmail", ctx, "a@b.com").Return(user, nil)

		_, errUnknown := svc.Login(ctx, "nobody@b.com", "secret123")
		_, errWrong := svc.Login(ctx, "a@b.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, models.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, models.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		users.On("GetUserByEmail", ctx, "a@b.com").Return(models.User{}, errors.New("db down"))

		_, err := svc.Login(ctx, "a@b.com", "secret123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrInvalidCredentials)
	})
}
