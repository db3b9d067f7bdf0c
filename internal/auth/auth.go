// Package auth implements registration, password login and cookie-backed
// sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

// Service registers and authenticates users.
type Service struct {
	users     models.UserStore
	sessions  *Manager
	cost      int
	dummyHash []byte
	logger    *logger.Logger
}

// LoginResult carries the authenticated user and the session to put in the cookie.
type LoginResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

func NewService(users models.UserStore, sessions *Manager, cost int, logger *logger.Logger) (*Service, error) {
	// Compared against when the email is unknown so both failure paths pay
	// for one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &Service{
		users:     users,
		sessions:  sessions,
		cost:      cost,
		dummyHash: dummy,
		logger:    logger,
	}, nil
}

// Register validates the input, hashes the password and stores the user.
// Duplicate email or handle is reported as *models.ConflictError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
	}
	if in.Handle != "" {
		handle := in.Handle
		user.Handle = &handle
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("Auth service: registration conflict", "field", conflict.Field)
			return models.User{}, conflict
		}
		s.logger.Error("Auth service: failed to create user", "error", err.Error())
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Auth service: user registered", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials and opens a session. Unknown email and wrong
// password both return models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("Auth service: failed to get user by email", "error", err.Error())
			return LoginResult{}, fmt.Errorf("failed to get user by email: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return LoginResult{}, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Auth service: password mismatch", "user_id", user.ID)
		return LoginResult{}, models.ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	s.logger.Debug("Auth service: user logged in", "user_id", user.ID)
	return LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Sessions exposes the session manager.
func (s *Service) Sessions() *Manager {
	return s.sessions
}
