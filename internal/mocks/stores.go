// Package mocks holds testify mocks of the model interfaces.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

var (
	_ models.UserStore     = (*UserStore)(nil)
	_ models.SessionStore  = (*SessionStore)(nil)
	_ models.FoodStore     = (*FoodStore)(nil)
	_ models.TrackingStore = (*TrackingStore)(nil)
	_ models.WeightStore   = (*WeightStore)(nil)
	_ models.MacroStore    = (*MacroStore)(nil)
	_ models.ObjectStorage = (*ObjectStorage)(nil)
)

type UserStore struct {
	mock.Mock
}

func (m *UserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserStore) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) CreateSession(ctx context.Context, session models.Session) (bool, error) {
	args := m.Called(ctx, session)
	return args.Bool(0), args.Error(1)
}

func (m *SessionStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Session), args.Error(1)
}

func (m *SessionStore) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *SessionStore) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SessionStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type FoodStore struct {
	mock.Mock
}

func (m *FoodStore) CreateFood(ctx context.Context, input models.FoodInput) (models.Food, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.Food), args.Error(1)
}

func (m *FoodStore) UpdateFood(ctx context.Context, id int64, input models.FoodInput) (models.Food, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(models.Food), args.Error(1)
}

func (m *FoodStore) GetFood(ctx context.Context, id int64) (models.Food, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Food), args.Error(1)
}

func (m *FoodStore) GetFoodByBarcode(ctx context.Context, barcode string) (models.Food, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(models.Food), args.Error(1)
}

func (m *FoodStore) SearchFoods(ctx context.Context, text string, limit int) ([]models.Food, error) {
	args := m.Called(ctx, text, limit)
	return args.Get(0).([]models.Food), args.Error(1)
}

type TrackingStore struct {
	mock.Mock
}

func (m *TrackingStore) LogFood(ctx context.Context, entry models.NewFoodLogEntry) (models.FoodLogEntry, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(models.FoodLogEntry), args.Error(1)
}

func (m *TrackingStore) GetFoodLog(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.FoodLogEntry, error) {
	args := m.Called(ctx, userID, date)
	return args.Get(0).([]models.FoodLogEntry), args.Error(1)
}

func (m *TrackingStore) GetFoodLogRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.FoodLogEntry, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]models.FoodLogEntry), args.Error(1)
}

func (m *TrackingStore) RemoveFood(ctx context.Context, userID uuid.UUID, entryID int64) (int64, error) {
	args := m.Called(ctx, userID, entryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TrackingStore) GetRecentFoods(ctx context.Context, userID uuid.UUID, meal *models.Meal, limit int) ([]models.RecentFood, error) {
	args := m.Called(ctx, userID, meal, limit)
	return args.Get(0).([]models.RecentFood), args.Error(1)
}

type WeightStore struct {
	mock.Mock
}

func (m *WeightStore) UpsertWeight(ctx context.Context, entry models.WeightEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *WeightStore) GetWeightTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.WeightPoint, error) {
	args := m.Called(ctx, userID, days)
	return args.Get(0).([]models.WeightPoint), args.Error(1)
}

type MacroStore struct {
	mock.Mock
}

func (m *MacroStore) GetTodayMacros(ctx context.Context, userID uuid.UUID) (models.MacroTotals, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.MacroTotals), args.Error(1)
}

func (m *MacroStore) GetMacroTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.DayMacros, error) {
	args := m.Called(ctx, userID, days)
	return args.Get(0).([]models.DayMacros), args.Error(1)
}

func (m *MacroStore) GetCurrentGoal(ctx context.Context, userID uuid.UUID) (models.MacroGoal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.MacroGoal), args.Error(1)
}

func (m *MacroStore) SetGoal(ctx context.Context, userID uuid.UUID, goal models.MacroTotals) (models.MacroGoal, error) {
	args := m.Called(ctx, userID, goal)
	return args.Get(0).(models.MacroGoal), args.Error(1)
}

type ObjectStorage struct {
	mock.Mock
}

func (m *ObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	args := m.Called(ctx, key, reader, contentType)
	return args.Error(0)
}

func (m *ObjectStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
