package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutrilog-io/nutrilog/internal/mocks"
	"github.com/nutrilog-io/nutrilog/internal/models"
	"github.com/nutrilog-io/nutrilog/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *mocks.FoodStore, *mocks.TrackingStore) {
	t.Helper()
	foods := new(mocks.FoodStore)
	tracking := new(mocks.TrackingStore)
	t.Cleanup(func() {
		foods.AssertExpectations(t)
		tracking.AssertExpectations(t)
	})
	return NewService(foods, tracking, testutil.MakeNoopLogger()), foods, tracking
}

func TestService_LogFood(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		svc, _, tracking := newTestService(t)
		want := models.FoodLogEntry{ID: 1, FoodID: 7, Meal: models.MealDinner, MealName: "dinner"}
		tracking.On("LogFood", ctx, models.NewFoodLogEntry{
			UserID: userID, FoodID: 7, Meal: models.MealDinner, RecordedAt: date,
		}).Return(want, nil)

		got, err := svc.LogFood(ctx, userID, models.MealDinner, date, 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.LogFood(ctx, userID, models.Meal(9), time.Time{}, 0)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 3)
	})

	t.Run("unknown food is a validation error", func(t *testing.T) {
		svc, _, tracking := newTestService(t)
		tracking.On("LogFood", ctx, mock.Anything).Return(models.FoodLogEntry{}, models.ErrNotFound)

		_, err := svc.LogFood(ctx, userID, models.MealLunch, date, 99)
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "foodItem")
	})

	t.Run("store failure", func(t *testing.T) {
		svc, _, tracking := newTestService(t)
		tracking.On("LogFood", ctx, mock.Anything).Return(models.FoodLogEntry{}, errors.New("tx aborted"))

		_, err := svc.LogFood(ctx, userID, models.MealLunch, date, 7)
		require.Error(t, err)
		var verr *models.ValidationError
		assert.False(t, errors.As(err, &verr))
	})
}

func TestService_RemoveFood_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, tracking := newTestService(t)
	userID := uuid.New()

	tracking.On("RemoveFood", ctx, userID, int64(5)).Return(int64(1), nil).Once()
	tracking.On("RemoveFood", ctx, userID, int64(5)).Return(int64(0), nil).Once()

	assert.NoError(t, svc.RemoveFood(ctx, userID, 5))
	assert.NoError(t, svc.RemoveFood(ctx, userID, 5))
}

func TestService_RecentFoods_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	meal := models.MealBreakfast

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: models.DefaultRecentLimit},
		{name: "passthrough", limit: 25, want: 25},
		{name: "capped", limit: 500, want: MaxRecentLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, tracking := newTestService(t)
			tracking.On("GetRecentFoods", ctx, userID, &meal, tt.want).Return([]models.RecentFood{}, nil)

			_, err := svc.RecentFoods(ctx, userID, &meal, tt.limit)
			assert.NoError(t, err)
		})
	}
}

func TestService_FindFoods(t *testing.T) {
	ctx := context.Background()
	svc, foods, _ := newTestService(t)
	foods.On("SearchFoods", ctx, "oat", models.SearchLimit).Return([]models.Food{{ID: 1, Name: "Oats"}}, nil)

	got, err := svc.FindFoods(ctx, "oat")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_AddFood(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults brand", func(t *testing.T) {
		svc, foods, _ := newTestService(t)
		foods.On("CreateFood", ctx, mock.MatchedBy(func(in models.FoodInput) bool {
			return in.Brand == models.DefaultBrand && in.Name == "Egg"
		})).Return(models.Food{ID: 3, Name: "Egg", Calories: 78, Protein: 6, Fat: 5, Carbs: 0.6}, nil)

		res, err := svc.AddFood(ctx, models.FoodInput{Name: " Egg ", Calories: 78, Protein: 6, Fat: 5, Carbs: 0.6, ServingSize: 1, ServingUnit: "each"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, res.Food.ID)
		assert.Empty(t, res.Warning)
	})

	t.Run("inconsistent calories are stored with a warning", func(t *testing.T) {
		svc, foods, _ := newTestService(t)
		foods.On("CreateFood", ctx, mock.Anything).Return(models.Food{ID: 4, Calories: 500, Carbs: 10}, nil)

		res, err := svc.AddFood(ctx, models.FoodInput{Name: "Mystery", Calories: 500, Carbs: 10, ServingSize: 1, ServingUnit: "each"})
		require.NoError(t, err)
		assert.Equal(t, CalorieWarning, res.Warning)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.AddFood(ctx, models.FoodInput{})
		var verr *models.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("barcode conflict passes through", func(t *testing.T) {
		svc, foods, _ := newTestService(t)
		foods.On("CreateFood", ctx, mock.Anything).Return(models.Food{}, &models.ConflictError{Field: "barcode"})

		_, err := svc.AddFood(ctx, models.FoodInput{Name: "Bar", Barcode: "123", ServingSize: 1, ServingUnit: "each"})
		var conflict *models.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "barcode", conflict.Field)
	})
}

func TestService_UpdateFood_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, foods, _ := newTestService(t)
	foods.On("UpdateFood", ctx, int64(42), mock.Anything).Return(models.Food{}, models.ErrNotFound)

	_, err := svc.UpdateFood(ctx, 42, models.FoodInput{Name: "Bar", ServingSize: 1, ServingUnit: "each"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
