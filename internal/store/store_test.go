package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db), mock
}

func q(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

var userRowColumns = []string{"id", "user_id", "email", "name", "password_hash", "created_at"}

func TestStore_CreateUser(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: uuid.New(), Email: "a@b.com", Name: "Ann", PasswordHash: "hash"}

	t.Run("success", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(q("INSERT INTO users (id, user_id, email, name, password_hash)")).
			WithArgs(user.ID, nil, user.Email, user.Name, user.PasswordHash).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(user.ID.String(), nil, user.Email, user.Name, user.PasswordHash, time.Now()))

		got, err := s.CreateUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Nil(t, got.Handle)
	})

	tests := []struct {
		constraint string
		field      string
	}{
		{constraint: "users_email_key", field: "email"},
		{constraint: "users_user_id_key", field: "user_id"},
	}
	for _, tt := range tests {
		t.Run("conflict on "+tt.field, func(t *testing.T) {
			s, mock := newMock(t)
			mock.ExpectQuery(q("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			_, err := s.CreateUser(ctx, user)
			var conflict *models.ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, tt.field, conflict.Field)
		})
	}

	t.Run("other error", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(q("INSERT INTO users")).WillReturnError(errors.New("boom"))

		_, err := s.CreateUser(ctx, user)
		require.Error(t, err)
		var conflict *models.ConflictError
		assert.False(t, errors.As(err, &conflict))
	})
}

func TestStore_GetUserByEmail_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("nobody@b.com").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByEmail(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_CreateSession(t *testing.T) {
	ctx := context.Background()
	sess := models.Session{ID: "token", UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("inserted", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(q("ON CONFLICT (id) DO NOTHING")).
			WithArgs(sess.ID, sess.UserID, "{}", sess.ExpiresAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := s.CreateSession(ctx, sess)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("collision", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(q("INSERT INTO sessions")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := s.CreateSession(ctx, sess)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_GetSession(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(q("WHERE id = $1 AND expires_at > now()")).
			WithArgs("token").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "data", "created_at", "expires_at"}).
				AddRow("token", userID.String(), []byte(`{}`), time.Now(), time.Now().Add(time.Hour)))

		got, err := s.GetSession(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("expired or missing", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(q("FROM sessions")).WillReturnError(sql.ErrNoRows)

		_, err := s.GetSession(ctx, "token")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStore_DeleteExpiredSessions(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM sessions WHERE expires_at <= now()")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

var foodRowColumns = []string{"id", "name", "brand", "barcode", "calories", "protein", "carbs", "fat", "serving_size", "serving_unit"}

func TestStore_CreateFood(t *testing.T) {
	s, mock := newMock(t)
	in := models.FoodInput{Name: "Oats", Brand: "Generic", Calories: 150, Protein: 5, Carbs: 27, Fat: 3, ServingSize: 40, ServingUnit: "g"}

	mock.ExpectQuery(q("INSERT INTO foods")).
		WithArgs("Oats", "Generic", nil, 150.0, 5.0, 27.0, 3.0, 40.0, "g").
		WillReturnRows(sqlmock.NewRows(foodRowColumns).
			AddRow(int64(1), "Oats", "Generic", nil, 150.0, 5.0, 27.0, 3.0, 40.0, "g"))

	f, err := s.CreateFood(context.Background(), in)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.ID)
	assert.Nil(t, f.Barcode)
}

func TestStore_UpdateFood_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("UPDATE foods")).WillReturnError(sql.ErrNoRows)

	_, err := s.UpdateFood(context.Background(), 42, models.FoodInput{Name: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_SearchFoods_EscapesWildcards(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("name ILIKE '%' || $1 || '%'")).
		WithArgs(`100\%`, 10).
		WillReturnRows(sqlmock.NewRows(foodRowColumns))

	foods, err := s.SearchFoods(context.Background(), "100%", 10)
	require.NoError(t, err)
	assert.NotNil(t, foods)
	assert.Empty(t, foods)
}

var logRowColumns = []string{"id", "food_id", "meal", "meal_name", "name", "brand", "recorded_at",
	"carbs", "fat", "protein", "calories", "serving_size", "serving_unit"}

func TestStore_LogFood(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	in := models.NewFoodLogEntry{UserID: userID, FoodID: 7, Meal: models.MealLunch, RecordedAt: date}

	t.Run("commits insert and read back", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("INSERT INTO food_tracker")).
			WithArgs(userID, int64(7), models.MealLunch, "2024-03-05").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectQuery(q("FROM food_log_v WHERE id = $1")).
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows(logRowColumns).
				AddRow(int64(11), int64(7), int64(1), "lunch", "Oats", "Generic", "2024-03-05",
					27.0, 3.0, 5.0, 150.0, 40.0, "g"))
		mock.ExpectCommit()

		entry, err := s.LogFood(ctx, in)
		require.NoError(t, err)
		assert.EqualValues(t, 11, entry.ID)
		assert.Equal(t, models.MealLunch, entry.Meal)
		assert.Equal(t, "Oats", entry.Name)
		assert.Equal(t, 150.0, entry.Calories)
	})

	t.Run("unknown food rolls back", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("INSERT INTO food_tracker")).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := s.LogFood(ctx, in)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("read back failure rolls back", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q("INSERT INTO food_tracker")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectQuery(q("FROM food_log_v")).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := s.LogFood(ctx, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read back")
	})
}

func TestStore_GetFoodLog(t *testing.T) {
	s, mock := newMock(t)
	userID := uuid.New()
	mock.ExpectQuery(q("WHERE user_id = $1 AND recorded_at = $2::date")).
		WithArgs(userID, "2024-03-05").
		WillReturnRows(sqlmock.NewRows(logRowColumns).
			AddRow(int64(1), int64(7), int64(0), "breakfast", "Oats", "Generic", "2024-03-05", 27.0, 3.0, 5.0, 150.0, 40.0, "g").
			AddRow(int64(2), int64(8), int64(2), "dinner", "Rice", "Generic", "2024-03-05", 45.0, 0.5, 4.0, 200.0, 1.0, "cup"))

	entries, err := s.GetFoodLog(context.Background(), userID, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.EqualValues(t, 1, entries[0].ID)
	assert.Equal(t, models.MealDinner, entries[1].Meal)
}

func TestStore_RemoveFood(t *testing.T) {
	s, mock := newMock(t)
	userID := uuid.New()
	mock.ExpectExec(q("DELETE FROM food_tracker WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.RemoveFood(context.Background(), userID, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_GetRecentFoods(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	columns := []string{"food_id", "name", "brand", "carbs", "fat", "protein", "calories", "serving_size", "serving_unit",
		"meal", "meal_name", "last_used", "last_entry_id"}

	t.Run("meal filter", func(t *testing.T) {
		s, mock := newMock(t)
		meal := models.MealSnack
		mock.ExpectQuery(q("SELECT DISTINCT ON (v.food_id)")).
			WithArgs(userID, int64(3), 10).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(int64(2), "Apple", "Generic", 25.0, 0.3, 0.5, 95.0, 1.0, "each", int64(3), "snack", "2024-03-05", int64(40)))

		recent, err := s.GetRecentFoods(ctx, userID, &meal, 10)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.EqualValues(t, 2, recent[0].ID)
		assert.Equal(t, "2024-03-05", recent[0].LastUsed)
		assert.EqualValues(t, 40, recent[0].LastEntryID)
	})

	t.Run("all meals", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(q("ORDER BY last_used DESC, last_entry_id DESC")).
			WithArgs(userID, nil, 5).
			WillReturnRows(sqlmock.NewRows(columns))

		recent, err := s.GetRecentFoods(ctx, userID, nil, 5)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})
}

func TestStore_UpsertWeight(t *testing.T) {
	s, mock := newMock(t)
	userID := uuid.New()
	mock.ExpectExec(q("ON CONFLICT (user_id, measured_at)")).
		WithArgs(userID, "2024-03-05", 180.5, "lb").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertWeight(context.Background(), models.WeightEntry{
		UserID: userID, MeasuredAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Weight: 180.5, Unit: "lb",
	})
	assert.NoError(t, err)
}

func TestStore_GetWeightTrend_Window(t *testing.T) {
	s, mock := newMock(t)
	userID := uuid.New()
	mock.ExpectQuery(q("measured_at > current_date - $2::int")).
		WithArgs(userID, 14).
		WillReturnRows(sqlmock.NewRows([]string{"date", "weight", "unit"}).
			AddRow("2024-03-05", 180.5, "lb"))

	points, err := s.GetWeightTrend(context.Background(), userID, 14)
	require.NoError(t, err)
	assert.Equal(t, []models.WeightPoint{{Date: "2024-03-05", Weight: 180.5, Unit: "lb"}}, points)
}

func TestStore_GetTodayMacros_ZeroRow(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("COALESCE(SUM(calories), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"calories", "protein", "carbs", "fat"}).AddRow(0.0, 0.0, 0.0, 0.0))

	got, err := s.GetTodayMacros(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.MacroTotals{}, got)
}

func TestStore_GetMacroTrend(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"date", "day", "calories", "protein", "carbs", "fat"})
	for i := 1; i <= 7; i++ {
		rows.AddRow("2024-03-0"+string(rune('0'+i)), "Mon", 0.0, 0.0, 0.0, 0.0)
	}
	mock.ExpectQuery(q("FROM generate_series(")).WillReturnRows(rows)

	trend, err := s.GetMacroTrend(context.Background(), uuid.New(), models.MacroTrendDays)
	require.NoError(t, err)
	assert.Len(t, trend, 7)
}

func TestStore_GetCurrentGoal_NotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(q("date_to IS NULL")).WillReturnError(sql.ErrNoRows)

	_, err := s.GetCurrentGoal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_SetGoal(t *testing.T) {
	s, mock := newMock(t)
	userID := uuid.New()
	goal := models.MacroTotals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 70}

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE macro_goals SET date_to = current_date")).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("INSERT INTO macro_goals")).
		WithArgs(userID, 2000.0, 150.0, 200.0, 70.0).
		WillReturnRows(sqlmock.NewRows([]string{"calories", "protein", "carbs", "fat", "date_from", "date_to"}).
			AddRow(2000.0, 150.0, 200.0, 70.0, "2024-03-05", nil))
	mock.ExpectCommit()

	got, err := s.SetGoal(context.Background(), userID, goal)
	require.NoError(t, err)
	assert.Equal(t, goal, got.MacroTotals)
	assert.Equal(t, "2024-03-05", got.DateFrom)
	assert.Nil(t, got.DateTo)
}
