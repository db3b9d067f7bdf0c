package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

const logColumns = `id, food_id, meal, meal_name, name, brand, to_char(recorded_at, 'YYYY-MM-DD'),
	carbs, fat, protein, calories, serving_size, serving_unit`

func scanEntry(row rowScanner) (models.FoodLogEntry, error) {
	var e models.FoodLogEntry
	err := row.Scan(&e.ID, &e.FoodID, &e.Meal, &e.MealName, &e.Name, &e.Brand, &e.RecordedAt,
		&e.Carbs, &e.Fat, &e.Protein, &e.Calories, &e.ServingSize, &e.ServingUnit)
	return e, err
}

func collectEntries(rows *sql.Rows) ([]models.FoodLogEntry, error) {
	defer rows.Close()

	entries := make([]models.FoodLogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate food log: %w", err)
	}
	return entries, nil
}

// LogFood copies the catalog food's current macros into a new entry and reads
// it back from food_log_v in the same transaction. An unknown food yields
// models.ErrNotFound and nothing is written.
func (s *Store) LogFood(ctx context.Context, in models.NewFoodLogEntry) (models.FoodLogEntry, error) {
	var entry models.FoodLogEntry

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO food_tracker
			     (user_id, food_id, meal, recorded_at, carbs, fat, protein, calories, serving_size, serving_unit)
			 SELECT $1, f.id, $3, $4::date, f.carbs, f.fat, f.protein, f.calories, f.serving_size, f.serving_unit
			 FROM foods f
			 WHERE f.id = $2
			 RETURNING id`,
			in.UserID, in.FoodID, in.Meal, models.FormatDate(in.RecordedAt),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert food log entry: %w", notFound(err))
		}

		entry, err = scanEntry(tx.QueryRowContext(ctx,
			`SELECT `+logColumns+` FROM food_log_v WHERE id = $1`, id))
		if err != nil {
			return fmt.Errorf("failed to read back food log entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.FoodLogEntry{}, err
	}
	return entry, nil
}

func (s *Store) GetFoodLog(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.FoodLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+`
		 FROM food_log_v
		 WHERE user_id = $1 AND recorded_at = $2::date
		 ORDER BY id`,
		userID, models.FormatDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get food log: %w", err)
	}
	return collectEntries(rows)
}

func (s *Store) GetFoodLogRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.FoodLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+`
		 FROM food_log_v
		 WHERE user_id = $1 AND recorded_at BETWEEN $2::date AND $3::date
		 ORDER BY recorded_at, meal, id`,
		userID, models.FormatDate(from), models.FormatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get food log range: %w", err)
	}
	return collectEntries(rows)
}

// RemoveFood deletes the entry only if userID owns it.
func (s *Store) RemoveFood(ctx context.Context, userID uuid.UUID, entryID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM food_tracker WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove food log entry: %w", err)
	}
	return res.RowsAffected()
}

// GetRecentFoods keeps the latest entry per food (by recorded date, then entry
// id), optionally within one meal, and returns the most recent first.
func (s *Store) GetRecentFoods(ctx context.Context, userID uuid.UUID, meal *models.Meal, limit int) ([]models.RecentFood, error) {
	var mealArg sql.NullInt16
	if meal != nil {
		mealArg = sql.NullInt16{Int16: int16(*meal), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT food_id, name, brand, carbs, fat, protein, calories, serving_size, serving_unit,
		        meal, meal_name, to_char(last_used, 'YYYY-MM-DD'), last_entry_id
		 FROM (
		     SELECT DISTINCT ON (v.food_id)
		            v.food_id, v.name, v.brand, v.carbs, v.fat, v.protein, v.calories,
		            v.serving_size, v.serving_unit, v.meal, v.meal_name,
		            v.recorded_at AS last_used, v.id AS last_entry_id
		     FROM food_log_v v
		     WHERE v.user_id = $1
		       AND ($2::int IS NULL OR v.meal = $2::int)
		     ORDER BY v.food_id, v.recorded_at DESC, v.id DESC
		 ) latest
		 ORDER BY last_used DESC, last_entry_id DESC
		 LIMIT $3`,
		userID, mealArg, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent foods: %w", err)
	}
	defer rows.Close()

	recent := make([]models.RecentFood, 0)
	for rows.Next() {
		var r models.RecentFood
		if err := rows.Scan(&r.ID, &r.Name, &r.Brand, &r.Carbs, &r.Fat, &r.Protein, &r.Calories,
			&r.ServingSize, &r.ServingUnit, &r.Meal, &r.MealName, &r.LastUsed, &r.LastEntryID); err != nil {
			return nil, fmt.Errorf("failed to scan recent food: %w", err)
		}
		recent = append(recent, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent foods: %w", err)
	}
	return recent, nil
}
