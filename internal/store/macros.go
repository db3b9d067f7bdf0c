package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

// GetTodayMacros sums today's entries. No entries yields zeros.
func (s *Store) GetTodayMacros(ctx context.Context, userID uuid.UUID) (models.MacroTotals, error) {
	var t models.MacroTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(calories), 0), COALESCE(SUM(protein), 0),
		        COALESCE(SUM(carbs), 0), COALESCE(SUM(fat), 0)
		 FROM food_tracker
		 WHERE user_id = $1 AND recorded_at = current_date`,
		userID,
	).Scan(&t.Calories, &t.Protein, &t.Carbs, &t.Fat)
	if err != nil {
		return models.MacroTotals{}, fmt.Errorf("failed to get today macros: %w", err)
	}
	return t, nil
}

// GetMacroTrend returns exactly one row per day for the trailing window
// ending today, zero-filled for days without entries.
func (s *Store) GetMacroTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.DayMacros, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_char(d.day, 'YYYY-MM-DD'), to_char(d.day, 'Dy'),
		        COALESCE(m.calories, 0), COALESCE(m.protein, 0),
		        COALESCE(m.carbs, 0), COALESCE(m.fat, 0)
		 FROM generate_series(current_date - ($2::int - 1), current_date, interval '1 day') AS d(day)
		 LEFT JOIN (
		     SELECT recorded_at, SUM(calories) AS calories, SUM(protein) AS protein,
		            SUM(carbs) AS carbs, SUM(fat) AS fat
		     FROM food_tracker
		     WHERE user_id = $1 AND recorded_at > current_date - $2::int
		     GROUP BY recorded_at
		 ) m ON m.recorded_at = d.day::date
		 ORDER BY d.day`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get macro trend: %w", err)
	}
	defer rows.Close()

	trend := make([]models.DayMacros, 0, days)
	for rows.Next() {
		var d models.DayMacros
		if err := rows.Scan(&d.Date, &d.Day, &d.Calories, &d.Protein, &d.Carbs, &d.Fat); err != nil {
			return nil, fmt.Errorf("failed to scan macro trend: %w", err)
		}
		trend = append(trend, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate macro trend: %w", err)
	}
	return trend, nil
}

const goalColumns = `calories, protein, carbs, fat, to_char(date_from, 'YYYY-MM-DD'), to_char(date_to, 'YYYY-MM-DD')`

func scanGoal(row rowScanner) (models.MacroGoal, error) {
	var g models.MacroGoal
	err := row.Scan(&g.Calories, &g.Protein, &g.Carbs, &g.Fat, &g.DateFrom, &g.DateTo)
	return g, err
}

// GetCurrentGoal returns the open goal. If several are open the newest wins.
func (s *Store) GetCurrentGoal(ctx context.Context, userID uuid.UUID) (models.MacroGoal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+`
		 FROM macro_goals
		 WHERE user_id = $1 AND date_to IS NULL
		 ORDER BY date_from DESC, id DESC
		 LIMIT 1`,
		userID,
	))
	if err != nil {
		return models.MacroGoal{}, fmt.Errorf("failed to get current goal: %w", notFound(err))
	}
	return g, nil
}

// SetGoal closes the open goal as of today and opens a new one.
func (s *Store) SetGoal(ctx context.Context, userID uuid.UUID, goal models.MacroTotals) (models.MacroGoal, error) {
	var created models.MacroGoal

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE macro_goals SET date_to = current_date
			 WHERE user_id = $1 AND date_to IS NULL`,
			userID,
		); err != nil {
			return fmt.Errorf("failed to close current goal: %w", err)
		}

		var err error
		created, err = scanGoal(tx.QueryRowContext(ctx,
			`INSERT INTO macro_goals (user_id, calories, protein, carbs, fat, date_from)
			 VALUES ($1, $2, $3, $4, $5, current_date)
			 RETURNING `+goalColumns,
			userID, goal.Calories, goal.Protein, goal.Carbs, goal.Fat,
		))
		if err != nil {
			return fmt.Errorf("failed to insert goal: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.MacroGoal{}, err
	}
	return created, nil
}
