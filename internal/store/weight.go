package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

// UpsertWeight writes the measurement for the day, replacing an existing one.
func (s *Store) UpsertWeight(ctx context.Context, e models.WeightEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weight (user_id, measured_at, weight, unit)
		 VALUES ($1, $2::date, $3, $4)
		 ON CONFLICT (user_id, measured_at)
		 DO UPDATE SET weight = EXCLUDED.weight, unit = EXCLUDED.unit`,
		e.UserID, models.FormatDate(e.MeasuredAt), e.Weight, e.Unit,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weight: %w", err)
	}
	return nil
}

// GetWeightTrend returns measurements from the trailing days, oldest first.
func (s *Store) GetWeightTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.WeightPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_char(measured_at, 'YYYY-MM-DD'), weight, unit
		 FROM weight
		 WHERE user_id = $1 AND measured_at > current_date - $2::int
		 ORDER BY measured_at`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get weight trend: %w", err)
	}
	defer rows.Close()

	points := make([]models.WeightPoint, 0)
	for rows.Next() {
		var p models.WeightPoint
		if err := rows.Scan(&p.Date, &p.Weight, &p.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weight: %w", err)
	}
	return points, nil
}
