package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WeightStore persists body weight measurements, one per user and day.
type WeightStore interface {
	UpsertWeight(ctx context.Context, entry WeightEntry) error
	GetWeightTrend(ctx context.Context, userID uuid.UUID, days int) ([]WeightPoint, error)
}

// DefaultWeightUnit is used when a measurement omits its unit.
const DefaultWeightUnit = "lb"

// DefaultWeightDays is the trailing window of the weight trend.
const DefaultWeightDays = 14

// WeightEntry is a single day's measurement.
type WeightEntry struct {
	UserID     uuid.UUID
	MeasuredAt time.Time
	Weight     float64
	Unit       string
}

// WeightPoint is one point of the weight chart.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}
