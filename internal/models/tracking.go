package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TrackingStore persists the food log.
type TrackingStore interface {
	// LogFood snapshots the catalog food into a new entry and returns it joined
	// with its presentation fields, atomically.
	LogFood(ctx context.Context, entry NewFoodLogEntry) (FoodLogEntry, error)
	GetFoodLog(ctx context.Context, userID uuid.UUID, date time.Time) ([]FoodLogEntry, error)
	GetFoodLogRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]FoodLogEntry, error)
	// RemoveFood deletes the entry only when it belongs to userID and returns
	// the number of rows removed.
	RemoveFood(ctx context.Context, userID uuid.UUID, entryID int64) (int64, error)
	GetRecentFoods(ctx context.Context, userID uuid.UUID, meal *Meal, limit int) ([]RecentFood, error)
}

// NewFoodLogEntry identifies what to log. Macro values are copied from the
// catalog row at insert time.
type NewFoodLogEntry struct {
	UserID     uuid.UUID
	FoodID     int64
	Meal       Meal
	RecordedAt time.Time
}

// FoodLogEntry is a tracked food with its snapshot macros.
type FoodLogEntry struct {
	ID          int64   `json:"id"`
	FoodID      int64   `json:"food_id"`
	Meal        Meal    `json:"meal"`
	MealName    string  `json:"meal_name"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	RecordedAt  string  `json:"recorded_at"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Protein     float64 `json:"protein"`
	Calories    float64 `json:"calories"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
}

// RecentFood is the latest logged snapshot of one distinct food.
type RecentFood struct {
	Food
	LastUsed    string `json:"last_used"`
	LastEntryID int64  `json:"last_entry_id"`
	Meal        Meal   `json:"meal"`
	MealName    string `json:"meal_name"`
}

// DefaultRecentLimit caps GetRecentFoods when the caller gives no limit.
const DefaultRecentLimit = 10

// SearchLimit caps catalog text search.
const SearchLimit = 10
