// Package tracking is the food-tracking service: the per-day food log, recent
// foods and the food catalog.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

// MaxRecentLimit caps the recent-foods list.
const MaxRecentLimit = 50

// CalorieWarning is attached to catalog writes that fail the 4/4/9 check.
const CalorieWarning = "calories differ from 4*carbs + 4*protein + 9*fat by more than 20%"

// Service implements food logging and catalog operations over the stores.
type Service struct {
	foods    models.FoodStore
	tracking models.TrackingStore
	logger   *logger.Logger
}

// NewService returns a tracking service.
func NewService(foods models.FoodStore, tracking models.TrackingStore, logger *logger.Logger) *Service {
	return &Service{
		foods:    foods,
		tracking: tracking,
		logger:   logger,
	}
}

// CatalogResult is a stored catalog item plus an optional soft-check warning.
type CatalogResult struct {
	Food    models.Food `json:"food"`
	Warning string      `json:"warning,omitempty"`
}

// LogFood snapshots catalog food foodID into the user's log for date and meal.
func (s *Service) LogFood(ctx context.Context, userID uuid.UUID, meal models.Meal, date time.Time, foodID int64) (models.FoodLogEntry, error) {
	verr := models.NewValidationError()
	if !meal.Valid() {
		verr.Add("meal", "must be between 0 and 3")
	}
	if foodID <= 0 {
		verr.Add("foodItem", "must reference a catalog food")
	}
	if date.IsZero() {
		verr.Add("date", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return models.FoodLogEntry{}, err
	}

	entry, err := s.tracking.LogFood(ctx, models.NewFoodLogEntry{
		UserID:     userID,
		FoodID:     foodID,
		Meal:       meal,
		RecordedAt: date,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			verr.Add("foodItem", "unknown food")
			return models.FoodLogEntry{}, verr
		}
		s.logger.Error("Tracking service: failed to log food",
			"user_id", userID,
			"food_id", foodID,
			"error", err.Error())
		return models.FoodLogEntry{}, fmt.Errorf("failed to log food: %w", err)
	}

	s.logger.Debug("Tracking service: food logged",
		"user_id", userID,
		"entry_id", entry.ID,
		"meal", meal.String())
	return entry, nil
}

func (s *Service) GetFoodLog(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.FoodLogEntry, error) {
	entries, err := s.tracking.GetFoodLog(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get food log: %w", err)
	}
	return entries, nil
}

// RemoveFood deletes the user's entry. Entries that are missing or owned by
// someone else are silently skipped.
func (s *Service) RemoveFood(ctx context.Context, userID uuid.UUID, entryID int64) error {
	n, err := s.tracking.RemoveFood(ctx, userID, entryID)
	if err != nil {
		s.logger.Error("Tracking service: failed to remove food",
			"user_id", userID,
			"entry_id", entryID,
			"error", err.Error())
		return fmt.Errorf("failed to remove food: %w", err)
	}
	if n == 0 {
		s.logger.Debug("Tracking service: nothing to remove",
			"user_id", userID,
			"entry_id", entryID)
	}
	return nil
}

// RecentFoods returns the latest snapshot of each distinct food, newest first.
// A nil meal means all meals. limit is clamped to 1..MaxRecentLimit with
// models.DefaultRecentLimit for zero.
func (s *Service) RecentFoods(ctx context.Context, userID uuid.UUID, meal *models.Meal, limit int) ([]models.RecentFood, error) {
	switch {
	case limit <= 0:
		limit = models.DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	recent, err := s.tracking.GetRecentFoods(ctx, userID, meal, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent foods: %w", err)
	}
	return recent, nil
}

// FindFoods is a case-insensitive substring search over name and brand.
func (s *Service) FindFoods(ctx context.Context, text string) ([]models.Food, error) {
	foods, err := s.foods.SearchFoods(ctx, text, models.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	return foods, nil
}

func (s *Service) FoodByBarcode(ctx context.Context, barcode string) (models.Food, error) {
	return s.foods.GetFoodByBarcode(ctx, barcode)
}

func (s *Service) AddFood(ctx context.Context, in models.FoodInput) (CatalogResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return CatalogResult{}, err
	}

	food, err := s.foods.CreateFood(ctx, in)
	if err != nil {
		return CatalogResult{}, s.catalogError("create", err)
	}

	s.logger.Info("Tracking service: catalog food added", "food_id", food.ID)
	return withWarning(food), nil
}

// UpdateFood edits a catalog item. Already logged entries are not touched.
func (s *Service) UpdateFood(ctx context.Context, id int64, in models.FoodInput) (CatalogResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return CatalogResult{}, err
	}

	food, err := s.foods.UpdateFood(ctx, id, in)
	if err != nil {
		return CatalogResult{}, s.catalogError("update", err)
	}

	s.logger.Info("Tracking service: catalog food updated", "food_id", food.ID)
	return withWarning(food), nil
}

// FoodLogRange returns the user's entries between from and to inclusive.
func (s *Service) FoodLogRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.FoodLogEntry, error) {
	entries, err := s.tracking.GetFoodLogRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get food log range: %w", err)
	}
	return entries, nil
}

func (s *Service) catalogError(op string, err error) error {
	var conflict *models.ConflictError
	if errors.As(err, &conflict) || errors.Is(err, models.ErrNotFound) {
		return err
	}
	s.logger.Error("Tracking service: catalog write failed",
		"op", op,
		"error", err.Error())
	return fmt.Errorf("failed to %s food: %w", op, err)
}

func withWarning(food models.Food) CatalogResult {
	res := CatalogResult{Food: food}
	if !food.CaloriesConsistent() {
		res.Warning = CalorieWarning
	}
	return res
}
