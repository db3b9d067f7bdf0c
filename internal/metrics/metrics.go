// Package metrics derives the dashboard numbers: daily macro totals and trend,
// the active macro goal and the weight trend.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

// MaxWeightDays bounds the weight trend window.
const MaxWeightDays = 365

var weightUnits = map[string]bool{"lb": true, "kg": true}

type Service struct {
	weight models.WeightStore
	macros models.MacroStore
	logger *logger.Logger
}

func NewService(weight models.WeightStore, macros models.MacroStore, logger *logger.Logger) *Service {
	return &Service{
		weight: weight,
		macros: macros,
		logger: logger,
	}
}

func (s *Service) TodayMacros(ctx context.Context, userID uuid.UUID) (models.MacroTotals, error) {
	t, err := s.macros.GetTodayMacros(ctx, userID)
	if err != nil {
		return models.MacroTotals{}, fmt.Errorf("failed to get today macros: %w", err)
	}
	return t, nil
}

// MacroTrend returns one row per day for the last models.MacroTrendDays days.
func (s *Service) MacroTrend(ctx context.Context, userID uuid.UUID) ([]models.DayMacros, error) {
	trend, err := s.macros.GetMacroTrend(ctx, userID, models.MacroTrendDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get macro trend: %w", err)
	}
	return trend, nil
}

// TodayGoals returns the active goal, or an all-zero goal when none is set.
func (s *Service) TodayGoals(ctx context.Context, userID uuid.UUID) (models.MacroGoal, error) {
	goal, err := s.macros.GetCurrentGoal(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.MacroGoal{}, nil
		}
		return models.MacroGoal{}, fmt.Errorf("failed to get goals: %w", err)
	}
	return goal, nil
}

// SetGoal replaces the active goal starting today.
func (s *Service) SetGoal(ctx context.Context, userID uuid.UUID, goal models.MacroTotals) (models.MacroGoal, error) {
	verr := models.NewValidationError()
	for field, v := range map[string]float64{
		"calories": goal.Calories,
		"protein":  goal.Protein,
		"carbs":    goal.Carbs,
		"fat":      goal.Fat,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			verr.Add(field, "must be a non-negative number")
		}
	}
	if err := verr.OrNil(); err != nil {
		return models.MacroGoal{}, err
	}

	created, err := s.macros.SetGoal(ctx, userID, goal)
	if err != nil {
		s.logger.Error("Metrics service: failed to set goal",
			"user_id", userID,
			"error", err.Error())
		return models.MacroGoal{}, fmt.Errorf("failed to set goal: %w", err)
	}

	s.logger.Info("Metrics service: goal updated", "user_id", userID)
	return created, nil
}

// WeightTrend returns measurements of the trailing days, oldest first.
// Zero days means models.DefaultWeightDays.
func (s *Service) WeightTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.WeightPoint, error) {
	if days == 0 {
		days = models.DefaultWeightDays
	}
	if days < 1 || days > MaxWeightDays {
		verr := models.NewValidationError()
		verr.Add("days", "must be between 1 and 365")
		return nil, verr
	}

	points, err := s.weight.GetWeightTrend(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get weight trend: %w", err)
	}
	return points, nil
}

// AddWeight upserts the measurement for date and returns the refreshed
// default-window trend.
func (s *Service) AddWeight(ctx context.Context, userID uuid.UUID, date time.Time, weight float64, unit string) ([]models.WeightPoint, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		unit = models.DefaultWeightUnit
	}

	verr := models.NewValidationError()
	if date.IsZero() {
		verr.Add("date", "is required")
	}
	if weight <= 0 || weight >= 10000 || math.IsNaN(weight) {
		verr.Add("weight", "must be a positive number")
	}
	if !weightUnits[unit] {
		verr.Add("unit", "must be lb or kg")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	err := s.weight.UpsertWeight(ctx, models.WeightEntry{
		UserID:     userID,
		MeasuredAt: date,
		Weight:     weight,
		Unit:       unit,
	})
	if err != nil {
		s.logger.Error("Metrics service: failed to save weight",
			"user_id", userID,
			"error", err.Error())
		return nil, fmt.Errorf("failed to save weight: %w", err)
	}

	return s.WeightTrend(ctx, userID, models.DefaultWeightDays)
}

// Home loads the four dashboard series concurrently. Any failure fails the
// whole payload.
func (s *Service) Home(ctx context.Context, userID uuid.UUID) (models.HomePayload, error) {
	var home models.HomePayload
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		home.Weight, err = s.WeightTrend(gctx, userID, models.DefaultWeightDays)
		return err
	})
	g.Go(func() error {
		var err error
		home.Macros, err = s.MacroTrend(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		home.Today, err = s.TodayMacros(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		home.Goals, err = s.TodayGoals(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Metrics service: failed to load home",
			"user_id", userID,
			"error", err.Error())
		return models.HomePayload{}, err
	}
	return home, nil
}
