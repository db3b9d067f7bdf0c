package models

import (
	"context"

	"github.com/google/uuid"
)

// MacroStore serves the dashboard aggregates and macro goals.
type MacroStore interface {
	GetTodayMacros(ctx context.Context, userID uuid.UUID) (MacroTotals, error)
	GetMacroTrend(ctx context.Context, userID uuid.UUID, days int) ([]DayMacros, error)
	// GetCurrentGoal returns the open goal or ErrNotFound.
	GetCurrentGoal(ctx context.Context, userID uuid.UUID) (MacroGoal, error)
	// SetGoal closes the open goal and starts a new one today.
	SetGoal(ctx context.Context, userID uuid.UUID, goal MacroTotals) (MacroGoal, error)
}

// MacroTrendDays is the width of the macro trend window.
const MacroTrendDays = 7

// MacroTotals holds summed or targeted macros. Fields are never null.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DayMacros is one calendar day of the macro trend.
type DayMacros struct {
	Date     string  `json:"date"`
	Day      string  `json:"day"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MacroGoal is a daily target. The current goal has no DateTo.
type MacroGoal struct {
	MacroTotals
	DateFrom string  `json:"date_from,omitempty"`
	DateTo   *string `json:"date_to,omitempty"`
}

// HomePayload is the dashboard aggregate.
type HomePayload struct {
	Weight []WeightPoint `json:"weight"`
	Macros []DayMacros   `json:"macros"`
	Today  MacroTotals   `json:"today"`
	Goals  MacroGoal     `json:"goals"`
}
