package models

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Meal is the small integer enum stored with every log entry.
type Meal int16

const (
	MealBreakfast Meal = iota
	MealLunch
	MealDinner
	MealSnack
)

var mealNames = [...]string{"breakfast", "lunch", "dinner", "snack"}

// Valid reports whether m is one of the four meals.
func (m Meal) Valid() bool {
	return m >= MealBreakfast && m <= MealSnack
}

func (m Meal) String() string {
	if !m.Valid() {
		return "meal(" + strconv.Itoa(int(m)) + ")"
	}
	return mealNames[m]
}

// ParseMeal accepts either a meal name or its number.
func ParseMeal(s string) (Meal, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range mealNames {
		if s == name {
			return Meal(i), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Meal(n).Valid() {
		return 0, fmt.Errorf("unknown meal %q", s)
	}
	return Meal(n), nil
}

// UnmarshalJSON accepts 0..3 or a meal name.
func (m *Meal) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if !Meal(n).Valid() {
			return fmt.Errorf("meal must be between 0 and 3, got %d", n)
		}
		*m = Meal(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("meal must be a number or a name")
	}
	parsed, err := ParseMeal(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FoodStore defines persistence operations for the food catalog.
type FoodStore interface {
	CreateFood(ctx context.Context, input FoodInput) (Food, error)
	UpdateFood(ctx context.Context, id int64, input FoodInput) (Food, error)
	GetFood(ctx context.Context, id int64) (Food, error)
	GetFoodByBarcode(ctx context.Context, barcode string) (Food, error)
	SearchFoods(ctx context.Context, text string, limit int) ([]Food, error)
}

// Food is a catalog item. Macros are per one serving of ServingSize ServingUnit.
type Food struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Barcode     *string `json:"barcode,omitempty"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
}

// CalorieTolerance is the accepted relative gap between stated calories and
// the 4/4/9 estimate from the macros.
const CalorieTolerance = 0.20

// CaloriesConsistent reports whether Calories is within CalorieTolerance of
// 4*carbs + 4*protein + 9*fat.
func (f Food) CaloriesConsistent() bool {
	return caloriesConsistent(f.Calories, f.Protein, f.Carbs, f.Fat)
}

func caloriesConsistent(calories, protein, carbs, fat float64) bool {
	expected := 4*carbs + 4*protein + 9*fat
	if expected == 0 {
		return calories == 0
	}
	return math.Abs(calories-expected) <= CalorieTolerance*expected
}

// DefaultBrand is stored when a new catalog item has no brand.
const DefaultBrand = "Generic"

// FoodInput is the payload for creating or editing a catalog item.
type FoodInput struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Barcode     string  `json:"barcode"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
}

// Normalize trims text fields and fills the default brand.
func (in *FoodInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.ServingUnit = strings.TrimSpace(in.ServingUnit)
	if in.Brand == "" {
		in.Brand = DefaultBrand
	}
}

// Validate checks required fields and non-negative numbers.
func (in FoodInput) Validate() error {
	verr := NewValidationError()
	if in.Name == "" {
		verr.Add("name", "is required")
	} else if len(in.Name) > 200 {
		verr.Add("name", "must be at most 200 characters")
	}
	if in.ServingUnit == "" {
		verr.Add("serving_unit", "is required")
	}
	if in.ServingSize <= 0 {
		verr.Add("serving_size", "must be greater than zero")
	}
	for field, v := range map[string]float64{
		"calories": in.Calories,
		"protein":  in.Protein,
		"carbs":    in.Carbs,
		"fat":      in.Fat,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			verr.Add(field, "must be a non-negative number")
		}
	}
	return verr.OrNil()
}

// CaloriesConsistent applies the same soft check as Food.CaloriesConsistent.
func (in FoodInput) CaloriesConsistent() bool {
	return caloriesConsistent(in.Calories, in.Protein, in.Carbs, in.Fat)
}

// BarcodeOrNil returns nil for an empty barcode so it is stored as NULL.
func (in FoodInput) BarcodeOrNil() *string {
	if in.Barcode == "" {
		return nil
	}
	b := in.Barcode
	return &b
}
