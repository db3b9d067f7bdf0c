package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

const foodColumns = `id, name, brand, barcode, calories, protein, carbs, fat, serving_size, serving_unit`

func scanFood(row rowScanner) (models.Food, error) {
	var f models.Food
	err := row.Scan(&f.ID, &f.Name, &f.Brand, &f.Barcode,
		&f.Calories, &f.Protein, &f.Carbs, &f.Fat, &f.ServingSize, &f.ServingUnit)
	return f, err
}

func (s *Store) CreateFood(ctx context.Context, in models.FoodInput) (models.Food, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO foods (name, brand, barcode, calories, protein, carbs, fat, serving_size, serving_unit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+foodColumns,
		in.Name, in.Brand, in.BarcodeOrNil(), in.Calories, in.Protein, in.Carbs, in.Fat, in.ServingSize, in.ServingUnit,
	)

	f, err := scanFood(row)
	if err != nil {
		if conflict, ok := asConflict(err); ok {
			return models.Food{}, conflict
		}
		return models.Food{}, fmt.Errorf("failed to create food: %w", err)
	}
	return f, nil
}

// UpdateFood edits a catalog row. Logged entries keep their own snapshot.
func (s *Store) UpdateFood(ctx context.Context, id int64, in models.FoodInput) (models.Food, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE foods
		 SET name = $2, brand = $3, barcode = $4, calories = $5, protein = $6,
		     carbs = $7, fat = $8, serving_size = $9, serving_unit = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING `+foodColumns,
		id, in.Name, in.Brand, in.BarcodeOrNil(), in.Calories, in.Protein, in.Carbs, in.Fat, in.ServingSize, in.ServingUnit,
	)

	f, err := scanFood(row)
	if err != nil {
		if conflict, ok := asConflict(err); ok {
			return models.Food{}, conflict
		}
		return models.Food{}, fmt.Errorf("failed to update food: %w", notFound(err))
	}
	return f, nil
}

func (s *Store) GetFood(ctx context.Context, id int64) (models.Food, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = $1`, id))
	if err != nil {
		return models.Food{}, fmt.Errorf("failed to get food: %w", notFound(err))
	}
	return f, nil
}

func (s *Store) GetFoodByBarcode(ctx context.Context, barcode string) (models.Food, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE barcode = $1`, barcode))
	if err != nil {
		return models.Food{}, fmt.Errorf("failed to get food by barcode: %w", notFound(err))
	}
	return f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchFoods matches text as a case-insensitive substring of name or brand.
func (s *Store) SearchFoods(ctx context.Context, text string, limit int) ([]models.Food, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+foodColumns+`
		 FROM foods
		 WHERE name ILIKE '%' || $1 || '%'
		    OR COALESCE(brand, '') ILIKE '%' || $1 || '%'
		 ORDER BY id
		 LIMIT $2`,
		likeEscaper.Replace(text), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer rows.Close()

	foods := make([]models.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate foods: %w", err)
	}
	return foods, nil
}
