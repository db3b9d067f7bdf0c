// Package export renders a user's food log as CSV and publishes it to object
// storage behind a presigned URL.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

// MaxRangeDays is the widest export window, inclusive of both ends.
const MaxRangeDays = 366

const contentType = "text/csv"

var header = []string{
	"date", "meal", "food", "brand", "serving_size", "serving_unit",
	"calories", "protein", "carbs", "fat",
}

// LogSource provides the entries to export.
type LogSource interface {
	FoodLogRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.FoodLogEntry, error)
}

type Service struct {
	source  LogSource
	storage models.ObjectStorage
	expiry  time.Duration
	logger  *logger.Logger
}

// NewService returns an exporter. A nil storage disables exports.
func NewService(source LogSource, storage models.ObjectStorage, expiry time.Duration, logger *logger.Logger) *Service {
	return &Service{
		source:  source,
		storage: storage,
		expiry:  expiry,
		logger:  logger,
	}
}

// Result points at the uploaded file.
type Result struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Enabled reports whether a storage backend is configured.
func (s *Service) Enabled() bool {
	return s.storage != nil
}

// Export writes the user's entries between from and to as CSV and returns a
// presigned link to it.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, from, to time.Time) (Result, error) {
	if !s.Enabled() {
		return Result{}, models.ErrExportDisabled
	}
	if err := validateRange(from, to); err != nil {
		return Result{}, err
	}

	entries, err := s.source.FoodLogRange(ctx, userID, from, to)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		return Result{}, fmt.Errorf("failed to render csv: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s_%s.csv", userID, models.FormatDate(from), models.FormatDate(to))
	if err := s.storage.Upload(ctx, key, &buf, contentType); err != nil {
		s.logger.Error("Export service: upload failed",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return Result{}, err
	}

	url, err := s.storage.PresignGet(ctx, key, s.expiry)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("Export service: food log exported",
		"user_id", userID,
		"rows", len(entries))
	return Result{
		URL:       url,
		Key:       key,
		Rows:      len(entries),
		ExpiresAt: time.Now().Add(s.expiry).UTC(),
	}, nil
}

func validateRange(from, to time.Time) error {
	verr := models.NewValidationError()
	switch {
	case from.IsZero():
		verr.Add("from", "is required")
	case to.IsZero():
		verr.Add("to", "is required")
	case to.Before(from):
		verr.Add("to", "must not be before from")
	case to.Sub(from) >= MaxRangeDays*24*time.Hour:
		verr.Add("to", "range must be at most 366 days")
	}
	return verr.OrNil()
}

// WriteCSV renders entries with a header row.
func WriteCSV(w io.Writer, entries []models.FoodLogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		record := []string{
			e.RecordedAt,
			e.MealName,
			e.Name,
			e.Brand,
			formatNumber(e.ServingSize),
			e.ServingUnit,
			formatNumber(e.Calories),
			formatNumber(e.Protein),
			formatNumber(e.Carbs),
			formatNumber(e.Fat),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
