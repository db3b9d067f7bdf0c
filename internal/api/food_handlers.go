package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

// minSearchLength is the shortest text that reaches the catalog search.
const minSearchLength = 2

type logFoodRequest struct {
	FoodItem *struct {
		ID int64 `json:"id"`
	} `json:"foodItem"`
	Meal       *models.Meal `json:"meal"`
	Date       string       `json:"date"`
	LoggedDate string       `json:"loggedDate"`
}

type searchResponse struct {
	Seq   int64         `json:"seq"`
	Items []models.Food `json:"items"`
}

func (api *Api) LogFoodHandler(w http.ResponseWriter, r *http.Request) {
	var req logFoodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}

	verr := models.NewValidationError()
	if req.FoodItem == nil {
		verr.Add("foodItem", "is required")
	}
	if req.Meal == nil {
		verr.Add("meal", "is required")
	}
	dateStr := req.Date
	if dateStr == "" {
		dateStr = req.LoggedDate
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		verr.Add("date", "must be YYYY-MM-DD")
	}
	if err := verr.OrNil(); err != nil {
		api.writeError(w, r, err)
		return
	}

	entry, err := api.services.Tracking.LogFood(r.Context(), currentUser(r).ID, *req.Meal, date, req.FoodItem.ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusCreated, entry)
}

func (api *Api) GetFoodLogHandler(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		api.invalid(w, "date", "must be YYYY-MM-DD")
		return
	}

	entries, err := api.services.Tracking.GetFoodLog(r.Context(), currentUser(r).ID, date)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, entries)
}

// RemoveFoodHandler succeeds whether or not the entry existed for this user.
func (api *Api) RemoveFoodHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		api.invalid(w, "id", "must be a positive integer")
		return
	}

	if err := api.services.Tracking.RemoveFood(r.Context(), currentUser(r).ID, id); err != nil {
		api.writeError(w, r, err)
		return
	}
	api.okMessage(w, "Removed")
}

func (api *Api) RecentFoodsHandler(w http.ResponseWriter, r *http.Request) {
	var meal *models.Meal
	if param := chi.URLParam(r, "meal"); !strings.EqualFold(param, "all") {
		m, err := models.ParseMeal(param)
		if err != nil {
			api.invalid(w, "meal", "must be breakfast, lunch, dinner, snack, 0-3 or all")
			return
		}
		meal = &m
	}

	limit := models.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			api.invalid(w, "limit", "must be between 1 and 50")
			return
		}
		limit = n
	}

	recent, err := api.services.Tracking.RecentFoods(r.Context(), currentUser(r).ID, meal, limit)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, recent)
}

// SearchFoodsHandler echoes seq so clients can drop replies to superseded
// queries.
func (api *Api) SearchFoodsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var seq int64
	if raw := q.Get("seq"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.invalid(w, "seq", "must be an integer")
			return
		}
		seq = n
	}

	text := strings.TrimSpace(q.Get("text"))
	if len([]rune(text)) < minSearchLength {
		api.ok(w, http.StatusOK, searchResponse{Seq: seq, Items: []models.Food{}})
		return
	}

	foods, err := api.services.Tracking.FindFoods(r.Context(), text)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, searchResponse{Seq: seq, Items: foods})
}

func (api *Api) AddFoodHandler(w http.ResponseWriter, r *http.Request) {
	var in models.FoodInput
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeError(w, r, err)
		return
	}

	res, err := api.services.Tracking.AddFood(r.Context(), in)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusCreated, res)
}

func (api *Api) UpdateFoodHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		api.invalid(w, "id", "must be a positive integer")
		return
	}

	var in models.FoodInput
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeError(w, r, err)
		return
	}

	res, err := api.services.Tracking.UpdateFood(r.Context(), id, in)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, res)
}

func (api *Api) BarcodeHandler(w http.ResponseWriter, r *http.Request) {
	food, err := api.services.Tracking.FoodByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, food)
}

func (api *Api) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !api.services.Export.Enabled() {
		api.writeError(w, r, models.ErrExportDisabled)
		return
	}

	q := r.URL.Query()
	from, errFrom := models.ParseDate(q.Get("from"))
	to, errTo := models.ParseDate(q.Get("to"))
	if err := errors.Join(errFrom, errTo); err != nil {
		verr := models.NewValidationError()
		if errFrom != nil {
			verr.Add("from", "must be YYYY-MM-DD")
		}
		if errTo != nil {
			verr.Add("to", "must be YYYY-MM-DD")
		}
		api.writeError(w, r, verr)
		return
	}

	res, err := api.services.Export.Export(r.Context(), currentUser(r).ID, from, to)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, res)
}
