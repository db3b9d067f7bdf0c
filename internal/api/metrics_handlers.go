package api

import (
	"net/http"
	"strconv"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

type addWeightRequest struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

// HomeHandler returns the dashboard payload, loaded concurrently.
func (api *Api) HomeHandler(w http.ResponseWriter, r *http.Request) {
	home, err := api.services.Metrics.Home(r.Context(), currentUser(r).ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, home)
}

func (api *Api) AddWeightHandler(w http.ResponseWriter, r *http.Request) {
	var req addWeightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		api.invalid(w, "date", "must be YYYY-MM-DD")
		return
	}

	trend, err := api.services.Metrics.AddWeight(r.Context(), currentUser(r).ID, date, req.Weight, req.Unit)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, trend)
}

func (api *Api) WeightTrendHandler(w http.ResponseWriter, r *http.Request) {
	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			api.invalid(w, "days", "must be an integer")
			return
		}
		days = n
		if days == 0 {
			api.invalid(w, "days", "must be between 1 and 365")
			return
		}
	}

	trend, err := api.services.Metrics.WeightTrend(r.Context(), currentUser(r).ID, days)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, trend)
}

func (api *Api) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	goal, err := api.services.Metrics.TodayGoals(r.Context(), currentUser(r).ID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusOK, goal)
}

func (api *Api) SetGoalHandler(w http.ResponseWriter, r *http.Request) {
	var goal models.MacroTotals
	if err := decodeJSON(w, r, &goal); err != nil {
		api.writeError(w, r, err)
		return
	}

	created, err := api.services.Metrics.SetGoal(r.Context(), currentUser(r).ID, goal)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	api.ok(w, http.StatusCreated, created)
}
