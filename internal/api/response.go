package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

const maxBodyBytes = 1 << 20

const (
	codeUnauthenticated    = "UNAUTHENTICATED"
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeValidation         = "VALIDATION_FAILED"
	codeConflict           = "CONFLICT"
	codeNotFound           = "NOT_FOUND"
	codeUnavailable        = "EXPORT_DISABLED"
	codeInternal           = "INTERNAL"
)

const unauthenticatedMessage = "You must be signed in."

// envelope is the body of every API response.
type envelope struct {
	OK      bool              `json:"ok"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
}

func (api *Api) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		api.logger.Error("API: failed to encode response", "error", err.Error())
	}
}

func (api *Api) ok(w http.ResponseWriter, status int, data any) {
	api.writeJSON(w, status, envelope{OK: true, Data: data})
}

func (api *Api) okMessage(w http.ResponseWriter, message string) {
	api.writeJSON(w, http.StatusOK, envelope{OK: true, Message: message})
}

func (api *Api) fail(w http.ResponseWriter, status int, code, message string) {
	api.writeJSON(w, status, envelope{OK: false, Code: code, Message: message})
}

func (api *Api) unauthenticated(w http.ResponseWriter, _ *http.Request) {
	api.fail(w, http.StatusUnauthorized, codeUnauthenticated, unauthenticatedMessage)
}

func (api *Api) invalid(w http.ResponseWriter, field, msg string) {
	verr := models.NewValidationError()
	verr.Add(field, msg)
	api.writeError(w, nil, verr)
}

// writeError maps service errors onto HTTP statuses. Anything unrecognised is
// a 500 whose detail is only exposed outside production.
func (api *Api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *models.ValidationError
		conflict *models.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		api.writeJSON(w, http.StatusBadRequest, envelope{
			Code:    codeValidation,
			Message: "Invalid input",
			Fields:  verr.Fields,
		})
	case errors.As(err, &conflict):
		api.writeJSON(w, http.StatusConflict, envelope{
			Code:    codeConflict,
			Message: conflict.Error(),
			Fields:  map[string]string{conflict.Field: "already exists"},
		})
	case errors.Is(err, models.ErrInvalidCredentials):
		api.fail(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, models.ErrUnauthenticated):
		api.unauthenticated(w, r)
	case errors.Is(err, models.ErrNotFound):
		api.fail(w, http.StatusNotFound, codeNotFound, "Not found")
	case errors.Is(err, models.ErrExportDisabled):
		api.fail(w, http.StatusServiceUnavailable, codeUnavailable, "Export is not configured")
	default:
		attrs := []any{"error", err.Error()}
		if r != nil {
			attrs = append(attrs, "method", r.Method, "path", r.URL.Path)
		}
		api.logger.Error("API: request failed", attrs...)

		body := envelope{Code: codeInternal, Message: "Internal server error"}
		if !api.Config.IsProduction() {
			body.Details = err.Error()
		}
		api.writeJSON(w, http.StatusInternalServerError, body)
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		verr := models.NewValidationError()
		verr.Add("body", fmt.Sprintf("invalid JSON: %v", err))
		return verr
	}
	return nil
}
