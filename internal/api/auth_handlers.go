package api

import (
	"errors"
	"net/http"

	"github.com/nutrilog-io/nutrilog/internal/auth"
	"github.com/nutrilog-io/nutrilog/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User models.PublicUser `json:"user"`
}

type meResponse struct {
	User        *models.PublicUser `json:"user"`
	Permissions []string           `json:"permissions"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeError(w, r, err)
		return
	}

	user, err := api.services.Auth.Register(r.Context(), in)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	api.ok(w, http.StatusCreated, userResponse{User: user.Public()})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		api.writeError(w, r, err)
		return
	}

	res, err := api.services.Auth.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	api.cookies.SetSession(w, res.Token, res.ExpiresAt)
	api.ok(w, http.StatusOK, userResponse{User: res.User.Public()})
}

// LogoutHandler deletes the session best-effort and always clears the cookie.
func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.sessions.DestroySession(r.Context(), api.cookies.Token(r)); err != nil {
		api.logger.Warn("API: failed to delete session on logout", "error", err.Error())
	}

	api.cookies.Clear(w)
	api.okMessage(w, "Signed out")
}

// MeHandler reports the signed-in user, or null. It always answers 200.
func (api *Api) MeHandler(w http.ResponseWriter, r *http.Request) {
	resp := meResponse{Permissions: []string{}}

	token := api.cookies.Token(r)
	user, err := api.sessions.CurrentUser(r.Context(), token)
	switch {
	case err == nil:
		public := user.Public()
		resp.User = &public
	case errors.Is(err, models.ErrUnauthenticated):
		if token != "" {
			api.cookies.Clear(w)
		}
	default:
		api.logger.Error("API: failed to resolve session", "error", err.Error())
	}

	api.ok(w, http.StatusOK, resp)
}
