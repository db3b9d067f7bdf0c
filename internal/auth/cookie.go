package auth

import (
	"net/http"
	"time"
)

// CookieHelper writes and clears the session cookie.
type CookieHelper struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func NewCookieHelper(name string, secure bool, ttl time.Duration) *CookieHelper {
	return &CookieHelper{Name: name, Secure: secure, TTL: ttl}
}

// SetSession stores the opaque token in an HttpOnly, SameSite=Lax cookie.
func (c *CookieHelper) SetSession(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieHelper) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the session token from the request, or "" when absent.
func (c *CookieHelper) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
