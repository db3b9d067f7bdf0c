package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nutrilog-io/nutrilog/internal/models"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
	MaxNameLength     = 120
	MinHandleLength   = 3
	MaxHandleLength   = 50
)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) < 255
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Handle   string `json:"user_id"`
}

func (in *RegisterInput) normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Handle = strings.TrimSpace(in.Handle)
}

func (in RegisterInput) validate() error {
	verr := models.NewValidationError()

	if !ValidateEmail(in.Email) {
		verr.Add("email", "must be a valid email address")
	}

	if n := utf8.RuneCountInString(in.Name); n == 0 || n > MaxNameLength {
		verr.Add("name", "must be between 1 and 120 characters")
	}

	if !ValidatePassword(in.Password) {
		verr.Add("password", "must be between 8 and 72 characters")
	}

	if in.Handle != "" {
		n := len(in.Handle)
		if n < MinHandleLength || n > MaxHandleLength || !handleRegex.MatchString(in.Handle) {
			verr.Add("user_id", "must be 3 to 50 letters, digits, dots, dashes or underscores")
		}
	}

	return verr.OrNil()
}
