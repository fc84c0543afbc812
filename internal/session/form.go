package session

import (
	"strings"

	"github.com/cuida-app/cuida/internal/validation"
)

// LoginForm holds the credentials typed by the caregiver.
type LoginForm struct {
	Username string `validate:"notblank,min=2"`
	Password string `validate:"min=3"`
}

// Validate checks the credentials before any network call.
func (f LoginForm) Validate() error {
	return validation.Struct(f.normalized(), map[string]string{
		"username": "username must have at least 2 characters",
		"password": "password must have at least 3 characters",
	})
}

func (f LoginForm) normalized() LoginForm {
	f.Username = strings.TrimSpace(f.Username)
	return f
}

// RegisterForm is the account creation form. Email is optional.
type RegisterForm struct {
	Name     string `validate:"notblank,min=2"`
	Username string `validate:"notblank,min=2"`
	Email    string `validate:"omitempty,email"`
	Password string `validate:"min=3"`
	Confirm  string `validate:"eqfield=Password"`
}

// Validate checks the form before any network call.
func (f RegisterForm) Validate() error {
	return validation.Struct(f.normalized(), map[string]string{
		"name":     "name must have at least 2 characters",
		"username": "username must have at least 2 characters",
		"email":    "enter a valid e-mail address",
		"password": "password must have at least 3 characters",
		"confirm":  "passwords do not match",
	})
}

func (f RegisterForm) normalized() RegisterForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return f
}
