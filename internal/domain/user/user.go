package user

import (
	"errors"
	"strings"

	"campusmarket/internal/domain/shared/ids"
)

var (
	ErrIDRequired    = errors.New("user: id is required")
	ErrEmailRequired = errors.New("user: email is required")
	ErrNameRequired  = errors.New("user: name is required")
)

// Identity is the signed-in user as returned by the auth endpoints.
type Identity struct {
	ID    ids.ID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (i Identity) Validate() error {
	if i.ID.IsZero() {
		return ErrIDRequired
	}
	return nil
}

// DisplayName falls back to the email and then to a generic label.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	if email := strings.TrimSpace(i.Email); email != "" {
		return email
	}
	return "User"
}

// Credentials carry login or registration input.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalized trims the name and lowercases the email.
func (c Credentials) Normalized() Credentials {
	return Credentials{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.ToLower(strings.TrimSpace(c.Email)),
		Password: c.Password,
	}
}

func (c Credentials) ValidateLogin() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmailRequired
	}
	return nil
}

func (c Credentials) ValidateRegister() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return c.ValidateLogin()
}
