package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusmarket/internal/domain/shared/ids"
)

var (
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

// Account is a registered user as stored by the marketplace server.
type Account struct {
	Identity
	PasswordHash string
	CreatedAt    time.Time
}

// Repository assigns ids on Create.
type Repository interface {
	ByID(ctx context.Context, id ids.ID) (*Account, error)
	ByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, account *Account) error
}

type CreateParams struct {
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount validates params. The id is left for the repository.
func NewAccount(params CreateParams) (*Account, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Account{
		Identity:     Identity{Name: name, Email: email},
		PasswordHash: params.PasswordHash,
		CreatedAt:    now.UTC(),
	}, nil
}
