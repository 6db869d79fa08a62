package api

import (
	"context"
	"net/http"

	"campusmarket/internal/domain/user"
)

// AuthResult is the login and register response.
type AuthResult struct {
	Token string        `json:"token"`
	User  user.Identity `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds user.Credentials) (AuthResult, error) {
	creds = creds.Normalized()
	if err := creds.ValidateLogin(); err != nil {
		return AuthResult{}, err
	}
	var out AuthResult
	req := loginRequest{Email: creds.Email, Password: creds.Password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, creds user.Credentials) (AuthResult, error) {
	creds = creds.Normalized()
	if err := creds.ValidateRegister(); err != nil {
		return AuthResult{}, err
	}
	var out AuthResult
	req := registerRequest{Name: creds.Name, Email: creds.Email, Password: creds.Password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (user.Identity, error) {
	var out user.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return user.Identity{}, err
	}
	return out, nil
}
