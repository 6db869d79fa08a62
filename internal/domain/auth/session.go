// Package auth models the bearer sessions the sandbox issues on register and
// login. A session slides forward while its client keeps using it.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusmarket/internal/domain/shared/ids"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is the opaque bearer value a client persists between runs.
type Token string

type Session struct {
	Token    Token
	UserID   ids.ID
	IssuedAt time.Time
	LastSeen time.Time
	// ExpiresAt moves to LastSeen+TTL whenever Touch renews the session.
	ExpiresAt time.Time
	TTL       time.Duration
}

func NewSession(token Token, userID ids.ID, ttl time.Duration, now time.Time) (*Session, error) {
	token = Token(strings.TrimSpace(string(token)))
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case userID.IsZero():
		return nil, ErrUserRequired
	case ttl <= 0:
		return nil, ErrTTLInvalid
	}
	now = normalize(now)
	return &Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
		TTL:       ttl,
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(normalize(at))
}

// Remaining is the time left before expiry, zero once expired.
func (s *Session) Remaining(at time.Time) time.Duration {
	return max(0, s.ExpiresAt.Sub(normalize(at)))
}

// Touch records a use at at. Once less than half the TTL remains the expiry
// is pushed to at+TTL. It reports whether the expiry moved, so stores only
// rewrite renewed sessions. Expired sessions are never renewed.
func (s *Session) Touch(at time.Time) bool {
	at = normalize(at)
	if s.Expired(at) {
		return false
	}
	s.LastSeen = at
	if s.TTL <= 0 || s.Remaining(at) >= s.TTL/2 {
		return false
	}
	s.ExpiresAt = at.Add(s.TTL)
	return true
}

func normalize(at time.Time) time.Time {
	if at.IsZero() {
		at = time.Now()
	}
	return at.UTC()
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
}
