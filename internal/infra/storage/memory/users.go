package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	domainauth "campusmarket/internal/domain/auth"
	"campusmarket/internal/domain/shared/ids"
	domainuser "campusmarket/internal/domain/user"
)

// UserRepository stores sandbox accounts in memory. Not suitable for production.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[ids.ID]domainuser.Account
	byEmail map[string]ids.ID
	nextID  int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[ids.ID]domainuser.Account),
		byEmail: make(map[string]ids.ID),
	}
}

// Len is the number of registered accounts.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *UserRepository) ByID(ctx context.Context, id ids.ID) (*domainuser.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if account, ok := r.byID[id]; ok {
		return &account, nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	account := r.byID[id]
	return &account, nil
}

// Create assigns the next integer id to account.
func (r *UserRepository) Create(ctx context.Context, account *domainuser.Account) error {
	if account == nil {
		return domainuser.ErrIDRequired
	}
	emailKey := strings.ToLower(strings.TrimSpace(account.Email))
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[emailKey]; ok {
		return domainuser.ErrEmailAlreadyUsed
	}
	r.nextID++
	account.ID = ids.ID(strconv.FormatInt(r.nextID, 10))
	r.byEmail[emailKey] = account.ID
	r.byID[account.ID] = *account
	return nil
}

// Name returns the display name of id, or "" when unknown.
func (r *UserRepository) Name(id ids.ID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id].Name
}

// SessionStore keeps bearer sessions in memory.
type SessionStore struct {
	mu     sync.RWMutex
	tokens map[domainauth.Token]domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{tokens: make(map[domainauth.Token]domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[session.Token] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
