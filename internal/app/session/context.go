// Package session holds the signed-in identity and broadcasts sign-in and
// sign-out transitions to the components that depend on it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"campusmarket/internal/domain/user"
)

// Storage keys shared with the browser client.
const (
	TokenKey = "cmp_token_v1"
	UserKey  = "cmp_user_v1"
)

var (
	ErrTokenRequired = errors.New("session: token is required")
	ErrNotSignedIn   = errors.New("session: not signed in")
)

// Store is durable local storage. Writes must be synchronous.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	User user.Identity
}

// Context is the process-wide session. It is only mutated by SignIn and
// SignOut, and every mutation is written through to the Store.
type Context struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *user.Identity
	token   string

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

func New(store Store, logger *slog.Logger) *Context {
	return &Context{
		store:  store,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
}

// Restore loads a previously persisted session. A missing or unreadable
// entry leaves the context signed out. No event is emitted.
func (c *Context) Restore() (bool, error) {
	if c.store == nil {
		return false, nil
	}
	token, ok, err := c.store.Get(TokenKey)
	if err != nil {
		return false, fmt.Errorf("session: read token: %w", err)
	}
	if !ok || len(token) == 0 {
		return false, nil
	}
	raw, ok, err := c.store.Get(UserKey)
	if err != nil {
		return false, fmt.Errorf("session: read user: %w", err)
	}
	if !ok {
		return false, nil
	}
	var identity user.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		if c.logger != nil {
			c.logger.Warn("persisted user unreadable, ignoring", "error", err)
		}
		return false, nil
	}
	if identity.Validate() != nil {
		return false, nil
	}

	c.mu.Lock()
	c.current = &identity
	c.token = string(token)
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("session restored", "user_id", identity.ID)
	}
	return true, nil
}

// Current returns the signed-in identity.
func (c *Context) Current() (user.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return user.Identity{}, false
	}
	return *c.current, true
}

// Token returns the bearer credential or "" when signed out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Context) SignIn(identity user.Identity, token string) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if token == "" {
		return ErrTokenRequired
	}
	if c.store != nil {
		raw, err := json.Marshal(identity)
		if err != nil {
			return err
		}
		if err := c.store.Set(TokenKey, []byte(token)); err != nil {
			return fmt.Errorf("session: persist token: %w", err)
		}
		if err := c.store.Set(UserKey, raw); err != nil {
			return fmt.Errorf("session: persist user: %w", err)
		}
	}

	c.mu.Lock()
	c.current = &identity
	c.token = token
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("signed in", "user_id", identity.ID)
	}
	c.publish(Event{Kind: SignedIn, User: identity})
	return nil
}

// SignOut clears the session. Signing out twice is a no-op.
func (c *Context) SignOut() error {
	c.mu.Lock()
	previous := c.current
	c.current = nil
	c.token = ""
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(TokenKey); err != nil {
			return fmt.Errorf("session: clear token: %w", err)
		}
		if err := c.store.Delete(UserKey); err != nil {
			return fmt.Errorf("session: clear user: %w", err)
		}
	}
	if previous == nil {
		return nil
	}
	if c.logger != nil {
		c.logger.Info("signed out", "user_id", previous.ID)
	}
	c.publish(Event{Kind: SignedOut, User: *previous})
	return nil
}

// Subscribe registers fn for future transitions and returns a function that
// removes it. Handlers run synchronously on the goroutine that caused the
// transition.
func (c *Context) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Context) publish(evt Event) {
	c.subMu.Lock()
	handlers := make([]func(Event), 0, len(c.subs))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.subs[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	c.subMu.Unlock()
	for _, fn := range handlers {
		fn(evt)
	}
}
