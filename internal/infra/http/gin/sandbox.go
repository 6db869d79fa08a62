package ginserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	authsvc "campusmarket/internal/app/services/auth"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/infra/obs"
	"campusmarket/internal/infra/security"
	"campusmarket/internal/infra/storage/memory"
)

// Sandbox is an in-memory marketplace server for local demos and tests.
// All state is lost when the process exits.
type Sandbox struct {
	Router   *gin.Engine
	Handlers Handlers
	Users    *memory.UserRepository
	Listings *memory.ListingRepository
	Messages *memory.MessageRepository
	Auth     *authsvc.Service

	started time.Time
	seeded  atomic.Bool
}

func NewSandbox(env string, logger *slog.Logger) *Sandbox {
	users := memory.NewUserRepository()
	listingRepo := memory.NewListingRepository()
	messageRepo := memory.NewMessageRepository()
	auth := &authsvc.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:    security.RandomTokenGenerator{},
		Logger:    logger,
	}
	handlers := Handlers{
		Auth:    AuthHandler{Service: auth, Logger: logger},
		Listing: ListingHandler{Listings: listingRepo, Logger: logger},
		Chat: ChatHandler{
			Messages: messageRepo,
			Listings: listingRepo,
			Names:    users.Name,
			Logger:   logger,
		},
		AuthMiddleware: AuthMiddleware{Service: auth, Logger: logger}.Handle,
	}
	sandbox := &Sandbox{
		Handlers: handlers,
		Users:    users,
		Listings: listingRepo,
		Messages: messageRepo,
		Auth:     auth,
		started:  time.Now(),
	}
	sandbox.Router = NewRouter(env, obs.Middleware{Logger: logger}, sandbox.Health(), handlers)
	return sandbox
}

// Health reports readiness together with the current catalog counters.
func (s *Sandbox) Health() obs.HealthHandlers {
	return obs.HealthHandlers{
		Ready:   func() error { return nil },
		Stats:   s.Stats,
		Started: s.started,
	}
}

func (s *Sandbox) Stats() obs.SandboxStats {
	stats := obs.SandboxStats{
		Users:    s.Users.Len(),
		Messages: s.Messages.Len(),
		Seeded:   s.seeded.Load(),
	}
	if items, err := s.Listings.List(context.Background()); err == nil {
		stats.Listings = len(items)
	}
	return stats
}

// Seed stores fixture listings under fresh ids.
func (s *Sandbox) Seed(ctx context.Context, items []listings.Listing) error {
	for _, item := range items {
		if _, err := s.Listings.Create(ctx, item); err != nil {
			return fmt.Errorf("seed listing %q: %w", item.Title, err)
		}
	}
	s.seeded.Store(true)
	return nil
}
