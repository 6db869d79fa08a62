package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusmarket/internal/app/session"
)

// DefaultRefreshInterval matches the browser client's unread polling.
const DefaultRefreshInterval = 15 * time.Second

type SchedulerState int

const (
	SchedulerIdle SchedulerState = iota
	SchedulerActive
)

func (s SchedulerState) String() string {
	if s == SchedulerActive {
		return "active"
	}
	return "idle"
}

type SchedulerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// RefreshScheduler re-polls the inbox on a fixed interval while a session
// exists. A failed tick is retried on the next one; there is no backoff.
type RefreshScheduler struct {
	inbox    InboxLoader
	interval time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	base        context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	unsubscribe func()
}

func NewRefreshScheduler(inbox InboxLoader, cfg SchedulerConfig) *RefreshScheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{
		inbox:    inbox,
		interval: interval,
		logger:   cfg.Logger,
		base:     context.Background(),
	}
}

// Attach drives the scheduler from session transitions and starts it right
// away when a session was already restored.
func (s *RefreshScheduler) Attach(ctx context.Context, sess SessionEvents) {
	s.mu.Lock()
	if ctx != nil {
		s.base = ctx
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = sess.Subscribe(func(evt session.Event) {
		switch evt.Kind {
		case session.SignedIn:
			s.Start()
		case session.SignedOut:
			s.Stop()
		}
	})
	s.mu.Unlock()

	if _, ok := sess.Current(); ok {
		s.Start()
	}
}

// Start moves IDLE to ACTIVE. Starting an active scheduler is a no-op.
func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.run(ctx, done)
	if s.logger != nil {
		s.logger.Debug("inbox refresh started", "interval", s.interval)
	}
}

// Stop moves ACTIVE to IDLE and returns once the loop has exited, so no tick
// fires after Stop returns.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	if s.logger != nil {
		s.logger.Debug("inbox refresh stopped")
	}
}

func (s *RefreshScheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return SchedulerActive
	}
	return SchedulerIdle
}

// Close detaches from the session and stops the loop.
func (s *RefreshScheduler) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.Stop()
}

func (s *RefreshScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.inbox.Load(ctx); err != nil && ctx.Err() == nil && s.logger != nil {
				s.logger.Warn("scheduled inbox refresh failed", "error", err)
			}
		}
	}
}
