package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

type Options struct {
	Interval         time.Duration
	OptimisticAppend bool
	Logger           *slog.Logger
	Metrics          Recorder
	// OnChange fires after any thread or inbox state change.
	OnChange func()
}

// Messenger wires the chat components around one session.
type Messenger struct {
	Resolver  Resolver
	Thread    *ThreadStore
	Inbox     *InboxAggregator
	Reads     ReadStateCommitter
	Scheduler *RefreshScheduler

	session SessionEvents
	logger  *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
	// owner is the user the chat state was loaded for.
	owner ids.ID
}

func NewMessenger(api API, sess SessionEvents, opts Options) *Messenger {
	inbox := NewInboxAggregator(api, sess, InboxOptions{
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		OnChange: opts.OnChange,
	})
	return &Messenger{
		Resolver: Resolver{Session: sess},
		Thread: NewThreadStore(api, ThreadOptions{
			OptimisticAppend: opts.OptimisticAppend,
			Logger:           opts.Logger,
			Metrics:          opts.Metrics,
			OnChange:         opts.OnChange,
		}),
		Inbox:     inbox,
		Reads:     ReadStateCommitter{API: api, Inbox: inbox, Logger: opts.Logger},
		Scheduler: NewRefreshScheduler(inbox, SchedulerConfig{Interval: opts.Interval, Logger: opts.Logger}),
		session:   sess,
		logger:    opts.Logger,
	}
}

// Start clears chat state on sign-out and runs the inbox refresh loop while
// signed in.
func (m *Messenger) Start(ctx context.Context) {
	m.mu.Lock()
	if m.unsubscribe == nil {
		if current, ok := m.session.Current(); ok {
			m.owner = current.ID
		}
		m.unsubscribe = m.session.Subscribe(m.onSessionEvent)
	}
	m.mu.Unlock()
	m.Scheduler.Attach(ctx, m.session)
}

// onSessionEvent drops chat state on sign-out and when a sign-in replaces
// the user without one.
func (m *Messenger) onSessionEvent(evt session.Event) {
	m.mu.Lock()
	previous := m.owner
	switch evt.Kind {
	case session.SignedOut:
		m.owner = ""
	case session.SignedIn:
		m.owner = evt.User.ID
	}
	m.mu.Unlock()

	if evt.Kind == session.SignedIn && (previous.IsZero() || previous == evt.User.ID) {
		return
	}
	if m.logger != nil {
		m.logger.Debug("chat state reset", "event", evt.Kind.String())
	}
	m.Thread.Close()
	m.Inbox.Reset()
}

func (m *Messenger) Close() {
	m.Scheduler.Close()
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// OpenListingChat opens the buyer's thread with the listing's seller.
func (m *Messenger) OpenListingChat(ctx context.Context, listing listings.Listing) (ThreadState, error) {
	conv, err := m.Resolver.Resolve(listing)
	if err != nil {
		return ThreadState{}, err
	}
	m.Thread.Open(conv)
	return m.Thread.Load(ctx)
}

// OpenInboxEntry opens the selected row's thread and marks it read. The
// thread is loaded even when the read commit fails.
func (m *Messenger) OpenInboxEntry(ctx context.Context, entry chat.InboxEntry) (ThreadState, error) {
	conv, err := m.Resolver.FromInboxEntry(entry)
	if err != nil {
		return ThreadState{}, err
	}
	m.Thread.Open(conv)
	if err := m.Reads.MarkRead(ctx, conv); err != nil && m.logger != nil {
		m.logger.Warn("inbox refresh after mark read failed", "error", err)
	}
	return m.Thread.Load(ctx)
}

func (m *Messenger) Send(ctx context.Context, text string) (bool, error) {
	return m.Thread.Send(ctx, text)
}

func (m *Messenger) CloseThread() {
	m.Thread.Close()
}

// RefreshInbox loads the inbox on demand, e.g. when the inbox view opens.
func (m *Messenger) RefreshInbox(ctx context.Context) (InboxState, error) {
	return m.Inbox.Load(ctx)
}
