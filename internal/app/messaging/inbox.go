package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusmarket/internal/domain/chat"
)

// InboxState is the last rendered inbox. On a failed load the previous
// entries stay in place and Failed/Err describe the error.
type InboxState struct {
	Entries     []chat.InboxEntry
	UnreadTotal int
	Loaded      bool
	Failed      bool
	Err         error
	UpdatedAt   time.Time
}

// Empty reports a successful load with no conversations.
func (s InboxState) Empty() bool { return s.Loaded && !s.Failed && len(s.Entries) == 0 }

// Badge renders "(N)" when there are unread messages.
func (s InboxState) Badge() string { return chat.Badge(s.UnreadTotal) }

func (s InboxState) clone() InboxState {
	s.Entries = append([]chat.InboxEntry(nil), s.Entries...)
	return s
}

type InboxOptions struct {
	Logger   *slog.Logger
	Metrics  Recorder
	OnChange func()
	Now      func() time.Time
}

// InboxAggregator fetches the user's conversations. Every successful load
// replaces the entries wholesale; concurrent loads are last-write-wins.
type InboxAggregator struct {
	api     API
	session Identity
	opts    InboxOptions

	mu    sync.Mutex
	state InboxState
	epoch uint64
}

func NewInboxAggregator(api API, session Identity, opts InboxOptions) *InboxAggregator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &InboxAggregator{api: api, session: session, opts: opts}
}

func (a *InboxAggregator) State() InboxState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Load does nothing without a session and returns the current state.
func (a *InboxAggregator) Load(ctx context.Context) (InboxState, error) {
	if a.session == nil {
		return a.State(), nil
	}
	if _, ok := a.session.Current(); !ok {
		return a.State(), nil
	}

	a.mu.Lock()
	epoch := a.epoch
	a.mu.Unlock()

	entries, err := a.api.Inbox(ctx)
	if a.opts.Metrics != nil {
		a.opts.Metrics.InboxRefresh(err == nil)
	}

	a.mu.Lock()
	if epoch != a.epoch {
		// Reset ran while the request was in flight (sign-out).
		snapshot := a.state.clone()
		a.mu.Unlock()
		return snapshot, nil
	}
	if err != nil {
		a.state.Failed = true
		a.state.Err = err
	} else {
		inbox := chat.NewInbox(entries)
		a.state = InboxState{
			Entries:     inbox.Entries,
			UnreadTotal: inbox.UnreadTotal,
			Loaded:      true,
			UpdatedAt:   a.opts.Now(),
		}
	}
	snapshot := a.state.clone()
	a.mu.Unlock()
	notify(a.opts.OnChange)

	if err != nil {
		if a.opts.Logger != nil {
			a.opts.Logger.Warn("inbox load failed", "error", err)
		}
		return snapshot, fmt.Errorf("messaging: load inbox: %w", err)
	}
	if a.opts.Logger != nil {
		a.opts.Logger.Debug("inbox loaded", "entries", len(snapshot.Entries), "unread", snapshot.UnreadTotal)
	}
	return snapshot, nil
}

// Reset forgets the inbox, e.g. after sign-out.
func (a *InboxAggregator) Reset() {
	a.mu.Lock()
	a.epoch++
	a.state = InboxState{}
	a.mu.Unlock()
	notify(a.opts.OnChange)
}
