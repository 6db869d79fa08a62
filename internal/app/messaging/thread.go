package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"campusmarket/internal/domain/chat"
)

type ThreadStatus int

const (
	ThreadClosed ThreadStatus = iota
	ThreadLoading
	ThreadReady
	ThreadFailed
)

func (s ThreadStatus) String() string {
	switch s {
	case ThreadLoading:
		return "loading"
	case ThreadReady:
		return "ready"
	case ThreadFailed:
		return "failed"
	default:
		return "closed"
	}
}

// ThreadState is a snapshot of the open thread. A failed load keeps the
// messages of the last successful load of the same conversation.
type ThreadState struct {
	Conversation chat.Conversation
	Status       ThreadStatus
	Messages     []chat.Message
	Err          error
	// ScrollToEnd asks the view to jump to the newest message.
	ScrollToEnd bool
}

func (s ThreadState) Open() bool { return s.Status != ThreadClosed }

// Empty reports a successful load with zero messages. A failed load is
// never empty.
func (s ThreadState) Empty() bool { return s.Status == ThreadReady && len(s.Messages) == 0 }

func (s ThreadState) clone() ThreadState {
	s.Messages = append([]chat.Message(nil), s.Messages...)
	return s
}

type ThreadOptions struct {
	// OptimisticAppend shows a sent message before the confirming reload.
	OptimisticAppend bool
	Logger           *slog.Logger
	Metrics          Recorder
	OnChange         func()
}

// ThreadStore holds the message log of the open conversation. The server is
// the only source of truth: nothing is cached across loads.
type ThreadStore struct {
	api  API
	opts ThreadOptions

	mu    sync.Mutex
	state ThreadState
	gen   uint64

	// sendMu keeps one send-then-reload cycle in flight per store.
	sendMu sync.Mutex
}

func NewThreadStore(api API, opts ThreadOptions) *ThreadStore {
	return &ThreadStore{api: api, opts: opts}
}

// Open selects conv and clears the previous thread. Responses to requests
// issued before Open are discarded.
func (s *ThreadStore) Open(conv chat.Conversation) {
	s.mu.Lock()
	s.gen++
	s.state = ThreadState{Conversation: conv, Status: ThreadLoading}
	s.mu.Unlock()
	notify(s.opts.OnChange)
}

// Close detaches the view. In-flight loads complete into nothing.
func (s *ThreadStore) Close() {
	s.mu.Lock()
	s.gen++
	s.state = ThreadState{}
	s.mu.Unlock()
	notify(s.opts.OnChange)
}

func (s *ThreadStore) State() ThreadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Load fetches the whole thread of the open conversation.
func (s *ThreadStore) Load(ctx context.Context) (ThreadState, error) {
	s.mu.Lock()
	if s.state.Status == ThreadClosed {
		s.mu.Unlock()
		return ThreadState{}, ErrNoConversation
	}
	gen := s.gen
	conv := s.state.Conversation
	s.state.Status = ThreadLoading
	s.state.ScrollToEnd = false
	s.mu.Unlock()
	notify(s.opts.OnChange)

	messages, err := s.api.Thread(ctx, conv.Counterparty, conv.Listing)
	if s.opts.Metrics != nil {
		s.opts.Metrics.ThreadLoad(err == nil)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		if s.opts.Logger != nil {
			s.opts.Logger.Debug("discarding stale thread response", "listing_id", conv.Listing, "with_user_id", conv.Counterparty)
		}
		return s.State(), ErrStaleResponse
	}
	if err != nil {
		s.state.Status = ThreadFailed
		s.state.Err = err
	} else {
		s.state.Status = ThreadReady
		s.state.Err = nil
		s.state.Messages = append([]chat.Message(nil), messages...)
		s.state.ScrollToEnd = true
	}
	snapshot := s.state.clone()
	s.mu.Unlock()
	notify(s.opts.OnChange)

	if err != nil {
		if s.opts.Logger != nil {
			s.opts.Logger.Warn("thread load failed", "listing_id", conv.Listing, "with_user_id", conv.Counterparty, "error", err)
		}
		return snapshot, fmt.Errorf("messaging: load thread: %w", err)
	}
	return snapshot, nil
}

// Send posts text to the open conversation and reloads the thread. Blank
// text is ignored without a network call and reported as not sent.
// A failed reload is reflected in State and does not fail the send.
func (s *ThreadStore) Send(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.state.Status == ThreadClosed {
		s.mu.Unlock()
		return false, ErrNoConversation
	}
	gen := s.gen
	conv := s.state.Conversation
	s.mu.Unlock()

	sent, err := s.api.SendMessage(ctx, conv.Counterparty, conv.Listing, text)
	if err != nil {
		if s.opts.Logger != nil {
			s.opts.Logger.Warn("send failed", "listing_id", conv.Listing, "to_user_id", conv.Counterparty, "error", err)
		}
		return false, fmt.Errorf("messaging: send: %w", err)
	}

	if s.opts.OptimisticAppend {
		s.appendLocal(gen, conv, sent, text)
	}
	_, _ = s.Load(ctx)
	return true, nil
}

func (s *ThreadStore) appendLocal(gen uint64, conv chat.Conversation, sent chat.Message, text string) {
	if sent.Text == "" {
		sent.Text = text
	}
	if sent.FromUserID.IsZero() {
		sent.FromUserID = conv.Self
	}
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state.Messages = append(s.state.Messages, sent)
	s.state.ScrollToEnd = true
	s.mu.Unlock()
	notify(s.opts.OnChange)
}
