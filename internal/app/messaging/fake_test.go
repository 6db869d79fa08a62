package messaging

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/domain/user"
)

var errBoom = errors.New("boom")

// fakeAPI is a single-user view of an in-memory message server.
type fakeAPI struct {
	mu   sync.Mutex
	self ids.ID

	messages []chat.Message
	inbox    []chat.InboxEntry

	threadErr   error
	sendErr     error
	inboxErr    error
	markReadErr error

	// beforeThread and beforeInbox run before a response is produced.
	beforeThread func()
	beforeInbox  func()

	threadCalls   int
	sendCalls     int
	inboxCalls    int
	markReadCalls int
}

func newFakeAPI(self ids.ID) *fakeAPI {
	return &fakeAPI{self: self}
}

func (f *fakeAPI) Thread(_ context.Context, withUserID, listingID ids.ID) ([]chat.Message, error) {
	f.mu.Lock()
	hook := f.beforeThread
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadCalls++
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	conv := chat.Conversation{Self: f.self, Counterparty: withUserID, Listing: listingID}
	var out []chat.Message
	for _, m := range f.messages {
		if conv.Involves(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, toUserID, listingID ids.ID, text string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return chat.Message{}, f.sendErr
	}
	msg := chat.Message{
		ID:         ids.ID(strconv.Itoa(len(f.messages) + 1)),
		FromUserID: f.self,
		ToUserID:   toUserID,
		ListingID:  listingID,
		Text:       text,
		CreatedAt:  ids.At(time.Unix(int64(1700000000+len(f.messages)), 0)),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeAPI) Inbox(context.Context) ([]chat.InboxEntry, error) {
	f.mu.Lock()
	hook := f.beforeInbox
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inboxCalls++
	if f.inboxErr != nil {
		return nil, f.inboxErr
	}
	return append([]chat.InboxEntry(nil), f.inbox...), nil
}

func (f *fakeAPI) MarkRead(_ context.Context, withUserID, listingID ids.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	if f.markReadErr != nil {
		return f.markReadErr
	}
	for i := range f.inbox {
		if f.inbox[i].WithUserID == withUserID && f.inbox[i].ListingID == listingID {
			f.inbox[i].Unread = 0
		}
	}
	return nil
}

func (f *fakeAPI) seed(msgs ...chat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msgs...)
}

func (f *fakeAPI) setInbox(entries ...chat.InboxEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = entries
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) counts() (thread, send, inbox, markRead int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threadCalls, f.sendCalls, f.inboxCalls, f.markReadCalls
}

func signedIn(t testing.TB, id ids.ID) *session.Context {
	t.Helper()
	sess := session.New(nil, nil)
	require.NoError(t, sess.SignIn(user.Identity{ID: id, Name: "User " + id.String()}, "tok-"+id.String()))
	return sess
}

// staticIdentity is an Identity that never changes.
type staticIdentity struct {
	id ids.ID
}

func (s staticIdentity) Current() (user.Identity, bool) {
	if s.id.IsZero() {
		return user.Identity{}, false
	}
	return user.Identity{ID: s.id}, true
}

type countingRecorder struct {
	mu                   sync.Mutex
	inboxOK, inboxFailed int
	threadOK, threadFail int
}

func (r *countingRecorder) InboxRefresh(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.inboxOK++
	} else {
		r.inboxFailed++
	}
}

func (r *countingRecorder) ThreadLoad(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.threadOK++
	} else {
		r.threadFail++
	}
}
