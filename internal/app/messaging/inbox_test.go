package messaging

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/user"
)

func twoConversations() []chat.InboxEntry {
	return []chat.InboxEntry{
		{WithUserID: "1", WithUser: &chat.Counterparty{Name: "Ann"}, ListingID: "10", LastText: "yes", Unread: 2},
		{WithUserID: "3", ListingID: "20", LastText: "thanks", Unread: 0},
	}
}

func TestInboxSumsUnread(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(twoConversations()...)
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{})

	state, err := inbox.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Entries, 2)
	require.Equal(t, 2, state.UnreadTotal)
	require.Equal(t, "(2)", state.Badge())
	require.Equal(t, "Ann", state.Entries[0].DisplayName())
	require.Equal(t, "User", state.Entries[1].DisplayName())
}

func TestInboxEmptyVersusFailed(t *testing.T) {
	api := newFakeAPI("2")
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{})

	state, err := inbox.Load(context.Background())
	require.NoError(t, err)
	require.True(t, state.Empty())
	require.Zero(t, state.UnreadTotal)
	require.Empty(t, state.Badge())

	api.set(func(f *fakeAPI) { f.inboxErr = errBoom })
	state, err = inbox.Load(context.Background())
	require.ErrorIs(t, err, errBoom)
	require.True(t, state.Failed)
	require.False(t, state.Empty())
}

func TestInboxFailureKeepsLastGood(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(twoConversations()...)
	rec := &countingRecorder{}
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{Metrics: rec})

	_, err := inbox.Load(context.Background())
	require.NoError(t, err)

	api.set(func(f *fakeAPI) { f.inboxErr = errBoom })
	state, err := inbox.Load(context.Background())
	require.Error(t, err)
	require.Len(t, state.Entries, 2)
	require.Equal(t, 2, state.UnreadTotal)
	require.Equal(t, 1, rec.inboxOK)
	require.Equal(t, 1, rec.inboxFailed)
}

func TestInboxWithoutSessionMakesNoCall(t *testing.T) {
	api := newFakeAPI("2")
	inbox := NewInboxAggregator(api, staticIdentity{}, InboxOptions{})

	state, err := inbox.Load(context.Background())
	require.NoError(t, err)
	require.False(t, state.Loaded)

	_, _, inboxCalls, _ := api.counts()
	require.Zero(t, inboxCalls)
}

func TestInboxResetDiscardsInFlightLoad(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(twoConversations()...)
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{})
	api.set(func(f *fakeAPI) { f.beforeInbox = inbox.Reset })

	state, err := inbox.Load(context.Background())
	require.NoError(t, err)
	require.False(t, state.Loaded)
	require.Empty(t, state.Entries)
}

func TestInboxUsesInjectedClock(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	inbox := NewInboxAggregator(newFakeAPI("2"), staticIdentity{id: "2"}, InboxOptions{Now: func() time.Time { return now }})
	state, err := inbox.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, now, state.UpdatedAt)
}

func TestMarkReadRefreshesInboxOnce(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(twoConversations()...)
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{})
	reads := ReadStateCommitter{API: api, Inbox: inbox}

	require.NoError(t, reads.MarkRead(context.Background(), chat.Conversation{Self: "2", Counterparty: "1", Listing: "10"}))

	_, _, inboxCalls, markCalls := api.counts()
	require.Equal(t, 1, markCalls)
	require.Equal(t, 1, inboxCalls)
	require.Zero(t, inbox.State().UnreadTotal)
}

func TestMarkReadFailureStillRefreshes(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(twoConversations()...)
	api.set(func(f *fakeAPI) { f.markReadErr = errBoom })
	inbox := NewInboxAggregator(api, staticIdentity{id: "2"}, InboxOptions{})
	reads := ReadStateCommitter{API: api, Inbox: inbox}

	require.NoError(t, reads.MarkRead(context.Background(), chat.Conversation{Self: "2", Counterparty: "1", Listing: "10"}))

	_, _, inboxCalls, _ := api.counts()
	require.Equal(t, 1, inboxCalls)
	require.Equal(t, 2, inbox.State().UnreadTotal)
}

func TestSchedulerIdleWithoutSession(t *testing.T) {
	api := newFakeAPI("2")
	sess := session.New(nil, nil)
	inbox := NewInboxAggregator(api, sess, InboxOptions{})
	scheduler := NewRefreshScheduler(inbox, SchedulerConfig{Interval: 2 * time.Millisecond})
	scheduler.Attach(context.Background(), sess)
	defer scheduler.Close()

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, SchedulerIdle, scheduler.State())
	_, _, inboxCalls, _ := api.counts()
	require.Zero(t, inboxCalls)
}

func TestSchedulerFollowsSession(t *testing.T) {
	api := newFakeAPI("2")
	sess := session.New(nil, nil)
	inbox := NewInboxAggregator(api, sess, InboxOptions{})
	scheduler := NewRefreshScheduler(inbox, SchedulerConfig{Interval: 2 * time.Millisecond})
	scheduler.Attach(context.Background(), sess)
	defer scheduler.Close()

	require.NoError(t, sess.SignIn(user.Identity{ID: "2", Name: "Bo"}, "tok"))
	require.Equal(t, SchedulerActive, scheduler.State())

	require.Eventually(t, func() bool {
		_, _, calls, _ := api.counts()
		return calls >= 2
	}, time.Second, time.Millisecond)

	require.NoError(t, sess.SignOut())
	require.Equal(t, SchedulerIdle, scheduler.State())
	_, _, stopped, _ := api.counts()
	time.Sleep(20 * time.Millisecond)
	_, _, after, _ := api.counts()
	require.Equal(t, stopped, after)
}

func TestSchedulerStartsForRestoredSession(t *testing.T) {
	api := newFakeAPI("2")
	sess := signedIn(t, "2")
	inbox := NewInboxAggregator(api, sess, InboxOptions{})
	scheduler := NewRefreshScheduler(inbox, SchedulerConfig{Interval: 2 * time.Millisecond})
	scheduler.Attach(context.Background(), sess)
	defer scheduler.Close()

	require.Eventually(t, func() bool {
		_, _, calls, _ := api.counts()
		return calls >= 1
	}, time.Second, time.Millisecond)
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	var loads atomic.Int32
	scheduler := NewRefreshScheduler(loaderFunc(func(context.Context) (InboxState, error) {
		loads.Add(1)
		return InboxState{}, errBoom
	}), SchedulerConfig{Interval: time.Millisecond})

	scheduler.Start()
	scheduler.Start()
	require.Eventually(t, func() bool { return loads.Load() >= 3 }, time.Second, time.Millisecond)
	scheduler.Stop()
	scheduler.Stop()
	require.Equal(t, SchedulerIdle, scheduler.State())
}

type loaderFunc func(ctx context.Context) (InboxState, error)

func (f loaderFunc) Load(ctx context.Context) (InboxState, error) { return f(ctx) }
