package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/user"
)

func TestOpenListingChatLoadsThread(t *testing.T) {
	api := newFakeAPI("2")
	api.seed(chat.Message{ID: "1", FromUserID: "1", ToUserID: "2", ListingID: "10", Text: "hi"})
	m := NewMessenger(api, signedIn(t, "2"), Options{})

	state, err := m.OpenListingChat(context.Background(), listings.Listing{ID: "10", SellerID: "1"})
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)

	_, err = m.OpenListingChat(context.Background(), listings.Listing{ID: "11", SellerID: "2"})
	require.ErrorIs(t, err, ErrOwnListing)
}

func TestOpenInboxEntryMarksReadThenLoads(t *testing.T) {
	api := newFakeAPI("1")
	api.seed(chat.Message{ID: "1", FromUserID: "2", ToUserID: "1", ListingID: "10", Text: "is it available?"})
	api.setInbox(chat.InboxEntry{WithUserID: "2", ListingID: "10", LastText: "is it available?", Unread: 1})
	m := NewMessenger(api, signedIn(t, "1"), Options{})

	inbox, err := m.RefreshInbox(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inbox.UnreadTotal)

	state, err := m.OpenInboxEntry(context.Background(), inbox.Entries[0])
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	require.Zero(t, m.Inbox.State().UnreadTotal)

	_, _, inboxCalls, markCalls := api.counts()
	require.Equal(t, 1, markCalls)
	require.Equal(t, 2, inboxCalls)
}

func TestOpenInboxEntryLoadsThreadWhenRefreshFails(t *testing.T) {
	api := newFakeAPI("1")
	api.set(func(f *fakeAPI) {
		f.markReadErr = errBoom
		f.inboxErr = errBoom
	})
	m := NewMessenger(api, signedIn(t, "1"), Options{})

	state, err := m.OpenInboxEntry(context.Background(), chat.InboxEntry{WithUserID: "2", ListingID: "10"})
	require.NoError(t, err)
	require.True(t, state.Empty())
}

func TestSignOutClearsChatState(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(chat.InboxEntry{WithUserID: "1", ListingID: "10", Unread: 3})
	sess := signedIn(t, "2")
	changes := 0
	m := NewMessenger(api, sess, Options{OnChange: func() { changes++ }})
	m.Start(context.Background())
	defer m.Close()

	_, err := m.OpenListingChat(context.Background(), listings.Listing{ID: "10", SellerID: "1"})
	require.NoError(t, err)
	_, err = m.RefreshInbox(context.Background())
	require.NoError(t, err)
	require.Equal(t, SchedulerActive, m.Scheduler.State())

	require.NoError(t, sess.SignOut())
	require.False(t, m.Thread.State().Open())
	require.False(t, m.Inbox.State().Loaded)
	require.Equal(t, SchedulerIdle, m.Scheduler.State())
	require.Positive(t, changes)

	_, err = m.Send(context.Background(), "still there?")
	require.ErrorIs(t, err, ErrNoConversation)
}

func TestSignInAsAnotherUserClearsChatState(t *testing.T) {
	api := newFakeAPI("2")
	api.setInbox(chat.InboxEntry{WithUserID: "1", ListingID: "10", Unread: 3})
	sess := signedIn(t, "2")
	m := NewMessenger(api, sess, Options{})
	m.Start(context.Background())
	defer m.Close()

	_, err := m.OpenListingChat(context.Background(), listings.Listing{ID: "10", SellerID: "1"})
	require.NoError(t, err)
	_, err = m.RefreshInbox(context.Background())
	require.NoError(t, err)

	require.NoError(t, sess.SignIn(user.Identity{ID: "2", Name: "User 2"}, "tok-2b"))
	require.True(t, m.Thread.State().Open())
	require.True(t, m.Inbox.State().Loaded)

	require.NoError(t, sess.SignIn(user.Identity{ID: "5", Name: "User 5"}, "tok-5"))
	require.False(t, m.Thread.State().Open())
	require.False(t, m.Inbox.State().Loaded)
	require.Zero(t, m.Inbox.State().UnreadTotal)

	_, err = m.Send(context.Background(), "hello?")
	require.ErrorIs(t, err, ErrNoConversation)
}
