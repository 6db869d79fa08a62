package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/user"
	"campusmarket/internal/infra/storage/memory"
)

func TestSignInPersistsAndNotifies(t *testing.T) {
	store := memory.NewKV()
	sess := New(store, nil)

	var events []Event
	cancel := sess.Subscribe(func(evt Event) { events = append(events, evt) })
	defer cancel()

	alice := user.Identity{ID: "7", Name: "Alice", Email: "alice@example.edu"}
	require.NoError(t, sess.SignIn(alice, "tok-1"))

	current, ok := sess.Current()
	require.True(t, ok)
	require.Equal(t, alice, current)
	require.Equal(t, "tok-1", sess.Token())

	raw, ok, err := store.Get(TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-1", string(raw))

	raw, ok, err = store.Get(UserKey)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted user.Identity
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Equal(t, alice, persisted)

	require.Len(t, events, 1)
	require.Equal(t, SignedIn, events[0].Kind)
}

func TestSignOutClearsStorageOnce(t *testing.T) {
	store := memory.NewKV()
	sess := New(store, nil)
	require.NoError(t, sess.SignIn(user.Identity{ID: "7", Name: "Alice"}, "tok"))

	var kinds []EventKind
	sess.Subscribe(func(evt Event) { kinds = append(kinds, evt.Kind) })

	require.NoError(t, sess.SignOut())
	require.NoError(t, sess.SignOut())

	_, ok := sess.Current()
	require.False(t, ok)
	require.Empty(t, sess.Token())
	require.Zero(t, store.Len())
	require.Equal(t, []EventKind{SignedOut}, kinds)
}

func TestRestoreFromStore(t *testing.T) {
	store := memory.NewKV()
	require.NoError(t, New(store, nil).SignIn(user.Identity{ID: "3", Name: "Bo"}, "tok-3"))

	restored := New(store, nil)
	ok, err := restored.Restore()
	require.NoError(t, err)
	require.True(t, ok)
	current, signedIn := restored.Current()
	require.True(t, signedIn)
	require.Equal(t, "Bo", current.Name)
	require.Equal(t, "tok-3", restored.Token())
}

func TestRestoreIgnoresCorruptUser(t *testing.T) {
	store := memory.NewKV()
	require.NoError(t, store.Set(TokenKey, []byte("tok")))
	require.NoError(t, store.Set(UserKey, []byte("{not json")))

	sess := New(store, nil)
	ok, err := sess.Restore()
	require.NoError(t, err)
	require.False(t, ok)
	_, signedIn := sess.Current()
	require.False(t, signedIn)
}

func TestSignInValidates(t *testing.T) {
	sess := New(nil, nil)
	require.ErrorIs(t, sess.SignIn(user.Identity{Name: "x"}, "tok"), user.ErrIDRequired)
	require.ErrorIs(t, sess.SignIn(user.Identity{ID: "1"}, ""), ErrTokenRequired)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	sess := New(nil, nil)
	calls := 0
	cancel := sess.Subscribe(func(Event) { calls++ })
	require.NoError(t, sess.SignIn(user.Identity{ID: "1"}, "tok"))
	cancel()
	cancel()
	require.NoError(t, sess.SignOut())
	require.Equal(t, 1, calls)
}
