package pebble

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := store.Get("cmp_token_v1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set("cmp_token_v1", []byte("tok")))
	require.NoError(t, store.Set("cmp_wishlist_v1", []byte(`[1,2]`)))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get("cmp_token_v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", string(v))

	keys, err := store.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"cmp_token_v1", "cmp_wishlist_v1"}, keys)

	require.NoError(t, store.Delete("cmp_token_v1"))
	require.NoError(t, store.Delete("missing"))
	_, ok, err = store.Get("cmp_token_v1")
	require.NoError(t, err)
	require.False(t, ok)
}
