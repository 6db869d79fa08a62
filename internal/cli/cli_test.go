package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/infra/config"
	ginserver "campusmarket/internal/infra/http/gin"
	"campusmarket/internal/infra/storage/memory"
)

type testEnv struct {
	cfg   config.Config
	store *memory.KV
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sandbox := ginserver.NewSandbox("test", nil)
	srv := httptest.NewServer(sandbox.Router)
	t.Cleanup(srv.Close)
	return &testEnv{
		cfg: config.Config{
			Env:          "test",
			APIBase:      srv.URL + "/api",
			InboxRefresh: time.Second,
		},
		store: memory.NewKV(),
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(Options{Stdout: &out, Stderr: &errOut, Store: e.store, Config: &e.cfg})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(Options{Version: "dev"})
	for _, path := range [][]string{
		{"login"}, {"register"}, {"logout"}, {"whoami"}, {"api-base"},
		{"listings", "post"}, {"ls", "edit"}, {"listings", "delete"}, {"listings", "contact"},
		{"wishlist", "toggle"}, {"chat"}, {"inbox", "open"}, {"watch"}, {"sandbox"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, path)
		require.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	require.Contains(t, env.mustRun(t, "whoami"), "Not logged in.")
	require.Contains(t, env.mustRun(t, "register", "--name", "Ann", "--email", "ann@campus.edu", "--password", "password123"), "Welcome, Ann")
	require.Contains(t, env.mustRun(t, "whoami", "--verify"), "Ann <ann@campus.edu>")

	require.Contains(t, env.mustRun(t, "logout"), "Logged out.")
	require.Contains(t, env.mustRun(t, "whoami"), "Not logged in.")

	_, err := env.run("login", "--email", "ann@campus.edu", "--password", "wrong-password")
	require.EqualError(t, err, "invalid credentials")

	t.Setenv("CMP_PASSWORD", "password123")
	require.Contains(t, env.mustRun(t, "login", "--email", "ann@campus.edu"), "Logged in as Ann")
}

func TestListingsAndWishlist(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("listings", "post", "--title", "Calculator", "--category", "Electronics", "--condition", "Good", "--price", "900")
	require.EqualError(t, err, "Please login to post an item.")

	env.mustRun(t, "register", "--name", "Ann", "--email", "ann@campus.edu", "--password", "password123")
	require.Contains(t, env.mustRun(t, "listings", "post", "--title", "Calculator", "--category", "Electronics", "--condition", "Good", "--price", "900"), "Posted #1 Calculator")

	_, err = env.run("listings", "post", "--category", "Books", "--condition", "Good")
	require.EqualError(t, err, "Please fill all required fields.")

	out := env.mustRun(t, "listings")
	require.Contains(t, out, "Calculator")
	require.Contains(t, out, "₹900")
	require.Contains(t, out, "Seller: Ann")
	require.Contains(t, out, "[yours: edit/delete]")

	require.Contains(t, env.mustRun(t, "listings", "edit", "1", "--price", "800"), "Updated #1 Calculator")
	require.Contains(t, env.mustRun(t, "listings", "--query", "calc"), "₹800")
	require.Contains(t, env.mustRun(t, "listings", "--category", "Books"), "No items found. Try different filters.")

	require.Contains(t, env.mustRun(t, "wishlist"), "Your wishlist is empty.")
	require.Contains(t, env.mustRun(t, "wishlist", "toggle", "1"), "Saved #1")
	out = env.mustRun(t, "wishlist")
	require.Contains(t, out, "Wishlist (1)")
	require.Contains(t, out, "₹800 • Electronics • Good")

	env.mustRun(t, "register", "--name", "Bo", "--email", "bo@campus.edu", "--password", "password123")
	_, err = env.run("listings", "delete", "1")
	require.EqualError(t, err, "You can only change your own listings.")

	env.mustRun(t, "login", "--email", "ann@campus.edu", "--password", "password123")
	require.Contains(t, env.mustRun(t, "listings", "delete", "1"), "Deleted #1")
}

func TestChatAndInbox(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "register", "--name", "Ann", "--email", "ann@campus.edu", "--password", "password123")
	env.mustRun(t, "listings", "post", "--title", "Calculator", "--category", "Electronics", "--condition", "Good", "--price", "900")

	_, err := env.run("chat", "1", "hello")
	require.EqualError(t, err, "This is your own listing.")
	require.Contains(t, env.mustRun(t, "inbox"), "No messages yet.")

	env.mustRun(t, "logout")
	_, err = env.run("chat", "1")
	require.EqualError(t, err, "Please login to message the seller.")

	env.mustRun(t, "register", "--name", "Bo", "--email", "bo@campus.edu", "--password", "password123")
	require.Contains(t, env.mustRun(t, "chat", "1"), "No messages yet.")
	out := env.mustRun(t, "chat", "1", "Is", "it", "still", "available?")
	require.Contains(t, out, "Is it still available?")
	require.Contains(t, out, "me")

	env.mustRun(t, "login", "--email", "ann@campus.edu", "--password", "password123")
	out = env.mustRun(t, "inbox")
	require.Contains(t, out, "(1)")
	require.Contains(t, out, "1. Bo • Listing #1")

	require.Contains(t, env.mustRun(t, "inbox", "open", "1"), "Is it still available?")
	require.NotContains(t, env.mustRun(t, "inbox"), "(1)")

	_, err = env.run("inbox", "open", "2")
	require.EqualError(t, err, "inbox has 1 conversations")
}

func TestAPIBaseOverride(t *testing.T) {
	env := newTestEnv(t)
	require.Contains(t, env.mustRun(t, "api-base"), env.cfg.APIBase)

	require.Contains(t, env.mustRun(t, "api-base", "http://campus.example/api/"), "API base set to http://campus.example/api")
	require.Contains(t, env.mustRun(t, "api-base"), "http://campus.example/api")
	require.Contains(t, env.mustRun(t, "--api", "http://flag.example/api", "api-base"), "http://flag.example/api")

	_, err := env.run("api-base", "not-a-url")
	require.Error(t, err)

	env.mustRun(t, "api-base", "--reset")
	require.Contains(t, env.mustRun(t, "api-base"), env.cfg.APIBase)
}

func TestImageDataURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	url, err := imageDataURL(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	empty, err := imageDataURL("")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = imageDataURL(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}
