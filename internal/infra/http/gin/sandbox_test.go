package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/user"
	"campusmarket/internal/infra/api"
	"campusmarket/internal/infra/obs"
)

type tokenBox struct{ token string }

func (b *tokenBox) Token() string { return b.token }

func newSandboxClient(t *testing.T, baseURL string) (*api.Client, *tokenBox) {
	t.Helper()
	box := &tokenBox{}
	client, err := api.NewClient(api.Config{BaseURL: baseURL}, box, nil)
	require.NoError(t, err)
	return client, box
}

func register(t *testing.T, client *api.Client, box *tokenBox, name, email string) user.Identity {
	t.Helper()
	res, err := client.Register(context.Background(), user.Credentials{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	box.token = res.Token
	return res.User
}

func TestSandboxConversationRoundTrip(t *testing.T) {
	sandbox := NewSandbox("test", nil)
	srv := httptest.NewServer(sandbox.Router)
	defer srv.Close()
	ctx := context.Background()

	sellerAPI, sellerBox := newSandboxClient(t, srv.URL+"/api")
	buyerAPI, buyerBox := newSandboxClient(t, srv.URL+"/api")
	seller := register(t, sellerAPI, sellerBox, "Ann", "ann@campus.edu")
	buyer := register(t, buyerAPI, buyerBox, "Bo", "bo@campus.edu")
	require.NotEqual(t, seller.ID, buyer.ID)

	item, err := sellerAPI.CreateListing(ctx, listings.Draft{Title: "Calculator", Category: "Electronics", Condition: "Good", Price: 900})
	require.NoError(t, err)
	require.Equal(t, seller.ID, item.SellerID)
	require.Equal(t, "Ann", item.Seller)

	buyerSession := session.New(nil, nil)
	require.NoError(t, buyerSession.SignIn(buyer, buyerBox.token))
	buyerChat := messaging.NewMessenger(buyerAPI, buyerSession, messaging.Options{})
	_, err = buyerChat.OpenListingChat(ctx, item)
	require.NoError(t, err)
	sent, err := buyerChat.Send(ctx, "Is it still available?")
	require.NoError(t, err)
	require.True(t, sent)
	thread := buyerChat.Thread.State()
	require.Len(t, thread.Messages, 1)
	require.True(t, thread.Messages[0].SentBy(buyer.ID))

	sellerSession := session.New(nil, nil)
	require.NoError(t, sellerSession.SignIn(seller, sellerBox.token))
	sellerChat := messaging.NewMessenger(sellerAPI, sellerSession, messaging.Options{})
	inbox, err := sellerChat.RefreshInbox(ctx)
	require.NoError(t, err)
	require.Len(t, inbox.Entries, 1)
	require.Equal(t, "Bo", inbox.Entries[0].DisplayName())
	require.Equal(t, 1, inbox.UnreadTotal)
	require.Equal(t, "(1)", inbox.Badge())

	state, err := sellerChat.OpenInboxEntry(ctx, inbox.Entries[0])
	require.NoError(t, err)
	require.Len(t, state.Messages, 1)
	require.Zero(t, sellerChat.Inbox.State().UnreadTotal)

	_, err = sellerChat.Send(ctx, "Yes, come by tomorrow")
	require.NoError(t, err)
	buyerThread, err := buyerChat.Thread.Load(ctx)
	require.NoError(t, err)
	require.Len(t, buyerThread.Messages, 2)
	require.Equal(t, "Yes, come by tomorrow", buyerThread.Messages[1].Text)
}

func TestSandboxRejectsAnonymousAndForeignEdits(t *testing.T) {
	sandbox := NewSandbox("test", nil)
	srv := httptest.NewServer(sandbox.Router)
	defer srv.Close()
	ctx := context.Background()

	anon, _ := newSandboxClient(t, srv.URL+"/api")
	_, err := anon.Inbox(ctx)
	require.True(t, api.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, "auth required", api.Message(err))

	owner, ownerBox := newSandboxClient(t, srv.URL+"/api")
	register(t, owner, ownerBox, "Ann", "ann@campus.edu")
	item, err := owner.CreateListing(ctx, listings.Draft{Title: "Notes", Category: "Notes", Condition: "Good"})
	require.NoError(t, err)

	other, otherBox := newSandboxClient(t, srv.URL+"/api")
	register(t, other, otherBox, "Bo", "bo@campus.edu")
	err = other.DeleteListing(ctx, item.ID)
	require.True(t, api.IsStatus(err, http.StatusForbidden))

	_, err = owner.SendMessage(ctx, item.SellerID, item.ID, "talking to myself")
	require.True(t, api.IsStatus(err, http.StatusBadRequest))

	_, err = other.CreateListing(ctx, listings.Draft{Title: "", Category: "Notes", Condition: "Good"})
	require.True(t, api.IsStatus(err, http.StatusBadRequest))

	require.NoError(t, owner.DeleteListing(ctx, item.ID))
	items, err := anon.Listings(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSandboxLoginErrors(t *testing.T) {
	sandbox := NewSandbox("test", nil)
	srv := httptest.NewServer(sandbox.Router)
	defer srv.Close()
	ctx := context.Background()

	client, box := newSandboxClient(t, srv.URL+"/api")
	register(t, client, box, "Ann", "ann@campus.edu")

	_, err := client.Login(ctx, user.Credentials{Email: "ann@campus.edu", Password: "nope"})
	require.True(t, api.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, "invalid credentials", api.Message(err))

	_, err = client.Register(ctx, user.Credentials{Name: "Ann", Email: "ann@campus.edu", Password: "password123"})
	require.True(t, api.IsStatus(err, http.StatusConflict))

	res, err := client.Login(ctx, user.Credentials{Email: "ANN@campus.edu", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, "Ann", res.User.Name)
}

func TestSandboxReadinessReportsCatalog(t *testing.T) {
	sandbox := NewSandbox("test", nil)
	type readyBody struct {
		Status  string           `json:"status"`
		Sandbox obs.SandboxStats `json:"sandbox"`
	}
	ready := func() readyBody {
		rec := httptest.NewRecorder()
		sandbox.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body readyBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	body := ready()
	require.Equal(t, "ready", body.Status)
	require.Equal(t, obs.SandboxStats{}, body.Sandbox)

	samples := listings.SampleListings(time.Now())
	require.NoError(t, sandbox.Seed(context.Background(), samples))
	body = ready()
	require.True(t, body.Sandbox.Seeded)
	require.Equal(t, len(samples), body.Sandbox.Listings)

	rec := httptest.NewRecorder()
	sandbox.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReadinessFailureIsUnavailable(t *testing.T) {
	health := obs.HealthHandlers{Ready: func() error { return errors.New("seed pending") }}
	router := NewRouter("test", obs.Middleware{}, health, Handlers{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "seed pending")
}
