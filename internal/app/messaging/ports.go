// Package messaging implements the listing-scoped chat client: conversation
// resolution, thread loading and sending, inbox aggregation, read-state
// commits and the inbox refresh loop.
package messaging

import (
	"context"
	"errors"

	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/domain/user"
)

var (
	ErrNoSession      = errors.New("messaging: please login to message the seller")
	ErrOwnListing     = errors.New("messaging: this is your own listing")
	ErrNoConversation = errors.New("messaging: no conversation open")
	ErrStaleResponse  = errors.New("messaging: conversation changed while loading")
)

// API is the remote message service.
type API interface {
	Thread(ctx context.Context, withUserID, listingID ids.ID) ([]chat.Message, error)
	SendMessage(ctx context.Context, toUserID, listingID ids.ID, text string) (chat.Message, error)
	Inbox(ctx context.Context) ([]chat.InboxEntry, error)
	MarkRead(ctx context.Context, withUserID, listingID ids.ID) error
}

// Identity supplies the signed-in user.
type Identity interface {
	Current() (user.Identity, bool)
}

// SessionEvents is an Identity that also reports sign-in and sign-out.
type SessionEvents interface {
	Identity
	Subscribe(fn func(session.Event)) func()
}

// Recorder counts load outcomes. obs.Metrics satisfies it.
type Recorder interface {
	InboxRefresh(ok bool)
	ThreadLoad(ok bool)
}

// InboxLoader re-aggregates the inbox.
type InboxLoader interface {
	Load(ctx context.Context) (InboxState, error)
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
