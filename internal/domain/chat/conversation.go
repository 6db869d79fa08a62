// Package chat models listing-scoped conversations between two users.
package chat

import (
	"errors"

	"campusmarket/internal/domain/shared/ids"
)

var (
	ErrParticipantRequired = errors.New("chat: both participants are required")
	ErrListingRequired     = errors.New("chat: listing id is required")
	ErrSelfConversation    = errors.New("chat: cannot start a conversation with yourself")
)

// Conversation is one thread: two participants and exactly one listing.
// It is computed on demand and never stored.
type Conversation struct {
	Self         ids.ID
	Counterparty ids.ID
	Listing      ids.ID
}

// Key identifies a conversation independently of which participant is "self".
type Key struct {
	Low     ids.ID
	High    ids.ID
	Listing ids.ID
}

func NewConversation(self, counterparty, listing ids.ID) (Conversation, error) {
	if self.IsZero() || counterparty.IsZero() {
		return Conversation{}, ErrParticipantRequired
	}
	if listing.IsZero() {
		return Conversation{}, ErrListingRequired
	}
	if self == counterparty {
		return Conversation{}, ErrSelfConversation
	}
	return Conversation{Self: self, Counterparty: counterparty, Listing: listing}, nil
}

func (c Conversation) Key() Key {
	low, high := c.Self, c.Counterparty
	if high < low {
		low, high = high, low
	}
	return Key{Low: low, High: high, Listing: c.Listing}
}

// Same reports whether both values address the same thread.
func (c Conversation) Same(other Conversation) bool {
	return c.Key() == other.Key()
}

func (c Conversation) IsZero() bool {
	return c.Self.IsZero() && c.Counterparty.IsZero() && c.Listing.IsZero()
}

// Involves reports whether m belongs to this thread.
func (c Conversation) Involves(m Message) bool {
	if !m.ListingID.IsZero() && m.ListingID != c.Listing {
		return false
	}
	return (m.FromUserID == c.Self && (m.ToUserID.IsZero() || m.ToUserID == c.Counterparty)) ||
		(m.FromUserID == c.Counterparty && (m.ToUserID.IsZero() || m.ToUserID == c.Self))
}
