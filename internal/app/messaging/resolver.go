package messaging

import (
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

// Resolver derives conversation identities for the signed-in user.
type Resolver struct {
	Session Identity
}

// Resolve opens the buyer side of a listing conversation. The listing is
// trusted to exist.
func (r Resolver) Resolve(listing listings.Listing) (chat.Conversation, error) {
	return r.ResolveTarget(listing.SellerID, listing.ID)
}

func (r Resolver) ResolveTarget(sellerID, listingID ids.ID) (chat.Conversation, error) {
	self, ok := r.current()
	if !ok {
		return chat.Conversation{}, ErrNoSession
	}
	if sellerID == self {
		return chat.Conversation{}, ErrOwnListing
	}
	return chat.NewConversation(self, sellerID, listingID)
}

// FromInboxEntry resolves the conversation behind an inbox row.
func (r Resolver) FromInboxEntry(entry chat.InboxEntry) (chat.Conversation, error) {
	self, ok := r.current()
	if !ok {
		return chat.Conversation{}, ErrNoSession
	}
	return entry.Conversation(self)
}

func (r Resolver) current() (ids.ID, bool) {
	if r.Session == nil {
		return "", false
	}
	identity, ok := r.Session.Current()
	if !ok || identity.ID.IsZero() {
		return "", false
	}
	return identity.ID, true
}
