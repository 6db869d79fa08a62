package chat

import (
	"strconv"
	"strings"

	"campusmarket/internal/domain/shared/ids"
)

// Message is immutable once the server has assigned its id.
type Message struct {
	ID         ids.ID        `json:"id,omitempty"`
	FromUserID ids.ID        `json:"fromUserId"`
	ToUserID   ids.ID        `json:"toUserId,omitempty"`
	ListingID  ids.ID        `json:"listingId,omitempty"`
	Text       string        `json:"text"`
	CreatedAt  ids.Timestamp `json:"createdAt"`
}

func (m Message) SentBy(userID ids.ID) bool {
	return !userID.IsZero() && m.FromUserID == userID
}

// Counterparty is the profile fragment embedded in inbox rows.
type Counterparty struct {
	Name string `json:"name"`
}

// InboxEntry summarizes one conversation from the current user's side.
// Unread is computed by the server.
type InboxEntry struct {
	WithUserID ids.ID        `json:"withUserId"`
	WithUser   *Counterparty `json:"withUser,omitempty"`
	ListingID  ids.ID        `json:"listingId"`
	LastText   string        `json:"lastText"`
	LastAt     ids.Timestamp `json:"lastAt"`
	Unread     int           `json:"unread"`
}

func (e InboxEntry) DisplayName() string {
	if e.WithUser != nil {
		if name := strings.TrimSpace(e.WithUser.Name); name != "" {
			return name
		}
	}
	return "User"
}

// Conversation returns the thread this row points at, as seen by self.
func (e InboxEntry) Conversation(self ids.ID) (Conversation, error) {
	return NewConversation(self, e.WithUserID, e.ListingID)
}

// Inbox is one full snapshot of the user's conversations.
type Inbox struct {
	Entries     []InboxEntry
	UnreadTotal int
}

// NewInbox keeps the server order and sums the per-entry unread counts.
func NewInbox(entries []InboxEntry) Inbox {
	total := 0
	for _, entry := range entries {
		if entry.Unread > 0 {
			total += entry.Unread
		}
	}
	return Inbox{
		Entries:     append([]InboxEntry(nil), entries...),
		UnreadTotal: total,
	}
}

// Badge renders the unread counter shown next to the inbox button.
func Badge(unread int) string {
	if unread <= 0 {
		return ""
	}
	return "(" + strconv.Itoa(unread) + ")"
}
