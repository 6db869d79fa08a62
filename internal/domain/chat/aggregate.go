package chat

import (
	"sort"

	"campusmarket/internal/domain/shared/ids"
)

// ReadMarks maps a conversation, seen from its reader, to the id of the
// newest message that reader has marked read.
type ReadMarks map[Conversation]ids.ID

// Aggregate builds self's inbox from the full message log in send order.
// Unread counts the counterparty's messages after the reader's mark. Rows
// are ordered by most recent activity.
func Aggregate(self ids.ID, log []Message, marks ReadMarks, names func(ids.ID) string) []InboxEntry {
	type row struct {
		entry InboxEntry
		last  int
	}
	rows := make(map[Conversation]*row)
	for pos, msg := range log {
		var other ids.ID
		switch {
		case msg.FromUserID == self:
			other = msg.ToUserID
		case msg.ToUserID == self:
			other = msg.FromUserID
		default:
			continue
		}
		conv := Conversation{Self: self, Counterparty: other, Listing: msg.ListingID}
		r, ok := rows[conv]
		if !ok {
			r = &row{entry: InboxEntry{WithUserID: other, ListingID: msg.ListingID}}
			rows[conv] = r
		}
		r.entry.LastText = msg.Text
		r.entry.LastAt = msg.CreatedAt
		r.last = pos
		if msg.FromUserID == other {
			r.entry.Unread++
		}
		if mark, ok := marks[conv]; ok && mark == msg.ID {
			r.entry.Unread = 0
		}
	}

	out := make([]*row, 0, len(rows))
	for _, r := range rows {
		if names != nil {
			if name := names(r.entry.WithUserID); name != "" {
				r.entry.WithUser = &Counterparty{Name: name}
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.entry.LastAt.Equal(b.entry.LastAt.Time) {
			return a.entry.LastAt.After(b.entry.LastAt.Time)
		}
		return a.last > b.last
	})
	entries := make([]InboxEntry, 0, len(out))
	for _, r := range out {
		entries = append(entries, r.entry)
	}
	return entries
}

// LatestFrom returns the id of the newest message in conv's thread, as seen
// from conv.Self, or "" when the thread is empty.
func LatestFrom(log []Message, conv Conversation) ids.ID {
	for i := len(log) - 1; i >= 0; i-- {
		if conv.Involves(log[i]) {
			return log[i].ID
		}
	}
	return ""
}
