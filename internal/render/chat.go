package render

import (
	"fmt"
	"strings"
	"time"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
)

// Thread renders the open conversation oldest first. A failed load with
// earlier messages keeps them and appends the failure line.
func Thread(state messaging.ThreadState, self ids.ID, loc *time.Location) string {
	if !state.Open() {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Listing #%s", state.Conversation.Listing)))
	b.WriteString("\n")

	switch {
	case state.Status == messaging.ThreadLoading && len(state.Messages) == 0:
		b.WriteString(mutedStyle.Render(LoadingText))
		return b.String()
	case state.Status == messaging.ThreadFailed && len(state.Messages) == 0:
		b.WriteString(errorStyle.Render(ThreadFailed))
		return b.String()
	case state.Empty():
		b.WriteString(emptyStyle.Render(NoMessages))
		return b.String()
	}

	for _, msg := range state.Messages {
		b.WriteString(MessageLine(msg, self, loc))
		b.WriteString("\n")
	}
	if state.Status == messaging.ThreadFailed {
		b.WriteString(errorStyle.Render(ThreadFailed))
	}
	return strings.TrimRight(b.String(), "\n")
}

// MessageLine marks the viewer's own messages with "me".
func MessageLine(msg chat.Message, self ids.ID, loc *time.Location) string {
	stamp := ""
	if !msg.CreatedAt.IsZero() {
		stamp = mutedStyle.Render(localTime(msg.CreatedAt.Time, loc).Format("15:04")) + " "
	}
	if msg.SentBy(self) {
		return stamp + meStyle.Render("me") + "  " + msg.Text
	}
	return stamp + "    " + msg.Text
}

// Inbox renders numbered rows: "<name> • Listing #<id>" over
// "<local time> • <last text>".
func Inbox(state messaging.InboxState, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(InboxButton(state.UnreadTotal)))
	b.WriteString("\n")
	if state.Failed {
		b.WriteString(errorStyle.Render(InboxFailed))
		b.WriteString("\n")
	}
	if !state.Loaded && !state.Failed {
		b.WriteString(mutedStyle.Render(LoadingText))
		return b.String()
	}
	if state.Empty() {
		b.WriteString(emptyStyle.Render(NoMessages))
		return b.String()
	}
	for i, entry := range state.Entries {
		b.WriteString(InboxRow(i+1, entry, loc))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func InboxRow(n int, entry chat.InboxEntry, loc *time.Location) string {
	title := fmt.Sprintf("%d. %s • Listing #%s", n, entry.DisplayName(), entry.ListingID)
	if entry.Unread > 0 {
		title += " " + unreadStyle.Render(chat.Badge(entry.Unread))
	}
	when := ""
	if !entry.LastAt.IsZero() {
		when = localTime(entry.LastAt.Time, loc).Format("2006-01-02 15:04")
	}
	meta := mutedStyle.Render(fmt.Sprintf("%s • %s", when, entry.LastText))
	return titleStyle.Render(title) + "\n   " + meta
}

// InboxButton is the header label carrying the unread badge.
func InboxButton(unread int) string {
	badge := chat.Badge(unread)
	if badge == "" {
		return "Inbox"
	}
	return "Inbox " + unreadStyle.Render(badge)
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}
