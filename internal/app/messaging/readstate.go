package messaging

import (
	"context"
	"log/slog"

	"campusmarket/internal/domain/chat"
)

// ReadStateCommitter zeroes a conversation's unread count on the server and
// then refreshes the inbox.
type ReadStateCommitter struct {
	API    API
	Inbox  InboxLoader
	Logger *slog.Logger
}

// MarkRead always re-aggregates the inbox exactly once, whether or not the
// mark-read call succeeded. Only the refresh error is returned.
func (c ReadStateCommitter) MarkRead(ctx context.Context, conv chat.Conversation) error {
	if c.API != nil {
		if err := c.API.MarkRead(ctx, conv.Counterparty, conv.Listing); err != nil && c.Logger != nil {
			c.Logger.Warn("mark read failed", "listing_id", conv.Listing, "with_user_id", conv.Counterparty, "error", err)
		}
	}
	if c.Inbox == nil {
		return nil
	}
	_, err := c.Inbox.Load(ctx)
	return err
}
