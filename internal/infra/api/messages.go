package api

import (
	"context"
	"net/http"
	"net/url"

	"campusmarket/internal/app/messaging"
	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
)

type sendMessageRequest struct {
	ToUserID  ids.ID `json:"toUserId"`
	ListingID ids.ID `json:"listingId"`
	Text      string `json:"text"`
}

type markReadRequest struct {
	WithUserID ids.ID `json:"withUserId"`
	ListingID  ids.ID `json:"listingId"`
}

// Thread returns every message of the conversation, oldest first.
func (c *Client) Thread(ctx context.Context, withUserID, listingID ids.ID) ([]chat.Message, error) {
	query := url.Values{}
	query.Set("withUserId", withUserID.String())
	query.Set("listingId", listingID.String())
	var out []chat.Message
	if err := c.do(ctx, http.MethodGet, "/messages/thread", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, toUserID, listingID ids.ID, text string) (chat.Message, error) {
	var out chat.Message
	req := sendMessageRequest{ToUserID: toUserID, ListingID: listingID, Text: text}
	if err := c.do(ctx, http.MethodPost, "/messages", nil, req, &out); err != nil {
		return chat.Message{}, err
	}
	return out, nil
}

func (c *Client) Inbox(ctx context.Context) ([]chat.InboxEntry, error) {
	var out []chat.InboxEntry
	if err := c.do(ctx, http.MethodGet, "/messages/inbox", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkRead(ctx context.Context, withUserID, listingID ids.ID) error {
	req := markReadRequest{WithUserID: withUserID, ListingID: listingID}
	return c.do(ctx, http.MethodPost, "/messages/mark-read", nil, req, nil)
}

var _ messaging.API = (*Client)(nil)
