package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/shared/ids"
)

// ChatHTTP exposes the listing-scoped messaging endpoints.
type ChatHTTP interface {
	Thread(c *gin.Context)
	Send(c *gin.Context)
	Inbox(c *gin.Context)
	MarkRead(c *gin.Context)
}

// MessageStore is the server-side message log.
type MessageStore interface {
	Append(ctx context.Context, msg chat.Message) (chat.Message, error)
	Thread(ctx context.Context, conv chat.Conversation) ([]chat.Message, error)
	Inbox(ctx context.Context, self ids.ID, names func(ids.ID) string) ([]chat.InboxEntry, error)
	MarkRead(ctx context.Context, conv chat.Conversation) error
}

type ChatHandler struct {
	Messages MessageStore
	// Listings, when set, rejects messages about unknown listings.
	Listings ListingStore
	Names    func(ids.ID) string
	Logger   *slog.Logger
}

type sendRequest struct {
	ToUserID  ids.ID `json:"toUserId"`
	ListingID ids.ID `json:"listingId"`
	Text      string `json:"text"`
}

type markReadRequest struct {
	WithUserID ids.ID `json:"withUserId"`
	ListingID  ids.ID `json:"listingId"`
}

func (h ChatHandler) Thread(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	conv, ok := conversationFor(c, p, c.Query("withUserId"), c.Query("listingId"))
	if !ok {
		return
	}
	msgs, err := h.Messages.Thread(c.Request.Context(), conv)
	if err != nil {
		h.respondError(c, err, "load thread", conv)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h ChatHandler) Send(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	conv, ok := conversationFor(c, p, req.ToUserID.String(), req.ListingID.String())
	if !ok {
		return
	}
	if h.Listings != nil {
		if _, err := h.Listings.ByID(c.Request.Context(), conv.Listing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
	}
	msg, err := h.Messages.Append(c.Request.Context(), chat.Message{
		FromUserID: p.ID,
		ToUserID:   conv.Counterparty,
		ListingID:  conv.Listing,
		Text:       req.Text,
	})
	if err != nil {
		h.respondError(c, err, "send message", conv)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h ChatHandler) Inbox(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	entries, err := h.Messages.Inbox(c.Request.Context(), p.ID, h.Names)
	if err != nil {
		h.respondError(c, err, "load inbox", chat.Conversation{Self: p.ID})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h ChatHandler) MarkRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	conv, ok := conversationFor(c, p, req.WithUserID.String(), req.ListingID.String())
	if !ok {
		return
	}
	if err := h.Messages.MarkRead(c.Request.Context(), conv); err != nil {
		h.respondError(c, err, "mark read", conv)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func conversationFor(c *gin.Context, p principal, withRaw, listingRaw string) (chat.Conversation, bool) {
	with, err := ids.Parse(withRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "withUserId is required"})
		return chat.Conversation{}, false
	}
	listing, err := ids.Parse(listingRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listingId is required"})
		return chat.Conversation{}, false
	}
	conv, err := chat.NewConversation(p.ID, with, listing)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), "chat: ")})
		return chat.Conversation{}, false
	}
	return conv, true
}

func (h ChatHandler) respondError(c *gin.Context, err error, op string, conv chat.Conversation) {
	if h.Logger != nil {
		h.Logger.Error(op+" failed", "user_id", conv.Self, "with_user_id", conv.Counterparty, "listing_id", conv.Listing, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

var _ ChatHTTP = ChatHandler{}
