package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

// ListingStore persists sandbox listings.
type ListingStore interface {
	List(ctx context.Context) ([]listings.Listing, error)
	ByID(ctx context.Context, id ids.ID) (listings.Listing, error)
	Create(ctx context.Context, item listings.Listing) (listings.Listing, error)
	Save(ctx context.Context, item listings.Listing) error
	Delete(ctx context.Context, id ids.ID) error
}

type ListingHandler struct {
	Listings ListingStore
	Logger   *slog.Logger
}

func (h ListingHandler) List(c *gin.Context) {
	items, err := h.Listings.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "list listings")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	created, err := h.Listings.Create(c.Request.Context(), listings.Listing{
		Title:       draft.Title,
		Category:    draft.Category,
		Condition:   draft.Condition,
		Price:       draft.Price,
		Description: draft.Description,
		Image:       draft.Image,
		Seller:      p.DisplayName(),
		SellerID:    p.ID,
		Email:       p.Email,
	})
	if err != nil {
		h.respondError(c, err, "create listing")
		return
	}
	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", created.ID, "seller_id", p.ID)
	}
	c.JSON(http.StatusCreated, created)
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	item, ok := h.ownedListing(c, p)
	if !ok {
		return
	}
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	item.Title = draft.Title
	item.Category = draft.Category
	item.Condition = draft.Condition
	item.Price = draft.Price
	item.Description = draft.Description
	if draft.Image != "" {
		item.Image = draft.Image
	}
	if err := h.Listings.Save(c.Request.Context(), item); err != nil {
		h.respondError(c, err, "update listing")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	item, ok := h.ownedListing(c, p)
	if !ok {
		return
	}
	if err := h.Listings.Delete(c.Request.Context(), item.ID); err != nil {
		h.respondError(c, err, "delete listing")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ListingHandler) ownedListing(c *gin.Context, p principal) (listings.Listing, bool) {
	id, err := ids.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return listings.Listing{}, false
	}
	item, err := h.Listings.ByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "load listing")
		return listings.Listing{}, false
	}
	if !item.OwnedBy(p.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the seller"})
		return listings.Listing{}, false
	}
	return item, true
}

func bindDraft(c *gin.Context) (listings.Draft, bool) {
	var draft listings.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return listings.Draft{}, false
	}
	draft = draft.Normalized()
	if err := draft.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.TrimPrefix(err.Error(), "listings: ")})
		return listings.Draft{}, false
	}
	return draft, true
}

func (h ListingHandler) respondError(c *gin.Context, err error, op string) {
	if errors.Is(err, listings.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if h.Logger != nil {
		h.Logger.Error(op+" failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

var _ ListingHTTP = ListingHandler{}
