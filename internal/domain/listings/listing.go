package listings

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"campusmarket/internal/domain/shared/ids"
)

var (
	ErrTitleRequired     = errors.New("listings: title is required")
	ErrCategoryRequired  = errors.New("listings: category is required")
	ErrConditionRequired = errors.New("listings: condition is required")
	ErrInvalidPrice      = errors.New("listings: price must be zero or positive")
	ErrNotFound          = errors.New("listings: not found")
)

// Categories and conditions offered by the post form.
var (
	Categories = []string{"Books", "Notes", "Electronics", "Stationery", "Other"}
	Conditions = []string{"New", "Like New", "Good", "Fair"}
)

// Listing is an item for sale as served by the catalog endpoint.
type Listing struct {
	ID          ids.ID        `json:"id"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Condition   string        `json:"condition"`
	Price       float64       `json:"price"`
	Description string        `json:"description,omitempty"`
	Seller      string        `json:"seller"`
	SellerID    ids.ID        `json:"seller_id"`
	Email       string        `json:"email,omitempty"`
	Image       string        `json:"image,omitempty"`
	CreatedAt   ids.Timestamp `json:"createdAt"`
}

// OwnedBy reports whether the user is the seller.
func (l Listing) OwnedBy(userID ids.ID) bool {
	return !userID.IsZero() && l.SellerID == userID
}

// Draft returns the editable fields of l.
func (l Listing) Draft() Draft {
	return Draft{
		Title:       l.Title,
		Category:    l.Category,
		Condition:   l.Condition,
		Price:       l.Price,
		Description: l.Description,
		Image:       l.Image,
	}
}

// ContactURL builds the mailto link shown next to a listing.
func (l Listing) ContactURL() string {
	subject := "Inquiry about: " + l.Title
	body := fmt.Sprintf("Hi %s,\n\nI'm interested in your listing on Campus Market Place.\n\nRegards,", l.Seller)
	return "mailto:" + url.PathEscape(l.Email) +
		"?subject=" + url.PathEscape(subject) +
		"&body=" + url.PathEscape(body)
}

// Draft is the writable part of a listing used by post and edit.
type Draft struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

// Normalized trims free-text fields.
func (d Draft) Normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.Condition = strings.TrimSpace(d.Condition)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return ErrTitleRequired
	case strings.TrimSpace(d.Category) == "":
		return ErrCategoryRequired
	case strings.TrimSpace(d.Condition) == "":
		return ErrConditionRequired
	case d.Price < 0:
		return ErrInvalidPrice
	}
	return nil
}
