package render

import (
	"fmt"
	"strconv"
	"strings"

	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

// Price formats a rupee amount without trailing zeros.
func Price(p float64) string {
	return "₹" + strconv.FormatFloat(p, 'f', -1, 64)
}

// Listings renders catalog cards. saved marks wishlisted items and owned
// adds the seller's actions.
func Listings(items []listings.Listing, saved func(ids.ID) bool, owned func(listings.Listing) bool) string {
	if len(items) == 0 {
		return emptyStyle.Render(NoListings)
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		heart := " "
		if saved != nil && saved(item.ID) {
			heart = "♥"
		}
		fmt.Fprintf(&b, "%s %s %s %s\n", heart, mutedStyle.Render("#"+item.ID.String()), titleStyle.Render(item.Title), priceStyle.Render(Price(item.Price)))
		fmt.Fprintf(&b, "  %s • %s\n", item.Category, item.Condition)
		if desc := strings.TrimSpace(item.Description); desc != "" {
			fmt.Fprintf(&b, "  %s\n", desc)
		}
		seller := "  " + mutedStyle.Render("Seller: "+item.Seller)
		if owned != nil && owned(item) {
			seller += "  " + meStyle.Render("[yours: edit/delete]")
		}
		b.WriteString(seller)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Wishlist renders saved items as "title" over "price • category • condition".
func Wishlist(items []listings.Listing) string {
	if len(items) == 0 {
		return emptyStyle.Render(WishlistIsEmpty)
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("#"+item.ID.String()), titleStyle.Render(item.Title))
		fmt.Fprintf(&b, "  %s • %s • %s\n", Price(item.Price), item.Category, item.Condition)
	}
	return strings.TrimRight(b.String(), "\n")
}
