package listings

import (
	"time"

	"campusmarket/internal/domain/shared/ids"
)

// DemoSellerID marks fixture listings that have no real seller account.
const DemoSellerID ids.ID = "-1"

// SampleListings is shown when the catalog endpoint cannot be reached.
func SampleListings(now time.Time) []Listing {
	ago := func(d time.Duration) ids.Timestamp { return ids.At(now.Add(-d)) }
	return []Listing{
		{ID: "demo-1", Title: "Linear Algebra Textbook", Category: "Books", Condition: "Good", Price: 350, Description: "Strang 5th Ed., highlights in chapters 1-3.", Image: "image/phy.jpg", Seller: "Demo User", SellerID: DemoSellerID, Email: "demo@example.edu", CreatedAt: ago(48 * time.Hour)},
		{ID: "demo-2", Title: "Physics Notes - Mechanics", Category: "Notes", Condition: "Like New", Price: 150, Description: "Clean, neatly organized notes.", Image: "image/note.jpg", Seller: "Demo User", SellerID: DemoSellerID, Email: "demo@example.edu", CreatedAt: ago(8 * time.Hour)},
		{ID: "demo-3", Title: "Scientific Calculator FX-991ES", Category: "Electronics", Condition: "Like New", Price: 900, Description: "Barely used, includes cover.", Image: "image/calculator.jpg", Seller: "Demo User", SellerID: DemoSellerID, Email: "demo@example.edu", CreatedAt: ago(4 * time.Hour)},
		{ID: "demo-4", Title: "Stationery Bundle", Category: "Stationery", Condition: "New", Price: 250, Description: "Pens, pencils, highlighters.", Image: "image/stationary.jpg", Seller: "Demo User", SellerID: DemoSellerID, Email: "demo@example.edu", CreatedAt: ago(3 * time.Hour)},
		{ID: "demo-5", Title: "Dorm Lamp", Category: "Other", Condition: "Fair", Price: 200, Description: "Works fine, small scratch on base.", Image: "image/lamp.jpg", Seller: "Demo User", SellerID: DemoSellerID, Email: "demo@example.edu", CreatedAt: ago(30 * time.Minute)},
	}
}
