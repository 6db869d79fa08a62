package listings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func titles(items []Listing) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Title)
	}
	return out
}

func TestFilterDefaultsToNewestFirst(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := Filter(SampleListings(now), CatalogParams{})
	require.Len(t, out, 5)
	require.Equal(t, "Dorm Lamp", out[0].Title)
	require.Equal(t, "Linear Algebra Textbook", out[4].Title)
}

func TestFilterByQueryCategoryAndCondition(t *testing.T) {
	items := SampleListings(time.Now())

	out := Filter(items, CatalogParams{Query: "  NOTES "})
	require.Equal(t, []string{"Physics Notes - Mechanics"}, titles(out))

	out = Filter(items, CatalogParams{Condition: "Like New", Sort: SortByPriceAsc})
	require.Equal(t, []string{"Physics Notes - Mechanics", "Scientific Calculator FX-991ES"}, titles(out))

	out = Filter(items, CatalogParams{Category: "Books", Condition: "New"})
	require.Empty(t, out)
}

func TestFilterSorts(t *testing.T) {
	items := SampleListings(time.Now())

	out := Filter(items, CatalogParams{Sort: SortByPriceDesc})
	require.Equal(t, float64(900), out[0].Price)

	out = Filter(items, CatalogParams{Sort: SortByTitle})
	require.True(t, strings.HasPrefix(out[0].Title, "Dorm"))
	require.True(t, strings.HasPrefix(out[4].Title, "Stationery"))
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{Title: "Lamp", Category: "Other", Condition: "Fair", Price: 0}
	require.NoError(t, valid.Validate())

	require.ErrorIs(t, Draft{Category: "Other", Condition: "Fair"}.Validate(), ErrTitleRequired)
	require.ErrorIs(t, Draft{Title: "x", Condition: "Fair"}.Validate(), ErrCategoryRequired)
	require.ErrorIs(t, Draft{Title: "x", Category: "Other"}.Validate(), ErrConditionRequired)
	require.ErrorIs(t, Draft{Title: "x", Category: "Other", Condition: "Fair", Price: -1}.Validate(), ErrInvalidPrice)
}

func TestContactURLEscapesSubject(t *testing.T) {
	l := Listing{Title: "Dorm Lamp", Seller: "Ann", Email: "ann@example.edu"}
	link := l.ContactURL()
	require.True(t, strings.HasPrefix(link, "mailto:ann@example.edu?subject=Inquiry%20about:%20Dorm%20Lamp"))
	require.Contains(t, link, "&body=Hi%20Ann%2C")
}

func TestOwnedBy(t *testing.T) {
	l := Listing{SellerID: "4"}
	require.True(t, l.OwnedBy("4"))
	require.False(t, l.OwnedBy("5"))
	require.False(t, Listing{}.OwnedBy(""))
}
