package listings

import (
	"sort"
	"strings"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByNewest    CatalogSort = "newest"
	SortByPriceAsc  CatalogSort = "priceAsc"
	SortByPriceDesc CatalogSort = "priceDesc"
	SortByTitle     CatalogSort = "title"
)

// CatalogParams describe the client-side catalog filters.
type CatalogParams struct {
	Query     string
	Category  string
	Condition string
	Sort      CatalogSort
}

// Normalized returns a sanitized copy of params.
func (p CatalogParams) Normalized() CatalogParams {
	normalized := p
	normalized.Query = strings.TrimSpace(strings.ToLower(normalized.Query))
	normalized.Category = strings.TrimSpace(normalized.Category)
	normalized.Condition = strings.TrimSpace(normalized.Condition)
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByTitle, SortByNewest:
	default:
		normalized.Sort = SortByNewest
	}
	return normalized
}

// Filter applies params to items and returns a sorted copy.
func Filter(items []Listing, params CatalogParams) []Listing {
	params = params.Normalized()
	out := make([]Listing, 0, len(items))
	for _, item := range items {
		if !matches(item, params) {
			continue
		}
		out = append(out, item)
	}
	switch params.Sort {
	case SortByPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortByPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	}
	return out
}

func matches(item Listing, params CatalogParams) bool {
	if params.Query != "" {
		haystack := strings.ToLower(strings.Join([]string{item.Title, item.Description, item.Category, item.Seller}, " "))
		if !strings.Contains(haystack, params.Query) {
			return false
		}
	}
	if params.Category != "" && item.Category != params.Category {
		return false
	}
	if params.Condition != "" && item.Condition != params.Condition {
		return false
	}
	return true
}
