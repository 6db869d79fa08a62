package api

import (
	"context"
	"net/http"

	"campusmarket/internal/app/catalog"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

func (c *Client) Listings(ctx context.Context) ([]listings.Listing, error) {
	var out []listings.Listing
	if err := c.do(ctx, http.MethodGet, "/listings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateListing(ctx context.Context, draft listings.Draft) (listings.Listing, error) {
	var out listings.Listing
	if err := c.do(ctx, http.MethodPost, "/listings", nil, draft, &out); err != nil {
		return listings.Listing{}, err
	}
	return out, nil
}

func (c *Client) UpdateListing(ctx context.Context, id ids.ID, draft listings.Draft) (listings.Listing, error) {
	var out listings.Listing
	if err := c.do(ctx, http.MethodPut, "/listings/"+id.String(), nil, draft, &out); err != nil {
		return listings.Listing{}, err
	}
	return out, nil
}

func (c *Client) DeleteListing(ctx context.Context, id ids.ID) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+id.String(), nil, nil, nil)
}

var _ catalog.API = (*Client)(nil)
