// Package catalog loads, searches and edits marketplace listings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
	"campusmarket/internal/domain/user"
)

var (
	ErrLoginRequired = errors.New("catalog: please login to post an item")
	ErrNotOwner      = errors.New("catalog: only the seller can change this listing")
)

// API is the remote listings service.
type API interface {
	Listings(ctx context.Context) ([]listings.Listing, error)
	CreateListing(ctx context.Context, draft listings.Draft) (listings.Listing, error)
	UpdateListing(ctx context.Context, id ids.ID, draft listings.Draft) (listings.Listing, error)
	DeleteListing(ctx context.Context, id ids.ID) error
}

type Identity interface {
	Current() (user.Identity, bool)
}

// Snapshot is the loaded catalog. Demo is set when the server was
// unreachable and the built-in samples are shown instead.
type Snapshot struct {
	Items    []listings.Listing
	Demo     bool
	LoadErr  error
	LoadedAt time.Time
}

type Service struct {
	API     API
	Session Identity
	Logger  *slog.Logger
	Now     func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot
}

// Load fetches every listing. On failure the sample listings are used so
// the catalog is never blank; the error is kept on the snapshot.
func (s *Service) Load(ctx context.Context) Snapshot {
	items, err := s.API.Listings(ctx)
	snap := Snapshot{Items: items, LoadedAt: s.now()}
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("listings unavailable, showing samples", "error", err)
		}
		snap = Snapshot{Items: listings.SampleListings(snap.LoadedAt), Demo: true, LoadErr: err, LoadedAt: snap.LoadedAt}
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return s.Snapshot()
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snapshot
	snap.Items = append([]listings.Listing(nil), snap.Items...)
	return snap
}

// Search applies the catalog filters to the loaded snapshot.
func (s *Service) Search(params listings.CatalogParams) []listings.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listings.Filter(s.snapshot.Items, params)
}

func (s *Service) Find(id ids.ID) (listings.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.snapshot.Items {
		if item.ID == id {
			return item, nil
		}
	}
	return listings.Listing{}, fmt.Errorf("%w: %s", listings.ErrNotFound, id)
}

// Owned reports whether the signed-in user sells item.
func (s *Service) Owned(item listings.Listing) bool {
	current, ok := s.current()
	return ok && item.OwnedBy(current.ID)
}

func (s *Service) Post(ctx context.Context, draft listings.Draft) (listings.Listing, error) {
	if _, ok := s.current(); !ok {
		return listings.Listing{}, ErrLoginRequired
	}
	draft = draft.Normalized()
	if err := draft.Validate(); err != nil {
		return listings.Listing{}, err
	}
	created, err := s.API.CreateListing(ctx, draft)
	if err != nil {
		return listings.Listing{}, fmt.Errorf("catalog: post: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("listing posted", "listing_id", created.ID)
	}
	s.Load(ctx)
	return created, nil
}

func (s *Service) Edit(ctx context.Context, id ids.ID, draft listings.Draft) (listings.Listing, error) {
	if err := s.ensureOwner(id); err != nil {
		return listings.Listing{}, err
	}
	draft = draft.Normalized()
	if err := draft.Validate(); err != nil {
		return listings.Listing{}, err
	}
	updated, err := s.API.UpdateListing(ctx, id, draft)
	if err != nil {
		return listings.Listing{}, fmt.Errorf("catalog: edit: %w", err)
	}
	s.Load(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id ids.ID) error {
	if err := s.ensureOwner(id); err != nil {
		return err
	}
	if err := s.API.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("catalog: delete: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("listing deleted", "listing_id", id)
	}
	s.Load(ctx)
	return nil
}

// ensureOwner checks ownership against the loaded snapshot. Listings that
// are not loaded are left for the server to authorize.
func (s *Service) ensureOwner(id ids.ID) error {
	current, ok := s.current()
	if !ok {
		return ErrLoginRequired
	}
	item, err := s.Find(id)
	if err != nil {
		return nil
	}
	if !item.OwnedBy(current.ID) {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) current() (user.Identity, bool) {
	if s.Session == nil {
		return user.Identity{}, false
	}
	return s.Session.Current()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
