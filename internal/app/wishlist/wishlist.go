// Package wishlist keeps the locally saved listing ids.
package wishlist

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"campusmarket/internal/app/session"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

// Key is the storage key shared with the browser client.
const Key = "cmp_wishlist_v1"

// Wishlist is a set of listing ids written through to a Store on every
// change. It is never synced with the server.
type Wishlist struct {
	store session.Store

	mu    sync.RWMutex
	items map[ids.ID]struct{}
	order []ids.ID
}

// Load reads the persisted set. An unreadable entry yields an empty list.
func Load(store session.Store) (*Wishlist, error) {
	w := &Wishlist{store: store, items: make(map[ids.ID]struct{})}
	if store == nil {
		return w, nil
	}
	raw, ok, err := store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("wishlist: read: %w", err)
	}
	if !ok {
		return w, nil
	}
	var saved []ids.ID
	if err := json.Unmarshal(raw, &saved); err != nil {
		return w, nil
	}
	for _, id := range saved {
		w.add(id)
	}
	return w, nil
}

// Toggle adds or removes id and reports whether it is now saved.
func (w *Wishlist) Toggle(id ids.ID) (bool, error) {
	if id.IsZero() {
		return false, ids.ErrInvalidID
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, saved := w.items[id]
	if saved {
		w.remove(id)
	} else {
		w.add(id)
	}
	if err := w.persist(); err != nil {
		return saved, err
	}
	return !saved, nil
}

func (w *Wishlist) Has(id ids.ID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.items[id]
	return ok
}

func (w *Wishlist) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}

// IDs returns the saved ids in insertion order.
func (w *Wishlist) IDs() []ids.ID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]ids.ID(nil), w.order...)
}

// Filter keeps the saved listings, preserving catalog order.
func (w *Wishlist) Filter(items []listings.Listing) []listings.Listing {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]listings.Listing, 0, len(w.items))
	for _, item := range items {
		if _, ok := w.items[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func (w *Wishlist) add(id ids.ID) {
	if _, ok := w.items[id]; ok {
		return
	}
	w.items[id] = struct{}{}
	w.order = append(w.order, id)
}

func (w *Wishlist) remove(id ids.ID) {
	delete(w.items, id)
	if idx := slices.Index(w.order, id); idx >= 0 {
		w.order = slices.Delete(w.order, idx, idx+1)
	}
}

func (w *Wishlist) persist() error {
	if w.store == nil {
		return nil
	}
	raw, err := json.Marshal(w.order)
	if err != nil {
		return err
	}
	if err := w.store.Set(Key, raw); err != nil {
		return fmt.Errorf("wishlist: write: %w", err)
	}
	return nil
}
