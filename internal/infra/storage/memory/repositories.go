package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"campusmarket/internal/domain/chat"
	"campusmarket/internal/domain/listings"
	"campusmarket/internal/domain/shared/ids"
)

// ListingRepository is an in-memory listing table for the sandbox server.
type ListingRepository struct {
	mu     sync.RWMutex
	items  map[ids.ID]listings.Listing
	nextID int64
	now    func() time.Time
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[ids.ID]listings.Listing), now: time.Now}
}

// List returns every listing, newest first.
func (r *ListingRepository) List(ctx context.Context) ([]listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]listings.Listing, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ListingRepository) ByID(ctx context.Context, id ids.ID) (listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return listings.Listing{}, listings.ErrNotFound
	}
	return item, nil
}

// Create assigns the id and creation time.
func (r *ListingRepository) Create(ctx context.Context, item listings.Listing) (listings.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = ids.ID(strconv.FormatInt(r.nextID, 10))
	if item.CreatedAt.IsZero() {
		item.CreatedAt = ids.At(r.now().UTC())
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *ListingRepository) Save(ctx context.Context, item listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return listings.ErrNotFound
	}
	r.items[item.ID] = item
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return listings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// MessageRepository is the sandbox message log plus per-reader read marks.
type MessageRepository struct {
	mu     sync.RWMutex
	log    []chat.Message
	marks  chat.ReadMarks
	nextID int64
	now    func() time.Time
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{marks: make(chat.ReadMarks), now: time.Now}
}

func (r *MessageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.log)
}

// Append assigns the id and timestamp and adds msg to the log.
func (r *MessageRepository) Append(ctx context.Context, msg chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = ids.ID(strconv.FormatInt(r.nextID, 10))
	msg.CreatedAt = ids.At(r.now().UTC())
	r.log = append(r.log, msg)
	return msg, nil
}

// Thread returns conv's messages oldest first.
func (r *MessageRepository) Thread(ctx context.Context, conv chat.Conversation) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.Message, 0)
	for _, msg := range r.log {
		if msg.ListingID == conv.Listing && conv.Involves(msg) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *MessageRepository) Inbox(ctx context.Context, self ids.ID, names func(ids.ID) string) ([]chat.InboxEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return chat.Aggregate(self, r.log, r.marks, names), nil
}

// MarkRead moves conv.Self's read mark to the newest message of the thread.
func (r *MessageRepository) MarkRead(ctx context.Context, conv chat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if latest := chat.LatestFrom(r.log, conv); !latest.IsZero() {
		r.marks[conv] = latest
	}
	return nil
}
