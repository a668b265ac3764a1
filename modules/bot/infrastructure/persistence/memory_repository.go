package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryRepository keeps encoded contexts in process so callers never share a *Context.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryRepository expires contexts ttl after their last save; zero keeps them forever.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

func (r *MemoryRepository) Get(ctx context.Context, userID int64) (*conversation.Context, error) {
	r.mu.Lock()
	entry, ok := r.entries[userID]
	if ok && r.ttl > 0 && !r.now().Before(entry.expires) {
		delete(r.entries, userID)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return conversation.New(userID), nil
	}
	return decode(entry.data)
}

func (r *MemoryRepository) Save(ctx context.Context, c *conversation.Context) error {
	now := r.now()
	c.UpdatedAt = now.UTC()
	data, err := encode(c)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[c.UserID] = memoryEntry{data: data, expires: now.Add(r.ttl)}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
	return nil
}

// Len reports how many contexts are stored, expired ones included.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
