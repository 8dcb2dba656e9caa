package repository

import (
	"context"
	"sync"
	"time"

	"venuebook/internal/models"
)

type memoryEntry struct {
	state     models.UserState
	expiresAt time.Time
}

// MemoryStateRepository keeps states in process. Entries expire after ttl;
// a zero ttl keeps them forever.
type MemoryStateRepository struct {
	states     sync.Map
	mu         sync.Mutex
	rateLimits map[int64]*rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		ttl:        ttl,
		rateLimits: make(map[int64]*rateLimitEntry),
		now:        time.Now,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	val, ok := r.states.Load(userID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.states.Delete(userID)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

// SetState stores a copy, so later changes by the caller are not visible
// until the next SetState.
func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	entry := &memoryEntry{state: *state}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.states.Store(state.UserID, entry)
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, userID int64) error {
	r.states.Delete(userID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[userID] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}
