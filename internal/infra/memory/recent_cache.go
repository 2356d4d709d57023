package memory

import (
	"context"
	"sync"
	"time"
)

// RecentCache is an in-memory implementation of app.RecentCache: a
// session-scoped set of question ids with per-entry TTL eviction. State is
// held per instance, never process-wide.
type RecentCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]map[string]time.Time // session -> id -> expiry
}

func NewRecentCache(ttl time.Duration) *RecentCache {
	return newRecentCacheWithClock(ttl, time.Now)
}

// NewRecentCacheWithClock is test-only for deterministic expiry.
func NewRecentCacheWithClock(ttl time.Duration, clock func() time.Time) *RecentCache {
	return newRecentCacheWithClock(ttl, clock)
}

func newRecentCacheWithClock(ttl time.Duration, clock func() time.Time) *RecentCache {
	return &RecentCache{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]map[string]time.Time),
	}
}

func (c *RecentCache) MarkUsed(_ context.Context, sessionID string, questionIDs []string) error {
	expiry := c.clock().Add(c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.sessions[sessionID]
	if !ok {
		entries = make(map[string]time.Time)
		c.sessions[sessionID] = entries
	}
	for _, id := range questionIDs {
		entries[id] = expiry
	}
	return nil
}

func (c *RecentCache) RecentlyUsed(_ context.Context, sessionID string) (map[string]bool, error) {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	used := make(map[string]bool, len(entries))
	for id, expiry := range entries {
		if expiry.After(now) {
			used[id] = true
		} else {
			delete(entries, id)
		}
	}
	if len(entries) == 0 {
		delete(c.sessions, sessionID)
	}
	return used, nil
}
