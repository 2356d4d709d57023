package memory

import (
	"context"
	"testing"
	"time"
)

func TestRecentCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewRecentCacheWithClock(time.Hour, func() time.Time { return now })

	if err := cache.MarkUsed(ctx, "session-1", []string{"q1", "q2"}); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	used, err := cache.RecentlyUsed(ctx, "session-1")
	if err != nil {
		t.Fatalf("recently used: %v", err)
	}
	if !used["q1"] || !used["q2"] {
		t.Fatalf("expected q1 and q2 marked, got %v", used)
	}

	// Sessions are isolated.
	other, _ := cache.RecentlyUsed(ctx, "session-2")
	if len(other) != 0 {
		t.Fatalf("expected empty set for other session, got %v", other)
	}

	// Advance past the TTL; entries evict.
	now = now.Add(2 * time.Hour)
	used, _ = cache.RecentlyUsed(ctx, "session-1")
	if len(used) != 0 {
		t.Fatalf("expected expired entries evicted, got %v", used)
	}
}

func TestFingerprintIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := NewFingerprintIndex()

	if err := idx.Store(ctx, "ke", map[string]string{"fp-a": "q1", "fp-b": "q2"}); err != nil {
		t.Fatalf("store: %v", err)
	}

	hits, err := idx.Lookup(ctx, "ke", []string{"fp-a", "fp-missing"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(hits) != 1 || hits["fp-a"] != "q1" {
		t.Fatalf("expected fp-a hit only, got %v", hits)
	}

	// Country scopes do not bleed into each other.
	hits, _ = idx.Lookup(ctx, "fr", []string{"fp-a"})
	if len(hits) != 0 {
		t.Fatalf("expected no hits for other country, got %v", hits)
	}
}
