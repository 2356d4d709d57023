package app

import (
	"context"

	"geoquiz-pipeline/internal/domain"
)

// QuestionStore abstracts the external question table (Postgres, in-memory).
// List must return rows ordered by creation time ascending, then id, so that
// "keep oldest" is well defined; ties on the timestamp resolve to the first
// row in returned order.
type QuestionStore interface {
	List(ctx context.Context, filter domain.QuestionFilter) ([]domain.PersistedQuestion, error)
	// Upsert inserts or replaces one batch of rows keyed by id.
	Upsert(ctx context.Context, batch []domain.PersistedQuestion) error
	// Delete removes one batch of rows by id. The store offers no cross-batch
	// transaction; callers own batching and partial-failure reporting.
	Delete(ctx context.Context, ids []string) error
}

// CountryCatalog provides read-only access to the country fact table.
type CountryCatalog interface {
	All(ctx context.Context) ([]domain.CountryFact, error)
	Get(ctx context.Context, id string) (domain.CountryFact, error)
}

// RecentCache tracks question ids recently served within a session so
// immediate repeats can be avoided. It is advisory, not a correctness
// mechanism: selection proceeds even when the cache is unavailable.
type RecentCache interface {
	MarkUsed(ctx context.Context, sessionID string, questionIDs []string) error
	RecentlyUsed(ctx context.Context, sessionID string) (map[string]bool, error)
}

// FingerprintIndex maps fingerprints to persisted question ids per country,
// enabling check-and-skip deduplication at write time. The batch cleanup pass
// remains the safety net for races and a cold index.
type FingerprintIndex interface {
	Lookup(ctx context.Context, countryID string, fingerprints []string) (map[string]string, error)
	Store(ctx context.Context, countryID string, entries map[string]string) error
}
