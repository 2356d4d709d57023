package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"geoquiz-pipeline/internal/domain"
)

// StaticCatalog is an app.CountryCatalog backed by a fixed fact slice
// (useful for tests and demo mode). Facts are boundary-validated once at
// construction.
type StaticCatalog struct {
	facts []domain.CountryFact
	byID  map[string]domain.CountryFact
}

func NewStaticCatalog(facts []domain.CountryFact) (*StaticCatalog, error) {
	byID := make(map[string]domain.CountryFact, len(facts))
	for _, f := range facts {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	return &StaticCatalog{facts: facts, byID: byID}, nil
}

func (c *StaticCatalog) All(_ context.Context) ([]domain.CountryFact, error) {
	out := make([]domain.CountryFact, len(c.facts))
	copy(out, c.facts)
	return out, nil
}

func (c *StaticCatalog) Get(_ context.Context, id string) (domain.CountryFact, error) {
	if f, ok := c.byID[id]; ok {
		return f, nil
	}
	return domain.CountryFact{}, fmt.Errorf("%w: %q", domain.ErrCountryNotFound, id)
}

// CatalogLoader fetches the full country catalog from a backing store.
type CatalogLoader interface {
	All(ctx context.Context) ([]domain.CountryFact, error)
}

// CatalogCache wraps a loader with a TTL cache so every pipeline operation
// does not re-read the immutable fact table. Concurrent cold reads collapse
// into a single load.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	facts     []domain.CountryFact
	byID      map[string]domain.CountryFact
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) All(ctx context.Context) ([]domain.CountryFact, error) {
	if facts, ok := c.cached(); ok {
		return facts, nil
	}

	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		if facts, ok := c.cached(); ok {
			return facts, nil
		}
		facts, err := c.loader.All(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]domain.CountryFact, len(facts))
		for _, f := range facts {
			byID[f.ID] = f
		}
		c.mu.Lock()
		c.facts = facts
		c.byID = byID
		c.expiresAt = c.clock().Add(c.ttlWithJitter())
		c.mu.Unlock()
		return facts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CountryFact), nil
}

func (c *CatalogCache) Get(ctx context.Context, id string) (domain.CountryFact, error) {
	if _, err := c.All(ctx); err != nil {
		return domain.CountryFact{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.byID[id]; ok {
		return f, nil
	}
	return domain.CountryFact{}, fmt.Errorf("%w: %q", domain.ErrCountryNotFound, id)
}

func (c *CatalogCache) cached() ([]domain.CountryFact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.facts == nil || !c.expiresAt.After(c.clock()) {
		return nil, false
	}
	return c.facts, true
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
