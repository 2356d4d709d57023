package memory

import (
	"context"
	"sync"
)

// FingerprintIndex is an in-memory fingerprint-to-question-id index used for
// write-time duplicate checks when Redis is not configured.
type FingerprintIndex struct {
	mu        sync.RWMutex
	byCountry map[string]map[string]string
}

func NewFingerprintIndex() *FingerprintIndex {
	return &FingerprintIndex{byCountry: make(map[string]map[string]string)}
}

func (x *FingerprintIndex) Lookup(_ context.Context, countryID string, fingerprints []string) (map[string]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries, ok := x.byCountry[countryID]
	if !ok {
		return nil, nil
	}
	hits := make(map[string]string)
	for _, fp := range fingerprints {
		if id, ok := entries[fp]; ok {
			hits[fp] = id
		}
	}
	return hits, nil
}

func (x *FingerprintIndex) Store(_ context.Context, countryID string, entries map[string]string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	existing, ok := x.byCountry[countryID]
	if !ok {
		existing = make(map[string]string)
		x.byCountry[countryID] = existing
	}
	for fp, id := range entries {
		existing[fp] = id
	}
	return nil
}
