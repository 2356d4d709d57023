package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// FingerprintIndex maps question fingerprints to persisted ids in a Redis
// hash per country, backing the write-time check-and-skip dedup gate. A cold
// or stale index is harmless: the batch cleanup pass remains the safety net.
type FingerprintIndex struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFingerprintIndex builds the index. ttl <= 0 keeps entries until
// explicitly overwritten.
func NewFingerprintIndex(client *redis.Client, ttl time.Duration) *FingerprintIndex {
	return &FingerprintIndex{client: client, ttl: ttl}
}

func (x *FingerprintIndex) Lookup(ctx context.Context, countryID string, fingerprints []string) (map[string]string, error) {
	if len(fingerprints) == 0 {
		return nil, nil
	}
	values, err := x.client.HMGet(ctx, x.key(countryID), fingerprints...).Result()
	if err != nil {
		return nil, err
	}
	hits := make(map[string]string)
	for i, v := range values {
		if id, ok := v.(string); ok && id != "" {
			hits[fingerprints[i]] = id
		}
	}
	return hits, nil
}

func (x *FingerprintIndex) Store(ctx context.Context, countryID string, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(entries))
	for fp, id := range entries {
		fields[fp] = id
	}

	key := x.key(countryID)
	pipe := x.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	if x.ttl > 0 {
		pipe.Expire(ctx, key, x.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (x *FingerprintIndex) key(countryID string) string {
	return "questions:fingerprints:" + countryID
}
