package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecentCache is a Redis-backed implementation of app.RecentCache. Entries
// live in a sorted set per session, scored by expiry time, so eviction is a
// range removal rather than a scan. The whole key expires with the session.
type RecentCache struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func NewRecentCache(client *redis.Client, ttl time.Duration) *RecentCache {
	return &RecentCache{client: client, ttl: ttl, clock: time.Now}
}

func (c *RecentCache) MarkUsed(ctx context.Context, sessionID string, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	expiry := float64(c.clock().Add(c.ttl).Unix())
	members := make([]redis.Z, len(questionIDs))
	for i, id := range questionIDs {
		members[i] = redis.Z{Score: expiry, Member: id}
	}

	key := c.key(sessionID)
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RecentCache) RecentlyUsed(ctx context.Context, sessionID string) (map[string]bool, error) {
	key := c.key(sessionID)
	now := strconv.FormatInt(c.clock().Unix(), 10)
	if err := c.client.ZRemRangeByScore(ctx, key, "-inf", now).Err(); err != nil {
		return nil, err
	}
	ids, err := c.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	return used, nil
}

func (c *RecentCache) key(sessionID string) string {
	return "questions:recent:" + sessionID
}
