package redis

import (
	"context"
	"time"
)

const seenKey = "transcriber:seen_file_ids"

// SeenCache keeps the set of already-stored file_ids in Redis so repeated
// runs can filter the source listing without re-querying the record store.
// It is an accelerator only; every method degrades to a miss on error.
type SeenCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewSeenCache(client RedisClient, ttl time.Duration) *SeenCache {
	return &SeenCache{client: client, ttl: ttl}
}

// Get returns the cached id set. ok is false when the cache is empty or
// unreachable, in which case the caller should fall back to the store.
func (c *SeenCache) Get(ctx context.Context) (map[string]struct{}, bool) {
	members, err := c.client.SMembers(ctx, seenKey)
	if err != nil || len(members) == 0 {
		return nil, false
	}
	ids := make(map[string]struct{}, len(members))
	for _, m := range members {
		ids[m] = struct{}{}
	}
	return ids, true
}

// Put replaces the cached set with ids and refreshes the TTL.
func (c *SeenCache) Put(ctx context.Context, ids map[string]struct{}) error {
	if err := c.client.Del(ctx, seenKey); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(ids))
	for id := range ids {
		members = append(members, id)
	}
	if err := c.client.SAdd(ctx, seenKey, members...); err != nil {
		return err
	}
	return c.client.Expire(ctx, seenKey, c.ttl)
}

// Add marks a single file_id as seen.
func (c *SeenCache) Add(ctx context.Context, fileID string) error {
	if err := c.client.SAdd(ctx, seenKey, fileID); err != nil {
		return err
	}
	return c.client.Expire(ctx, seenKey, c.ttl)
}

// Invalidate drops the cached set.
func (c *SeenCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, seenKey)
}
