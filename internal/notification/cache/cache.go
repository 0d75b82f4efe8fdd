// Package cache keeps per-principal unread counts in Redis so the badge
// endpoint doesn't hit the ledger on every poll.
//
// The cache is an optimization, never an authority: every value in it was
// computed from the readBy ledger, zero counts are never cached (so an
// empty badge always re-verifies against the ledger), and every failure
// degrades to a recount. Mutation paths invalidate the affected principals;
// bulk and broadcast creates touch an unbounded audience, so those rely on
// the TTL instead.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

const keyPrefix = "addiscares:unread:"

// UnreadCache is a TTL'd unread-count cache. A nil *UnreadCache is a valid
// no-op so wiring doesn't need conditionals when Redis is not configured.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *UnreadCache {
	if client == nil {
		return nil
	}
	return &UnreadCache{client: client, ttl: ttl}
}

// Get returns the cached count and whether it was present.
func (c *UnreadCache) Get(ctx context.Context, user domain.PrincipalID) (int, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	val, err := c.client.Get(ctx, keyPrefix+user.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		// Corrupt entry; treat as a miss and let the caller overwrite it.
		return 0, false, nil
	}
	return count, true, nil
}

// Set stores a count. Zero counts are deleted instead of stored so they are
// always recomputed from the ledger.
func (c *UnreadCache) Set(ctx context.Context, user domain.PrincipalID, count int) error {
	if c == nil {
		return nil
	}
	key := keyPrefix + user.String()
	if count == 0 {
		return c.client.Del(ctx, key).Err()
	}
	return c.client.Set(ctx, key, strconv.Itoa(count), c.ttl).Err()
}

// Invalidate drops the cached counts for the given principals.
func (c *UnreadCache) Invalidate(ctx context.Context, users ...domain.PrincipalID) error {
	if c == nil || len(users) == 0 {
		return nil
	}
	keys := make([]string, len(users))
	for i, u := range users {
		keys[i] = keyPrefix + u.String()
	}
	return c.client.Del(ctx, keys...).Err()
}
