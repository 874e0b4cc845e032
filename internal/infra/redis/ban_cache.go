package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BanLoader loads the full banned-id set for a source from the backing
// store (e.g. Postgres).
type BanLoader interface {
	ListBanned(ctx context.Context, source string) ([]string, error)
	Ban(ctx context.Context, questionID, source string) error
	Unban(ctx context.Context, questionID, source string) error
}

// BanCache caches banned question ids in Redis (one set per source)
// and falls back to the loader on cache miss. Writes go through to the
// loader and update the cache. A sentinel member keeps empty ban lists
// distinguishable from unloaded ones.
type BanCache struct {
	client *redis.Client
	loader BanLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const banSetSentinel = "__loaded__"

func NewBanCache(client *redis.Client, loader BanLoader, ttl time.Duration) *BanCache {
	return &BanCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *BanCache) IsBanned(ctx context.Context, questionID, source string) (bool, error) {
	key := c.key(source)

	loaded, err := c.client.Exists(ctx, key).Result()
	if err == nil && loaded > 0 {
		return c.client.SIsMember(ctx, key, questionID).Result()
	}

	_, err, _ = c.sf.Do(source, func() (interface{}, error) {
		// Re-check in case another goroutine filled the set.
		if n, err := c.client.Exists(ctx, key).Result(); err == nil && n > 0 {
			return nil, nil
		}
		ids, err := c.loader.ListBanned(ctx, source)
		if err != nil {
			return nil, err
		}
		members := make([]interface{}, 0, len(ids)+1)
		members = append(members, banSetSentinel)
		for _, id := range ids {
			members = append(members, id)
		}
		pipe := c.client.Pipeline()
		pipe.SAdd(ctx, key, members...)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttlWithJitter())
		}
		_, err = pipe.Exec(ctx)
		return nil, err
	})
	if err != nil {
		return false, err
	}
	return c.client.SIsMember(ctx, key, questionID).Result()
}

// Ban writes through to the loader and updates the cached set.
func (c *BanCache) Ban(ctx context.Context, questionID, source string) error {
	if err := c.loader.Ban(ctx, questionID, source); err != nil {
		return err
	}
	return c.client.SAdd(ctx, c.key(source), questionID).Err()
}

// Unban writes through to the loader and updates the cached set.
func (c *BanCache) Unban(ctx context.Context, questionID, source string) error {
	if err := c.loader.Unban(ctx, questionID, source); err != nil {
		return err
	}
	return c.client.SRem(ctx, c.key(source), questionID).Err()
}

func (c *BanCache) key(source string) string {
	return "trivia:bans:" + source
}

func (c *BanCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
