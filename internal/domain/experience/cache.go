package experience

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "experience:"

// Cache keeps serialized records in Redis. A nil client disables it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates experience cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

// Get returns the cached record, or nil on a miss.
func (c *Cache) Get(ctx context.Context, id string) (*Experience, error) {
	if !c.enabled() {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	exp, err := Deserialize(resp)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// Set stores exp under its identifier
func (c *Cache) Set(ctx context.Context, exp *Experience) error {
	if !c.enabled() {
		return nil
	}

	data, err := json.Marshal(Serialize(*exp))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(exp.ID), data, c.ttl).Err()
}

// Invalidate drops the cached record
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, cacheKey(id)).Err()
}
