package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache is a string key/value store with expiry. A miss is ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache adapts a go-redis client.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

const (
	keyPrefix = "isbn:v1:"
	notFound  = "-"
	opTimeout = 150 * time.Millisecond
)

// Cached remembers answers of next, including "not found". Cache failures
// are logged and bypassed; they never fail a lookup.
type Cached struct {
	next  Client
	cache Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCached(next Client, cache Cache, ttl time.Duration, log logrus.FieldLogger) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *Cached) Lookup(ctx context.Context, isbn string) (*Volume, error) {
	key := keyPrefix + isbn

	if v, ok := c.get(ctx, key); ok {
		if v == notFound {
			return nil, ErrNotFound
		}
		var vol Volume
		if err := json.Unmarshal([]byte(v), &vol); err == nil {
			return &vol, nil
		}
	}

	vol, err := c.next.Lookup(ctx, isbn)
	switch {
	case errors.Is(err, ErrNotFound):
		c.set(ctx, key, notFound)
		return nil, err
	case err != nil:
		return nil, err
	}

	if raw, err := json.Marshal(vol); err == nil {
		c.set(ctx, key, string(raw))
	}
	return vol, nil
}

func (c *Cached) get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	v, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("isbn cache get failed; bypassing")
		return "", false
	}
	return v, ok
}

func (c *Cached) set(ctx context.Context, key, value string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("isbn cache set failed")
	}
}
