package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "medinsight:usage:"

// Counter keeps usage counts in redis. INCR is atomic, so the quota holds
// across any number of API instances.
type Counter struct {
	rdb *goredis.Client
	ttl time.Duration
}

// Connect dials and pings redis.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewCounter wraps a connected client. A positive ttl lets session keys
// expire with the session; zero keeps them forever.
func NewCounter(rdb *goredis.Client, ttl time.Duration) *Counter {
	return &Counter{rdb: rdb, ttl: ttl}
}

func (c *Counter) Get(ctx context.Context, key string) (int, error) {
	n, err := c.rdb.Get(ctx, keyPrefix+key).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return n, nil
}

func (c *Counter) Increment(ctx context.Context, key string) (int, error) {
	k := keyPrefix + key
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if c.ttl > 0 {
		pipe.Expire(ctx, k, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return int(incr.Val()), nil
}

// decrScript floors at zero so a stray release cannot mint extra quota.
var decrScript = goredis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
  return redis.call('DECR', KEYS[1])
end
return 0`)

func (c *Counter) Decrement(ctx context.Context, key string) error {
	if err := decrScript.Run(ctx, c.rdb, []string{keyPrefix + key}).Err(); err != nil {
		return fmt.Errorf("redis decr %s: %w", key, err)
	}
	return nil
}

// Check pings redis for the health endpoint.
func (c *Counter) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
