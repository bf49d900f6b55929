package redislock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a SETNX-based distributed lock. Worker replicas use it so each
// sweep cycle runs on a single instance; the TTL guards against a holder
// dying without releasing.
type Lock struct {
	client *redis.Client
}

func New(client *redis.Client) *Lock {
	return &Lock{client: client}
}

func NewFromAddr(addr string) *Lock {
	return &Lock{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, "lock:"+key, "1", ttl).Result()
}

func (l *Lock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, "lock:"+key).Err()
}

func (l *Lock) Close() error {
	return l.client.Close()
}
