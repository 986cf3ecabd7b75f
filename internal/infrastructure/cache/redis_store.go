package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
)

// RedisStore is the shared cache used in production. Invalidation by one
// instance is visible to every other instance.
type RedisStore struct {
	client *redis.Client
}

var _ domainCache.Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainCache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
