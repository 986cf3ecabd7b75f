package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
)

// NewStore builds the configured store. The redis client is returned so the
// event publisher can share the connection; it is nil for the memory driver.
func NewStore(cfg config.CacheConfig, logger *zap.Logger) (domainCache.Store, *redis.Client, error) {
	switch cfg.Driver {
	case config.CacheDriverMemory:
		store, err := NewMemoryStore(cfg.MemorySize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		logger.Info("Using in-process cache", zap.Int("size", cfg.MemorySize))
		return store, nil, nil

	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		logger.Info("Connected to redis cache", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
		return NewRedisStore(client), client, nil

	default:
		return nil, nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}
