package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
)

// snapshotCache wraps a Store so that backend failures never fail a request:
// read errors become misses and write or delete errors are only logged.
type snapshotCache struct {
	store   domainCache.Store
	keys    domainCache.Keys
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newSnapshotCache(store domainCache.Store, prefix string, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *snapshotCache {
	return &snapshotCache{
		store:   store,
		keys:    domainCache.Keys{Prefix: prefix},
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func lookup[T any](ctx context.Context, c *snapshotCache, kind, key string) (T, bool) {
	v, err := domainCache.GetJSON[T](ctx, c.store, key)
	if err != nil {
		if !errors.Is(err, domainCache.ErrMiss) {
			c.logger.Warn("Cache read failed, treating as miss",
				zap.String("key", key),
				zap.Error(err))
		}
		c.metrics.RecordCacheLookup(kind, false)
		var zero T
		return zero, false
	}
	c.metrics.RecordCacheLookup(kind, true)
	return v, true
}

func (c *snapshotCache) put(ctx context.Context, key string, v any) {
	if err := domainCache.SetJSON(ctx, c.store, key, v, c.ttl); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (c *snapshotCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err))
	}
}
