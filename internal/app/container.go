// Package app wires the portal's infrastructure and use cases. The server and
// the operator CLI share it.
package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/database"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
	providerFactory "github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/usecase"
	"github.com/nexusmerchants/orderforms-stripe/pkg/messaging"
)

// Container 애플리케이션 의존성 컨테이너
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB        *gorm.DB
	Redis     *redis.Client // nil for the memory cache driver
	Store     domainCache.Store
	Messaging messaging.RedisClient // nil unless events are enabled
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Repos     *database.Repositories

	// Gateway is nil when the provider is not configured; use cases then
	// answer with a CONFIGURATION error.
	Gateway provider.BillingGateway

	Events    *usecase.EventEmitter
	Resolver  *usecase.CustomerResolver
	Data      *usecase.BillingDataService
	Mutations *usecase.BillingMutationService
}

// Options tweak how the container is built
type Options struct {
	// Migrate runs the schema migration after connecting
	Migrate bool
	// Factory overrides the billing gateway factory
	Factory *providerFactory.Factory
}

// New connects every backend and builds the use cases. On error everything
// opened so far is closed again.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	// 1. 데이터베이스
	c.DB, err = database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if opts.Migrate {
		if err = database.Migrate(c.DB, logger); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	c.Repos = database.NewRepositories(c.DB, cfg.Users)

	// 2. 캐시
	c.Store, c.Redis, err = cache.NewStore(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	// 3. 메트릭
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	// 4. 이벤트 발행
	var publisher usecase.Publisher
	if cfg.Events.Enabled && c.Redis != nil {
		c.Messaging = messaging.NewRedisClientWithClient(c.Redis)
		publisher = c.Messaging
		logger.Info("Billing events enabled", zap.String("channel", cfg.Events.Channel))
	}
	c.Events = usecase.NewEventEmitter(publisher, cfg.Events.Channel, logger)

	// 5. 결제 게이트웨이
	factory := opts.Factory
	if factory == nil {
		factory = providerFactory.NewFactory(cfg, logger, c.Metrics)
	}
	c.Gateway, err = factory.GetGateway()
	if err != nil {
		if !domainErrors.IsConfiguration(err) {
			return nil, err
		}
		logger.Warn("Billing gateway not configured, portal requests will fail until a secret key is set",
			zap.Error(errors.Unwrap(err)))
		c.Gateway, err = nil, nil
	}

	// 6. 유스케이스
	c.Resolver = usecase.NewCustomerResolver(c.Gateway, c.Repos.CustomerMapping, c.Repos.Users, c.Store, cfg.Billing, c.Events, c.Metrics, logger)
	c.Data = usecase.NewBillingDataService(c.Gateway, c.Resolver, c.Store, cfg.Billing, c.Metrics, logger)
	c.Mutations = usecase.NewBillingMutationService(c.Gateway, c.Resolver, c.Store, cfg.Billing, c.Events, c.Metrics, logger)

	return c, nil
}

// Close releases the connections in reverse order of creation
func (c *Container) Close() {
	if c.Messaging != nil {
		if err := c.Messaging.Close(); err != nil {
			c.Logger.Error("Failed to close messaging client", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := database.Close(c.DB, c.Logger); err != nil {
			c.Logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
}
