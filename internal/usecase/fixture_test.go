package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/mocks"
)

var testKeys = domainCache.Keys{Prefix: "portal:"}

type fixture struct {
	gateway   *mocks.MockBillingGateway
	mappings  *mocks.MockCustomerMappingRepository
	users     *mocks.MockUserDirectory
	publisher *mocks.MockPublisher
	store     domainCache.Store

	resolver  *CustomerResolver
	data      *BillingDataService
	mutations *BillingMutationService
}

type fixtureOption func(*fixtureSettings)

type fixtureSettings struct {
	cfg       config.BillingConfig
	store     domainCache.Store
	noGateway bool
}

func withBillingConfig(fn func(*config.BillingConfig)) fixtureOption {
	return func(s *fixtureSettings) { fn(&s.cfg) }
}

func withStore(store domainCache.Store) fixtureOption {
	return func(s *fixtureSettings) { s.store = store }
}

func withoutGateway() fixtureOption {
	return func(s *fixtureSettings) { s.noGateway = true }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	settings := fixtureSettings{
		cfg: config.BillingConfig{CacheTTL: 900 * time.Second, CachePrefix: "portal:"},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.store == nil {
		store, err := cache.NewMemoryStore(100)
		require.NoError(t, err)
		settings.store = store
	}

	f := &fixture{
		gateway:   &mocks.MockBillingGateway{},
		mappings:  &mocks.MockCustomerMappingRepository{},
		users:     &mocks.MockUserDirectory{},
		publisher: &mocks.MockPublisher{},
		store:     settings.store,
	}

	logger := zap.NewNop()
	events := NewEventEmitter(f.publisher, "billing.events", logger)

	var gateway provider.BillingGateway = f.gateway
	if settings.noGateway {
		gateway = nil
	}

	f.resolver = NewCustomerResolver(gateway, f.mappings, f.users, f.store, settings.cfg, events, nil, logger)
	f.data = NewBillingDataService(gateway, f.resolver, f.store, settings.cfg, nil, logger)
	f.mutations = NewBillingMutationService(gateway, f.resolver, f.store, settings.cfg, events, nil, logger)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.gateway.AssertExpectations(t)
	f.mappings.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func (f *fixture) seed(t *testing.T, key string, v any) {
	t.Helper()
	require.NoError(t, domainCache.SetJSON(context.Background(), f.store, key, v, time.Hour))
}

func (f *fixture) cached(key string) bool {
	_, err := f.store.Get(context.Background(), key)
	return err == nil
}

var testUser = &entity.User{ID: "42", Email: " User@Example.COM "}

func customer(id string) *entity.CustomerRecord {
	return &entity.CustomerRecord{ID: id, Email: "user@example.com"}
}

// failingStore simulates an unreachable cache backend
type failingStore struct{}

var errBackendDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }

func (failingStore) Set(context.Context, string, []byte, time.Duration) error { return errBackendDown }

func (failingStore) Delete(context.Context, ...string) error { return errBackendDown }
