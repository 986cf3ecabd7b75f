package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

func linkTo(customerID string) *entity.CustomerMapping {
	return &entity.CustomerMapping{UserID: "42", ProviderCustomerID: customerID}
}

func TestCustomerResolver_CacheHitMakesNoCalls(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testKeys.Customer("42"), customer("cus_cached"))
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)

	rec, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_cached", rec.ID)
	assert.Empty(t, f.gateway.Calls)
	assert.Empty(t, f.mappings.Calls)
	f.assertExpectations(t)
}

func TestCustomerResolver_ValidLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_1"), nil).Once()
	f.gateway.On("GetCustomer", mock.Anything, "cus_1", []string(nil)).Return(entity.Found(customer("cus_1")), nil).Once()

	rec, err := f.resolver.Resolve(ctx, "42", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_1", rec.ID)
	f.gateway.AssertNotCalled(t, "FindCustomersByEmail", mock.Anything, mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, f.cached(testKeys.Customer("42")))

	// idempotent within the TTL
	again, err := f.resolver.Resolve(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	f.gateway.AssertNumberOfCalls(t, "GetCustomer", 1)
	f.assertExpectations(t)
}

func TestCustomerResolver_EmailMatchIsLinked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(nil, nil).Once()
	f.gateway.On("FindCustomersByEmail", mock.Anything, "user@example.com", int64(1)).
		Return([]*entity.CustomerRecord{customer("cus_email")}, nil).Once()
	f.mappings.On("Upsert", mock.Anything, mock.MatchedBy(func(m *entity.CustomerMapping) bool {
		return m.UserID == "42" && m.ProviderCustomerID == "cus_email" && m.Email == "user@example.com"
	})).Return(nil).Once()

	rec, err := f.resolver.Resolve(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, "cus_email", rec.ID)

	// second call is served from the cache
	_, err = f.resolver.Resolve(ctx, "42", nil)
	require.NoError(t, err)

	f.gateway.AssertNumberOfCalls(t, "FindCustomersByEmail", 1)
	f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCustomerResolver_NoMatchCreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(nil, nil).Once()
	f.gateway.On("FindCustomersByEmail", mock.Anything, "user@example.com", int64(1)).
		Return([]*entity.CustomerRecord{}, nil).Once()
	f.gateway.On("CreateCustomer", mock.Anything, testUser.Email, "42").Return(customer("cus_new"), nil).Once()
	f.mappings.On("Upsert", mock.Anything, mock.MatchedBy(func(m *entity.CustomerMapping) bool {
		return m.ProviderCustomerID == "cus_new"
	})).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, "billing.events", mock.MatchedBy(func(e entity.BillingEvent) bool {
		return e.Type == entity.EventCustomerCreated && e.CustomerID == "cus_new" && e.UserID == "42" && e.ID != ""
	})).Return(nil).Once()

	rec, err := f.resolver.Resolve(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", rec.ID)

	cached, err := f.resolver.Resolve(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", cached.ID)

	f.gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)
	f.assertExpectations(t)
}

func TestCustomerResolver_StaleLinkFallsBackToEmail(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_gone"), nil)
	f.gateway.On("GetCustomer", mock.Anything, "cus_gone", mock.Anything).Return(entity.NotFound(), nil)
	f.gateway.On("FindCustomersByEmail", mock.Anything, "user@example.com", int64(1)).
		Return([]*entity.CustomerRecord{customer("cus_email")}, nil)
	f.mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	rec, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_email", rec.ID)
	f.assertExpectations(t)
}

func TestCustomerResolver_DeletedCustomerIsReplaced(t *testing.T) {
	f := newFixture(t)
	deleted := customer("cus_deleted")
	deleted.Deleted = true
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_deleted"), nil)
	f.gateway.On("GetCustomer", mock.Anything, "cus_deleted", mock.Anything).Return(entity.Deleted(deleted), nil)
	f.gateway.On("CreateCustomer", mock.Anything, testUser.Email, "42").Return(customer("cus_new"), nil).Once()
	f.mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	rec, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_new", rec.ID)
	f.gateway.AssertNotCalled(t, "FindCustomersByEmail", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCustomerResolver_ProviderErrorPropagates(t *testing.T) {
	f := newFixture(t)
	providerErr := domainErrors.NewProviderError("Invalid API Key provided", nil)
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_1"), nil)
	f.gateway.On("GetCustomer", mock.Anything, "cus_1", mock.Anything).Return(entity.LookupResult{}, providerErr)

	_, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.Error(t, err)
	assert.True(t, domainErrors.IsProvider(err))
	assert.False(t, f.cached(testKeys.Customer("42")))
	f.gateway.AssertNotCalled(t, "FindCustomersByEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerResolver_NoGateway(t *testing.T) {
	f := newFixture(t, withoutGateway())

	_, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.Error(t, err)
	assert.True(t, domainErrors.IsConfiguration(err))
	assert.Equal(t, apperrors.ErrConfiguration, apperrors.CodeOf(err))
	assert.Empty(t, f.users.Calls)
}

func TestCustomerResolver_EmptyUserIDUsesSession(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testKeys.Customer("42"), customer("cus_cached"))
	f.users.On("CurrentUser", mock.Anything).Return(testUser, nil).Once()

	rec, err := f.resolver.Resolve(context.Background(), "", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_cached", rec.ID)
	f.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCustomerResolver_VerifyCachedLink(t *testing.T) {
	f := newFixture(t, withBillingConfig(func(c *config.BillingConfig) { c.VerifyCachedLink = true }))
	f.seed(t, testKeys.Customer("42"), customer("cus_old"))
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_new"), nil)
	f.gateway.On("GetCustomer", mock.Anything, "cus_new", mock.Anything).Return(entity.Found(customer("cus_new")), nil).Once()

	rec, err := f.resolver.Resolve(context.Background(), "42", nil)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", rec.ID)

	// the refreshed snapshot now matches the link
	rec, err = f.resolver.Resolve(context.Background(), "42", nil)
	require.NoError(t, err)
	assert.Equal(t, "cus_new", rec.ID)
	f.gateway.AssertNumberOfCalls(t, "GetCustomer", 1)
}

func TestCustomerResolver_CacheOutageDegradesToMiss(t *testing.T) {
	f := newFixture(t, withStore(failingStore{}))
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_1"), nil)
	f.gateway.On("GetCustomer", mock.Anything, "cus_1", mock.Anything).Return(entity.Found(customer("cus_1")), nil)

	rec, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.NoError(t, err)
	assert.Equal(t, "cus_1", rec.ID)
}

func TestCustomerResolver_ConcurrentResolutionsShareOneCreate(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Run(func(mock.Arguments) { <-release }).Return(nil, nil)
	f.gateway.On("FindCustomersByEmail", mock.Anything, mock.Anything, mock.Anything).Return([]*entity.CustomerRecord{}, nil)
	f.gateway.On("CreateCustomer", mock.Anything, mock.Anything, "42").Return(customer("cus_new"), nil)
	f.mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := f.resolver.Resolve(context.Background(), "42", nil)
			if assert.NoError(t, err) {
				ids[i] = rec.ID
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, "cus_new", id)
	}
	f.gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)
}

func TestCustomerResolver_CanceledCallerDoesNotFailJoinedCallers(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var linkCtxErr error
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Run(func(args mock.Arguments) {
		close(started)
		<-release
		linkCtxErr = args.Get(0).(context.Context).Err()
	}).Return(nil, nil).Once()
	f.gateway.On("FindCustomersByEmail", mock.Anything, mock.Anything, mock.Anything).Return([]*entity.CustomerRecord{}, nil)
	f.gateway.On("CreateCustomer", mock.Anything, mock.Anything, "42").Return(customer("cus_new"), nil)
	f.mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.resolver.Resolve(firstCtx, "42", nil)
		firstErr <- err
	}()
	<-started

	type result struct {
		rec *entity.CustomerRecord
		err error
	}
	second := make(chan result, 1)
	go func() {
		rec, err := f.resolver.Resolve(context.Background(), "42", nil)
		second <- result{rec, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, "cus_new", r.rec.ID)
	assert.NoError(t, linkCtxErr)
	f.mappings.AssertNumberOfCalls(t, "GetByUserID", 1)
	f.gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)
}

func TestCustomerResolver_LinkReadFailureKeepsCause(t *testing.T) {
	f := newFixture(t)
	dbDown := errors.New("db down")
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.mappings.On("GetByUserID", mock.Anything, "42").Return(nil, dbDown)

	_, err := f.resolver.Resolve(context.Background(), "42", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)
	assert.EqualError(t, err, "failed to read customer link: db down")
	assert.Equal(t, apperrors.ErrInternal, apperrors.CodeOf(err))
	assert.Empty(t, f.gateway.Calls)
}

func TestNormalizedEmailsAreEquivalent(t *testing.T) {
	assert.Equal(t, entity.NormalizeEmail("user@example.com"), entity.NormalizeEmail(" User@Example.COM "))
}
