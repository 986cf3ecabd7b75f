package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
)

func TestBillingDataService_Cards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cards := []*entity.PaymentMethod{{ID: "pm_1", Type: "card", Brand: "visa", Last4: "4242"}}
	f.gateway.On("ListPaymentMethods", mock.Anything, "cus_1", "card").Return(cards, nil).Once()

	got, err := f.data.GetCards(ctx, customer("cus_1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4242", got[0].Last4)
	assert.True(t, f.cached(testKeys.Cards("cus_1")))

	again, err := f.data.GetCards(ctx, customer("cus_1"))
	require.NoError(t, err)
	assert.Equal(t, got[0].ID, again[0].ID)
	f.gateway.AssertNumberOfCalls(t, "ListPaymentMethods", 1)
}

func TestBillingDataService_Invoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.On("ListInvoices", mock.Anything, "cus_1").
		Return([]*entity.Invoice{{ID: "in_1", Total: 1500, Currency: "usd"}}, nil).Once()

	got, err := f.data.GetInvoices(ctx, customer("cus_1"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.data.GetInvoices(ctx, customer("cus_1"))
	require.NoError(t, err)
	f.gateway.AssertNumberOfCalls(t, "ListInvoices", 1)
}

func TestBillingDataService_SubscriptionsAreExpandedOneByOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.On("ListSubscriptions", mock.Anything, "cus_1").
		Return([]*entity.Subscription{{ID: "sub_1"}, {ID: "sub_2"}}, nil).Once()
	for _, id := range []string{"sub_1", "sub_2"} {
		f.gateway.On("GetSubscription", mock.Anything, id, []string{provider.ExpandItemProducts}).
			Return(&entity.Subscription{
				ID:    id,
				Items: []entity.SubscriptionItem{{ID: "si_" + id, ProductName: "Pro"}},
			}, nil).Once()
	}

	subs, err := f.data.GetSubscriptions(ctx, customer("cus_1"))
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Pro", subs[1].Items[0].ProductName)

	_, err = f.data.GetSubscriptions(ctx, customer("cus_1"))
	require.NoError(t, err)
	f.gateway.AssertNumberOfCalls(t, "GetSubscription", 2)
	f.assertExpectations(t)
}

func TestBillingDataService_ProviderErrorIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.On("ListSubscriptions", mock.Anything, "cus_1").
		Return([]*entity.Subscription{{ID: "sub_1"}}, nil)
	f.gateway.On("GetSubscription", mock.Anything, "sub_1", mock.Anything).
		Return(nil, domainErrors.NewProviderError("rate limited", nil))

	_, err := f.data.GetSubscriptions(ctx, customer("cus_1"))

	require.Error(t, err)
	assert.True(t, domainErrors.IsProvider(err))
	assert.False(t, f.cached(testKeys.Subscriptions("cus_1")))
}

func TestBillingDataService_CreateSetupIntent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testKeys.Customer("42"), customer("cus_1"))
	f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
	f.gateway.On("CreateSetupIntent", mock.Anything, "cus_1").
		Return(&entity.SetupIntent{ID: "seti_1", ClientSecret: "secret"}, nil).Once()

	intent, err := f.data.CreateSetupIntent(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "secret", intent.ClientSecret)
	f.assertExpectations(t)
}

func TestBillingDataService_Overview(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testKeys.Customer("42"), customer("cus_1"))
	f.seed(t, testKeys.Cards("cus_1"), []*entity.PaymentMethod{{ID: "pm_1"}})
	f.seed(t, testKeys.Invoices("cus_1"), []*entity.Invoice{{ID: "in_1"}})
	f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)
	f.gateway.On("ListSubscriptions", mock.Anything, "cus_1").Return([]*entity.Subscription{}, nil).Once()

	overview, err := f.data.GetPortalOverview(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "cus_1", overview.Customer.ID)
	assert.Len(t, overview.Cards, 1)
	assert.Len(t, overview.Invoices, 1)
	assert.Empty(t, overview.Subscriptions)
	f.assertExpectations(t)
}

func TestBillingDataService_NoGateway(t *testing.T) {
	f := newFixture(t, withoutGateway())

	_, err := f.data.GetCards(context.Background(), customer("cus_1"))
	assert.True(t, domainErrors.IsConfiguration(err))

	_, err = f.data.GetPortalOverview(context.Background(), "42")
	assert.True(t, domainErrors.IsConfiguration(err))
}
