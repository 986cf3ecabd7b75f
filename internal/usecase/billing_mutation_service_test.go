package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

func TestCancelSubscription_MissingID(t *testing.T) {
	for _, id := range []string{"", " ", "\t\n"} {
		f := newFixture(t)

		_, err := f.mutations.CancelSubscription(context.Background(), id)

		require.Error(t, err, "id %q", id)
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusOf(err))
		assert.Equal(t, "Missing subscription ID", apperrors.PublicMessage(err))
		assert.Empty(t, f.gateway.Calls)
	}
}

func TestCancelSubscription_TrimsID(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("GetSubscription", mock.Anything, "sub_1", []string(nil)).
		Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "active"}, nil)
	f.gateway.On("CancelSubscription", mock.Anything, "sub_1").
		Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "canceled"}, nil)
	f.publisher.On("Publish", mock.Anything, "billing.events", mock.Anything).Return(nil)

	status, err := f.mutations.CancelSubscription(context.Background(), "  sub_1 ")

	require.NoError(t, err)
	assert.Equal(t, "canceled", status)
	f.assertExpectations(t)
}

func TestCancelSubscription(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(f *fixture)
		expectStatus  string
		expectErr     string
		expectCancel  bool
		expectDeleted bool
	}{
		{
			name: "canceled and invalidated",
			setup: func(f *fixture) {
				f.gateway.On("GetSubscription", mock.Anything, "sub_1", []string(nil)).
					Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "active"}, nil)
				f.gateway.On("CancelSubscription", mock.Anything, "sub_1").
					Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "canceled"}, nil)
				f.publisher.On("Publish", mock.Anything, "billing.events", mock.MatchedBy(func(e entity.BillingEvent) bool {
					return e.Type == entity.EventSubscriptionCanceled && e.CustomerID == "cus_1"
				})).Return(nil)
			},
			expectStatus:  "canceled",
			expectCancel:  true,
			expectDeleted: true,
		},
		{
			name: "lookup failure skips cancel",
			setup: func(f *fixture) {
				f.gateway.On("GetSubscription", mock.Anything, "sub_1", []string(nil)).
					Return(nil, domainErrors.NewProviderError("No such subscription: 'sub_1'", nil))
			},
			expectErr: "No such subscription: 'sub_1'",
		},
		{
			name: "cancel failure keeps cache",
			setup: func(f *fixture) {
				f.gateway.On("GetSubscription", mock.Anything, "sub_1", []string(nil)).
					Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1"}, nil)
				f.gateway.On("CancelSubscription", mock.Anything, "sub_1").
					Return(nil, domainErrors.NewProviderError("Subscription already canceled", nil)).Once()
			},
			expectErr:    "Subscription already canceled",
			expectCancel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, testKeys.Subscriptions("cus_1"), []*entity.Subscription{{ID: "sub_1"}})
			tt.setup(f)

			status, err := f.mutations.CancelSubscription(context.Background(), "sub_1")

			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusOf(err))
				assert.Equal(t, tt.expectErr, apperrors.PublicMessage(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectStatus, status)
			}

			if tt.expectCancel {
				f.gateway.AssertNumberOfCalls(t, "CancelSubscription", 1)
			} else {
				f.gateway.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything)
			}
			assert.Equal(t, !tt.expectDeleted, f.cached(testKeys.Subscriptions("cus_1")))
			f.assertExpectations(t)
		})
	}
}

func TestCancelOwnedSubscription(t *testing.T) {
	t.Run("subscription of the session customer", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
		f.gateway.On("GetSubscription", mock.Anything, "sub_1", []string(nil)).
			Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "active"}, nil)
		f.gateway.On("CancelSubscription", mock.Anything, "sub_1").
			Return(&entity.Subscription{ID: "sub_1", CustomerID: "cus_1", Status: "canceled"}, nil)
		f.publisher.On("Publish", mock.Anything, "billing.events", mock.Anything).Return(nil)

		status, err := f.mutations.CancelOwnedSubscription(context.Background(), "sub_1")

		require.NoError(t, err)
		assert.Equal(t, "canceled", status)
		f.assertExpectations(t)
	})

	t.Run("subscription of another customer", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
		f.gateway.On("GetSubscription", mock.Anything, "sub_9", []string(nil)).
			Return(&entity.Subscription{ID: "sub_9", CustomerID: "cus_9", Status: "active"}, nil)

		_, err := f.mutations.CancelOwnedSubscription(context.Background(), "sub_9")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusOf(err))
		assert.Equal(t, "No such subscription", apperrors.PublicMessage(err))
		f.gateway.AssertNotCalled(t, "CancelSubscription", mock.Anything, mock.Anything)
	})

	t.Run("missing id needs no session", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.mutations.CancelOwnedSubscription(context.Background(), "")

		assert.ErrorIs(t, err, domainErrors.ErrMissingSubscriptionID)
		assert.Empty(t, f.users.Calls)
		assert.Empty(t, f.gateway.Calls)
	})
}

func TestSetDefaultPaymentMethod(t *testing.T) {
	t.Run("missing payment method", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.mutations.SetDefaultPaymentMethod(context.Background(), "")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusOf(err))
		assert.Equal(t, "Missing paymentMethod", apperrors.PublicMessage(err))
		assert.Empty(t, f.gateway.Calls)
		assert.Empty(t, f.users.Calls)
	})

	t.Run("blank payment method", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.mutations.SetDefaultPaymentMethod(context.Background(), "   ")

		require.Error(t, err)
		assert.Equal(t, "Missing paymentMethod", apperrors.PublicMessage(err))
		assert.Empty(t, f.gateway.Calls)
		assert.Empty(t, f.users.Calls)
	})

	t.Run("invalidates cards and customer", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.seed(t, testKeys.Cards("cus_1"), []*entity.PaymentMethod{{ID: "pm_old"}})
		f.seed(t, testKeys.Invoices("cus_1"), []*entity.Invoice{{ID: "in_1"}})
		f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
		f.gateway.On("SetDefaultPaymentMethod", mock.Anything, "cus_1", "pm_123").Return(customer("cus_1"), nil).Once()
		f.publisher.On("Publish", mock.Anything, "billing.events", mock.Anything).Return(nil)

		status, err := f.mutations.SetDefaultPaymentMethod(context.Background(), "pm_123")

		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, status)
		assert.False(t, f.cached(testKeys.Cards("cus_1")))
		assert.False(t, f.cached(testKeys.Customer("42")))
		assert.True(t, f.cached(testKeys.Invoices("cus_1")))
		f.assertExpectations(t)
	})

	t.Run("provider error keeps cache", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.seed(t, testKeys.Cards("cus_1"), []*entity.PaymentMethod{{ID: "pm_old"}})
		f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
		f.gateway.On("SetDefaultPaymentMethod", mock.Anything, "cus_1", "pm_bad").
			Return(nil, domainErrors.NewProviderError("No such PaymentMethod: 'pm_bad'", nil))

		_, err := f.mutations.SetDefaultPaymentMethod(context.Background(), "pm_bad")

		require.Error(t, err)
		assert.True(t, domainErrors.IsProvider(err))
		assert.True(t, f.cached(testKeys.Cards("cus_1")))
		assert.Empty(t, f.publisher.Calls)
	})

	t.Run("publish failure does not fail the mutation", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("CurrentUser", mock.Anything).Return(testUser, nil)
		f.gateway.On("SetDefaultPaymentMethod", mock.Anything, "cus_1", "pm_123").Return(customer("cus_1"), nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection closed"))

		status, err := f.mutations.SetDefaultPaymentMethod(context.Background(), "pm_123")

		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, status)
	})
}

func TestOnEmailChanged(t *testing.T) {
	t.Run("equal normalized email is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("GetUserByID", mock.Anything, "42").Return(testUser, nil)

		err := f.mutations.OnEmailChanged(context.Background(), "42", &entity.User{ID: "42", Email: "user@example.com"})

		require.NoError(t, err)
		assert.Empty(t, f.gateway.Calls)
		assert.True(t, f.cached(testKeys.Customer("42")))
	})

	t.Run("new email is pushed normalized", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("GetUserByID", mock.Anything, "42").Return(&entity.User{ID: "42", Email: " New@Example.com"}, nil)
		f.gateway.On("UpdateCustomerEmail", mock.Anything, "cus_1", "new@example.com").Return(customer("cus_1"), nil).Once()
		f.publisher.On("Publish", mock.Anything, "billing.events", mock.MatchedBy(func(e entity.BillingEvent) bool {
			return e.Type == entity.EventCustomerEmailUpdated && e.Data["email"] == "new@example.com"
		})).Return(nil)

		err := f.mutations.OnEmailChanged(context.Background(), "42", &entity.User{ID: "42", Email: "old@example.com"})

		require.NoError(t, err)
		assert.False(t, f.cached(testKeys.Customer("42")))
		f.assertExpectations(t)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.users.On("GetUserByID", mock.Anything, "42").Return(&entity.User{ID: "42", Email: "new@example.com"}, nil)
		f.gateway.On("UpdateCustomerEmail", mock.Anything, "cus_1", "new@example.com").
			Return(nil, domainErrors.NewProviderError("Invalid email address", nil))

		err := f.mutations.OnEmailChanged(context.Background(), "42", &entity.User{Email: "old@example.com"})

		require.Error(t, err)
		assert.True(t, domainErrors.IsProvider(err))
		assert.True(t, f.cached(testKeys.Customer("42")))
	})
}

func TestPurgeUser(t *testing.T) {
	t.Run("from snapshot", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Customer("42"), customer("cus_1"))
		f.seed(t, testKeys.Cards("cus_1"), []*entity.PaymentMethod{})
		f.seed(t, testKeys.Subscriptions("cus_1"), []*entity.Subscription{})

		keys, err := f.mutations.PurgeUser(context.Background(), "42")

		require.NoError(t, err)
		assert.Len(t, keys, 4)
		assert.False(t, f.cached(testKeys.Customer("42")))
		assert.False(t, f.cached(testKeys.Cards("cus_1")))
		assert.False(t, f.cached(testKeys.Subscriptions("cus_1")))
		assert.Empty(t, f.mappings.Calls)
	})

	t.Run("from persisted link", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, testKeys.Invoices("cus_1"), []*entity.Invoice{})
		f.mappings.On("GetByUserID", mock.Anything, "42").Return(linkTo("cus_1"), nil)

		_, err := f.mutations.PurgeUser(context.Background(), "42")

		require.NoError(t, err)
		assert.False(t, f.cached(testKeys.Invoices("cus_1")))
		assert.Empty(t, f.gateway.Calls)
	})
}
