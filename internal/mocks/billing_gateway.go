// Package mocks holds testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
)

// MockBillingGateway is a mock implementation of provider.BillingGateway
type MockBillingGateway struct {
	mock.Mock
}

var _ provider.BillingGateway = (*MockBillingGateway)(nil)

func (m *MockBillingGateway) GetCustomer(ctx context.Context, id string, expand []string) (entity.LookupResult, error) {
	args := m.Called(ctx, id, expand)
	return args.Get(0).(entity.LookupResult), args.Error(1)
}

func (m *MockBillingGateway) FindCustomersByEmail(ctx context.Context, email string, limit int64) ([]*entity.CustomerRecord, error) {
	args := m.Called(ctx, email, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CustomerRecord), args.Error(1)
}

func (m *MockBillingGateway) CreateCustomer(ctx context.Context, email, userID string) (*entity.CustomerRecord, error) {
	args := m.Called(ctx, email, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerRecord), args.Error(1)
}

func (m *MockBillingGateway) UpdateCustomerEmail(ctx context.Context, id, email string) (*entity.CustomerRecord, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerRecord), args.Error(1)
}

func (m *MockBillingGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*entity.CustomerRecord, error) {
	args := m.Called(ctx, customerID, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerRecord), args.Error(1)
}

func (m *MockBillingGateway) CreateSetupIntent(ctx context.Context, customerID string) (*entity.SetupIntent, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SetupIntent), args.Error(1)
}

func (m *MockBillingGateway) ListPaymentMethods(ctx context.Context, customerID, methodType string) ([]*entity.PaymentMethod, error) {
	args := m.Called(ctx, customerID, methodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PaymentMethod), args.Error(1)
}

func (m *MockBillingGateway) ListInvoices(ctx context.Context, customerID string) ([]*entity.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Invoice), args.Error(1)
}

func (m *MockBillingGateway) ListSubscriptions(ctx context.Context, customerID string) ([]*entity.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

func (m *MockBillingGateway) GetSubscription(ctx context.Context, id string, expand []string) (*entity.Subscription, error) {
	args := m.Called(ctx, id, expand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockBillingGateway) CancelSubscription(ctx context.Context, id string) (*entity.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}
