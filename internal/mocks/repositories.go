package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/repository"
)

// MockCustomerMappingRepository is a mock implementation of CustomerMappingRepository
type MockCustomerMappingRepository struct {
	mock.Mock
}

var _ repository.CustomerMappingRepository = (*MockCustomerMappingRepository)(nil)

func (m *MockCustomerMappingRepository) GetByUserID(ctx context.Context, userID string) (*entity.CustomerMapping, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CustomerMapping), args.Error(1)
}

func (m *MockCustomerMappingRepository) Upsert(ctx context.Context, mapping *entity.CustomerMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// MockUserDirectory is a mock implementation of UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

var _ repository.UserDirectory = (*MockUserDirectory)(nil)

func (m *MockUserDirectory) CurrentUser(ctx context.Context) (*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserDirectory) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}
