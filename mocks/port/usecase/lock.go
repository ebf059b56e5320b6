package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockLockUseCase is a mock type for the LockUseCase type
type MockLockUseCase struct {
	mock.Mock
}

// NewMockLockUseCase creates a new instance and registers its expectation check
func NewMockLockUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLockUseCase {
	m := &MockLockUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLockUseCase) Acquire(ctx context.Context, productID, holderID string, quantity int) (*entity.LockResult, error) {
	args := m.Called(ctx, productID, holderID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LockResult), args.Error(1)
}

func (m *MockLockUseCase) Release(ctx context.Context, productID, holderID string) (bool, error) {
	args := m.Called(ctx, productID, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockUseCase) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PurchaseLock), args.Error(1)
}

func (m *MockLockUseCase) ReleaseAll(ctx context.Context, holderID string) (int, error) {
	args := m.Called(ctx, holderID)
	return args.Int(0), args.Error(1)
}

func (m *MockLockUseCase) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
