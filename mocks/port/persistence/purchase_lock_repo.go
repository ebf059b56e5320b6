package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseLockRepository is a mock type for the PurchaseLockRepository type
type MockPurchaseLockRepository struct {
	mock.Mock
}

// NewMockPurchaseLockRepository creates a new instance and registers its expectation check
func NewMockPurchaseLockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPurchaseLockRepository {
	m := &MockPurchaseLockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPurchaseLockRepository) Claim(ctx context.Context, lock *entity.PurchaseLock, ttl time.Duration) (*entity.PurchaseLock, bool, error) {
	args := m.Called(ctx, lock, ttl)
	var current *entity.PurchaseLock
	if v := args.Get(0); v != nil {
		current = v.(*entity.PurchaseLock)
	}
	return current, args.Bool(1), args.Error(2)
}

func (m *MockPurchaseLockRepository) Release(ctx context.Context, productID, holderID string) (bool, error) {
	args := m.Called(ctx, productID, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseLockRepository) Get(ctx context.Context, productID string) (*entity.PurchaseLock, error) {
	args := m.Called(ctx, productID)
	var current *entity.PurchaseLock
	if v := args.Get(0); v != nil {
		current = v.(*entity.PurchaseLock)
	}
	return current, args.Error(1)
}

func (m *MockPurchaseLockRepository) ListByHolder(ctx context.Context, holderID string) ([]*entity.PurchaseLock, error) {
	args := m.Called(ctx, holderID)
	var locks []*entity.PurchaseLock
	if v := args.Get(0); v != nil {
		locks = v.([]*entity.PurchaseLock)
	}
	return locks, args.Error(1)
}

func (m *MockPurchaseLockRepository) DeleteExpired(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	args := m.Called(ctx, now, ttl)
	return args.Int(0), args.Error(1)
}
