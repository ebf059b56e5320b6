package persistence

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock type for the OrderRepository type
type MockOrderRepository struct {
	mock.Mock
}

// NewMockOrderRepository creates a new instance and registers its expectation check
func NewMockOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	args := m.Called(ctx, orderID)
	var order *entity.Order
	if v := args.Get(0); v != nil {
		order = v.(*entity.Order)
	}
	return order, args.Error(1)
}

func (m *MockOrderRepository) SaveTransaction(ctx context.Context, txn *entity.OrderTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockOrderRepository) GetTransaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error) {
	args := m.Called(ctx, orderID)
	var txn *entity.OrderTransaction
	if v := args.Get(0); v != nil {
		txn = v.(*entity.OrderTransaction)
	}
	return txn, args.Error(1)
}
