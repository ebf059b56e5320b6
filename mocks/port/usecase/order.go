package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/stretchr/testify/mock"
)

// MockOrderUseCase is a mock type for the OrderUseCase type
type MockOrderUseCase struct {
	mock.Mock
}

// NewMockOrderUseCase creates a new instance and registers its expectation check
func NewMockOrderUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderUseCase {
	m := &MockOrderUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func orderResult(args mock.Arguments) (*entity.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderUseCase) Process(ctx context.Context, req usecase.OrderRequest, method entity.PaymentMethod) (*usecase.ProcessResult, error) {
	args := m.Called(ctx, req, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ProcessResult), args.Error(1)
}

func (m *MockOrderUseCase) Settle(ctx context.Context, orderID string) (*entity.Order, error) {
	return orderResult(m.Called(ctx, orderID))
}

func (m *MockOrderUseCase) Refund(ctx context.Context, orderID, reason string) (*entity.Order, error) {
	return orderResult(m.Called(ctx, orderID, reason))
}

func (m *MockOrderUseCase) Order(ctx context.Context, orderID string) (*entity.Order, error) {
	return orderResult(m.Called(ctx, orderID))
}

func (m *MockOrderUseCase) Transaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderTransaction), args.Error(1)
}
