package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseUseCase is a mock type for the PurchaseUseCase type
type MockPurchaseUseCase struct {
	mock.Mock
}

// NewMockPurchaseUseCase creates a new instance and registers its expectation check
func NewMockPurchaseUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPurchaseUseCase {
	m := &MockPurchaseUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPurchaseUseCase) AddToCart(ctx context.Context, req usecase.AddToCartRequest) (*usecase.AddToCartResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AddToCartResult), args.Error(1)
}

func (m *MockPurchaseUseCase) ReleaseHold(ctx context.Context, productID, holderID string) (bool, error) {
	args := m.Called(ctx, productID, holderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseUseCase) BeginCheckout(ctx context.Context, ownerID string, cart []entity.LineItem, prefecture string) (*entity.CheckoutSession, error) {
	args := m.Called(ctx, ownerID, cart, prefecture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutSession), args.Error(1)
}

func (m *MockPurchaseUseCase) PlaceOrder(ctx context.Context, req usecase.PlaceOrderRequest) (*usecase.ProcessResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ProcessResult), args.Error(1)
}
