package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	gatewayport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/stretchr/testify/mock"
)

// MockPaymentGateway is a mock type for the PaymentGateway type
type MockPaymentGateway struct {
	mock.Mock
}

// NewMockPaymentGateway creates a new instance and registers its expectation check
func NewMockPaymentGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPaymentGateway {
	m := &MockPaymentGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, amount, currency, metadata)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Confirm(ctx context.Context, token string, method entity.PaymentMethod) (*gatewayport.PaymentResult, error) {
	args := m.Called(ctx, token, method)
	var result *gatewayport.PaymentResult
	if v := args.Get(0); v != nil {
		result = v.(*gatewayport.PaymentResult)
	}
	return result, args.Error(1)
}

func (m *MockPaymentGateway) Cancel(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// MockPaymentGateways is a mock type for the PaymentGateways type
type MockPaymentGateways struct {
	mock.Mock
}

// NewMockPaymentGateways creates a new instance and registers its expectation check
func NewMockPaymentGateways(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPaymentGateways {
	m := &MockPaymentGateways{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPaymentGateways) Gateway(method entity.PaymentMethodType) (gatewayport.PaymentGateway, error) {
	args := m.Called(method)
	var gw gatewayport.PaymentGateway
	if v := args.Get(0); v != nil {
		gw = v.(gatewayport.PaymentGateway)
	}
	return gw, args.Error(1)
}
