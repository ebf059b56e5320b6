package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock type for the Catalog type
type MockCatalog struct {
	mock.Mock
}

// NewMockCatalog creates a new instance and registers its expectation check
func NewMockCatalog(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCatalog {
	m := &MockCatalog{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCatalog) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	var p *entity.Product
	if v := args.Get(0); v != nil {
		p = v.(*entity.Product)
	}
	return p, args.Error(1)
}

func (m *MockCatalog) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	args := m.Called(ctx)
	var ps []*entity.Product
	if v := args.Get(0); v != nil {
		ps = v.([]*entity.Product)
	}
	return ps, args.Error(1)
}
