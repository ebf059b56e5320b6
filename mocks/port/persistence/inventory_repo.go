package persistence

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock type for the InventoryRepository type
type MockInventoryRepository struct {
	mock.Mock
}

// NewMockInventoryRepository creates a new instance and registers its expectation check
func NewMockInventoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockInventoryRepository {
	m := &MockInventoryRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockInventoryRepository) Get(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	args := m.Called(ctx, productID)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockInventoryRepository) List(ctx context.Context) ([]*entity.InventoryRecord, error) {
	args := m.Called(ctx)
	var records []*entity.InventoryRecord
	if v := args.Get(0); v != nil {
		records = v.([]*entity.InventoryRecord)
	}
	return records, args.Error(1)
}

func (m *MockInventoryRepository) Adjust(ctx context.Context, mutation entity.StockMutation) (*entity.InventoryRecord, error) {
	args := m.Called(ctx, mutation)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockInventoryRepository) Set(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error) {
	args := m.Called(ctx, productID, stock, reason, actor)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockInventoryRepository) ReserveAll(ctx context.Context, items []entity.LineItem, reason, actor string) (*entity.ReservationResult, error) {
	args := m.Called(ctx, items, reason, actor)
	var result *entity.ReservationResult
	if v := args.Get(0); v != nil {
		result = v.(*entity.ReservationResult)
	}
	return result, args.Error(1)
}

func (m *MockInventoryRepository) ReleaseAll(ctx context.Context, items []entity.LineItem, reason, actor string) error {
	args := m.Called(ctx, items, reason, actor)
	return args.Error(0)
}

func (m *MockInventoryRepository) Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error) {
	args := m.Called(ctx, limit)
	var changes []entity.InventoryChange
	if v := args.Get(0); v != nil {
		changes = v.([]entity.InventoryChange)
	}
	return changes, args.Error(1)
}

func record(v any) *entity.InventoryRecord {
	if v == nil {
		return nil
	}
	return v.(*entity.InventoryRecord)
}
