package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/events"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/catalog"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/repository"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/core"
	gatewaymocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/gateway"
	persistencemocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.StaticCatalog {
	c, err := catalog.NewStaticCatalog([]entity.Product{
		{ID: "v1", Name: "Carrots", UnitPrice: 300, TaxRate: decimal.RequireFromString("0.08")},
		{ID: "v2", Name: "Tomatoes", UnitPrice: 450, TaxRate: decimal.RequireFromString("0.08"), MaxOrderQuantity: 5},
		{ID: "v3", Name: "Rice", UnitPrice: 2000, TaxRate: decimal.RequireFromString("0.08"), MinOrderQuantity: 2},
	})
	require.NoError(t, err)
	return c
}

type ledgerFixture struct {
	ledger    *Ledger
	clock     *timeprovider.ManualTimeProvider
	publisher *gatewaymocks.MockEventPublisher
}

func newLedgerFixture(t *testing.T, stock map[string]int) *ledgerFixture {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := repository.NewKVInventoryRepository(kvstore.NewMemoryStore(), clock)
	for id, qty := range stock {
		_, err := repo.Set(ctx, id, qty, entity.ReasonInitialStock, "test")
		require.NoError(t, err)
	}

	publisher := gatewaymocks.NewMockEventPublisher(t)
	log := logger.NewNoopLogger()
	ledger := NewLedger(repo, testCatalog(t), events.NewEmitter(publisher, clock, log), clock, log, 0)
	return &ledgerFixture{ledger: ledger, clock: clock, publisher: publisher}
}

func (f *ledgerFixture) expectEvents(n int) {
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *entity.DomainEvent) bool {
		return e.Type == entity.EventInventoryAdjusted
	})).Return(nil).Times(n)
}

func TestLedger_GetUnknownProductIsZero(t *testing.T) {
	f := newLedgerFixture(t, nil)

	rec, err := f.ledger.Get(context.Background(), "never-stocked")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Stock)

	_, err = f.ledger.Get(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrInvalidProductID)
}

func TestLedger_Adjust(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		initial   int
		delta     int
		wantStock int
	}{
		{"increase", 5, 3, 8},
		{"decrease", 5, -2, 3},
		{"clamped at zero", 2, -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, map[string]int{"v1": tt.initial})
			f.expectEvents(1)

			rec, err := f.ledger.Adjust(ctx, "v1", tt.delta, "", "admin")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, rec.Stock)
			assert.Equal(t, "admin", rec.UpdatedBy)

			changes, err := f.ledger.Changes(ctx, 1)
			require.NoError(t, err)
			require.Len(t, changes, 1)
			assert.Equal(t, tt.initial, changes[0].OldStock)
			assert.Equal(t, tt.wantStock, changes[0].NewStock)
			assert.Equal(t, entity.ReasonAdjustment, changes[0].Reason)
		})
	}
}

func TestLedger_EventFailureDoesNotFailMutation(t *testing.T) {
	f := newLedgerFixture(t, map[string]int{"v1": 1})
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	rec, err := f.ledger.Adjust(context.Background(), "v1", 1, entity.ReasonAdjustment, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Stock)
}

func TestLedger_SetStock(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, map[string]int{"v1": 5})
	f.expectEvents(1)

	rec, err := f.ledger.SetStock(ctx, "v1", 12, entity.ReasonHarvestSync, "farmer")
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Stock)

	_, err = f.ledger.SetStock(ctx, "v1", -1, "", "")
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
}

func TestLedger_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, map[string]int{"v1": 3})

	ok, err := f.ledger.CheckAvailability(ctx, "v1", 3)
	require.NoError(t, err)
	assert.True(t, ok.Available)
	assert.Equal(t, 0, ok.Shortage)

	short, err := f.ledger.CheckAvailability(ctx, "v1", 5)
	require.NoError(t, err)
	assert.False(t, short.Available)
	assert.Equal(t, 2, short.Shortage)
	assert.Equal(t, 3, short.CurrentStock)

	_, err = f.ledger.CheckAvailability(ctx, "v1", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
}

func TestLedger_ValidateQuantity(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, nil)

	assert.NoError(t, f.ledger.ValidateQuantity(ctx, "v2", 5))

	err := f.ledger.ValidateQuantity(ctx, "v2", 6)
	var bounds *errs.QuantityBoundsError
	require.ErrorAs(t, err, &bounds)
	assert.ErrorIs(t, err, errs.ErrQuantityAboveMaximum)

	assert.ErrorIs(t, f.ledger.ValidateQuantity(ctx, "v3", 1), errs.ErrQuantityBelowMinimum)
	assert.ErrorIs(t, f.ledger.ValidateQuantity(ctx, "nope", 1), errs.ErrProductNotFound)
}

func TestLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("all lines reserved", func(t *testing.T) {
		f := newLedgerFixture(t, map[string]int{"v1": 5, "v2": 4})
		f.expectEvents(2)

		result, err := f.ledger.Reserve(ctx, []entity.LineItem{
			{ProductID: "v1", Quantity: 2},
			{ProductID: "v2", Quantity: 4},
		})
		require.NoError(t, err)
		assert.True(t, result.Success)

		v1, _ := f.ledger.Get(ctx, "v1")
		v2, _ := f.ledger.Get(ctx, "v2")
		assert.Equal(t, 3, v1.Stock)
		assert.Equal(t, 0, v2.Stock)
	})

	t.Run("nothing reserved when one line is short", func(t *testing.T) {
		f := newLedgerFixture(t, map[string]int{"v1": 5, "v2": 1})

		result, err := f.ledger.Reserve(ctx, []entity.LineItem{
			{ProductID: "v1", Quantity: 2},
			{ProductID: "v2", Quantity: 3},
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.FailedItem)
		assert.Equal(t, "v2", result.FailedItem.ProductID)
		assert.Equal(t, 3, result.FailedItem.Requested)
		assert.Equal(t, 1, result.FailedItem.Available)

		v1, _ := f.ledger.Get(ctx, "v1")
		assert.Equal(t, 5, v1.Stock, "no partial decrement")
	})

	t.Run("duplicate lines are merged", func(t *testing.T) {
		f := newLedgerFixture(t, map[string]int{"v1": 3})

		result, err := f.ledger.Reserve(ctx, []entity.LineItem{
			{ProductID: "v1", Quantity: 2},
			{ProductID: "v1", Quantity: 2},
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 4, result.FailedItem.Requested)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newLedgerFixture(t, nil)

		_, err := f.ledger.Reserve(ctx, nil)
		assert.ErrorIs(t, err, errs.ErrEmptyCart)
	})
}

func TestLedger_ReserveIsAtomicUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, map[string]int{"v1": 5})
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.ledger.Reserve(ctx, []entity.LineItem{{ProductID: "v1", Quantity: 1}})
			if err == nil && result.Success {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
	rec, err := f.ledger.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Stock)
}

func TestLedger_ReleaseRestoresReservation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, map[string]int{"v1": 10})
	f.expectEvents(2)

	items := []entity.LineItem{{ProductID: "v1", Quantity: 3}}
	result, err := f.ledger.Reserve(ctx, items)
	require.NoError(t, err)
	require.True(t, result.Success)

	require.NoError(t, f.ledger.Release(ctx, items, entity.ReasonRollback))

	rec, err := f.ledger.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Stock)

	changes, err := f.ledger.Changes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonRollback, changes[0].Reason, "newest first")
	assert.Equal(t, entity.ReasonReservation, changes[1].Reason)
}

func TestLedger_ValidateCart(t *testing.T) {
	f := newLedgerFixture(t, map[string]int{"v1": 5, "v2": 1})

	validation, err := f.ledger.ValidateCart(context.Background(), []entity.LineItem{
		{ProductID: "v1", Quantity: 2},
		{ProductID: "v2", Quantity: 2},
		{ProductID: "v3", Quantity: 2},
	})
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	require.Len(t, validation.Warnings, 1)
	assert.Equal(t, "v2", validation.Warnings[0].ProductID)
	require.Len(t, validation.Unavailable, 1)
	assert.Equal(t, "v3", validation.Unavailable[0].ProductID)
}

func TestLedger_LowStockAndReport(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, map[string]int{"v1": 2, "v2": 10})

	low, err := f.ledger.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "v1", low[0].ProductID)

	report, err := f.ledger.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalItems)
	assert.Equal(t, 2, report.InStock)
	assert.Equal(t, 1, report.OutOfStock)
	assert.Equal(t, 1, report.LowStock)
	assert.Equal(t, int64(2*300+10*450), report.TotalStockValue)
	assert.Equal(t, "v3", report.Items[0].ProductID, "lowest stock first")
}

func TestLedger_SyncHarvest(t *testing.T) {
	ctx := context.Background()

	t.Run("sets every product", func(t *testing.T) {
		f := newLedgerFixture(t, map[string]int{"v1": 1})
		f.expectEvents(2)

		updated, err := f.ledger.SyncHarvest(ctx, []usecase.HarvestItem{
			{ProductID: "v1", Stock: 20},
			{ProductID: "v2", Stock: 7},
		}, "")
		require.NoError(t, err)
		require.Len(t, updated, 2)
		assert.Equal(t, 20, updated[0].Stock)
		assert.Equal(t, 7, updated[1].Stock)

		changes, err := f.ledger.Changes(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.ReasonHarvestSync, changes[0].Reason)
	})

	t.Run("invalid batch writes nothing", func(t *testing.T) {
		f := newLedgerFixture(t, map[string]int{"v1": 1})

		_, err := f.ledger.SyncHarvest(ctx, []usecase.HarvestItem{
			{ProductID: "v1", Stock: 20},
			{ProductID: "v2", Stock: -1},
		}, "")
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)

		rec, _ := f.ledger.Get(ctx, "v1")
		assert.Equal(t, 1, rec.Stock)
	})
}

func TestLedger_RepositoryFailure(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := persistencemocks.NewMockInventoryRepository(t)
	log := coremocks.NewMockLogger(t)
	ledger := NewLedger(repo, testCatalog(t), events.NewEmitter(nil, clock, logger.NewNoopLogger()), clock, log, 0)

	items := []entity.LineItem{{ProductID: "v1", Quantity: 1}}
	repo.On("ReserveAll", mock.Anything, items, entity.ReasonReservation, "system").Return(nil, errs.ErrStorage)
	log.On("Error", "Failed to reserve stock", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["items"] == 1 && fields["error"] == errs.ErrStorage.Error()
	})).Once()

	_, err := ledger.Reserve(context.Background(), items)
	assert.ErrorIs(t, err, errs.ErrStorage)
}

func TestLedger_CatalogFailure(t *testing.T) {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := persistencemocks.NewMockInventoryRepository(t)
	products := gatewaymocks.NewMockCatalog(t)
	log := logger.NewNoopLogger()
	ledger := NewLedger(repo, products, events.NewEmitter(nil, clock, log), clock, log, 0)

	t.Run("unknown product fails quantity validation", func(t *testing.T) {
		products.On("GetProduct", mock.Anything, "ghost").Return(nil, errs.ErrProductNotFound).Once()

		err := ledger.ValidateQuantity(ctx, "ghost", 1)
		assert.ErrorIs(t, err, errs.ErrProductNotFound)
	})

	t.Run("report stops before reading stock", func(t *testing.T) {
		products.On("ListProducts", mock.Anything).Return(nil, errors.New("catalog offline")).Once()

		_, err := ledger.Report(ctx)
		assert.EqualError(t, err, "catalog offline")
		repo.AssertNotCalled(t, "List", mock.Anything)
	})
}
