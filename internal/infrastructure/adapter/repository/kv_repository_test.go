package repository

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestKVInventoryRepository(t *testing.T) {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(testStart)
	repo := NewKVInventoryRepository(kvstore.NewMemoryStore(), clock)

	_, err := repo.Set(ctx, "v1", 5, entity.ReasonInitialStock, "seed")
	require.NoError(t, err)
	_, err = repo.Set(ctx, "v2", 1, entity.ReasonInitialStock, "seed")
	require.NoError(t, err)

	t.Run("unknown product reads as zero", func(t *testing.T) {
		rec, err := repo.Get(ctx, "nope")
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Stock)
	})

	t.Run("adjust clamps at zero", func(t *testing.T) {
		rec, err := repo.Adjust(ctx, entity.StockMutation{ProductID: "v2", Delta: -4, Reason: entity.ReasonAdjustment, Actor: "admin"})
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Stock)

		_, err = repo.Set(ctx, "v2", 1, entity.ReasonAdjustment, "admin")
		require.NoError(t, err)
	})

	t.Run("reserve is all or nothing", func(t *testing.T) {
		result, err := repo.ReserveAll(ctx, []entity.LineItem{
			{ProductID: "v1", Quantity: 2},
			{ProductID: "v2", Quantity: 2},
		}, entity.ReasonReservation, "system")
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.FailedItem)
		assert.Equal(t, "v2", result.FailedItem.ProductID)
		assert.Equal(t, 1, result.FailedItem.Available)

		v1, err := repo.Get(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, 5, v1.Stock, "no partial decrement")
	})

	t.Run("reserve and release", func(t *testing.T) {
		items := []entity.LineItem{{ProductID: "v1", Quantity: 2}, {ProductID: "v2", Quantity: 1}}
		result, err := repo.ReserveAll(ctx, items, entity.ReasonReservation, "system")
		require.NoError(t, err)
		assert.True(t, result.Success)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 3, list[0].Stock)
		assert.Equal(t, 0, list[1].Stock)

		require.NoError(t, repo.ReleaseAll(ctx, items, entity.ReasonRollback, "system"))
		list, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, list[0].Stock)
		assert.Equal(t, 1, list[1].Stock)
	})

	t.Run("change log is newest first", func(t *testing.T) {
		changes, err := repo.Changes(ctx, 2)
		require.NoError(t, err)
		require.Len(t, changes, 2)
		for _, c := range changes {
			assert.Equal(t, entity.ReasonRollback, c.Reason)
		}

		all, err := repo.Changes(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, entity.ReasonInitialStock, all[len(all)-1].Reason)
	})
}

func TestKVPurchaseLockRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVPurchaseLockRepository(kvstore.NewMemoryStore())
	ttl := time.Minute

	lock := func(productID, holderID string, at time.Time) *entity.PurchaseLock {
		return &entity.PurchaseLock{ProductID: productID, HolderID: holderID, AcquiredAt: at, RequestedQuantity: 1}
	}

	_, granted, err := repo.Claim(ctx, lock("v1", "h1", testStart), ttl)
	require.NoError(t, err)
	assert.True(t, granted)

	current, granted, err := repo.Claim(ctx, lock("v1", "h2", testStart.Add(30*time.Second)), ttl)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, "h1", current.HolderID)

	_, granted, err = repo.Claim(ctx, lock("v2", "h1", testStart.Add(30*time.Second)), ttl)
	require.NoError(t, err)
	assert.True(t, granted)

	held, err := repo.ListByHolder(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "v1", held[0].ProductID)
	assert.Equal(t, "v2", held[1].ProductID)

	removed, err := repo.DeleteExpired(ctx, testStart.Add(time.Minute), ttl)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	gone, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	released, err := repo.Release(ctx, "v2", "h2")
	require.NoError(t, err)
	assert.False(t, released)
	released, err = repo.Release(ctx, "v2", "h1")
	require.NoError(t, err)
	assert.True(t, released)
}

func TestKVOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVOrderRepository(kvstore.NewMemoryStore())

	_, err := repo.GetOrder(ctx, "ORD-1")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
	_, err = repo.GetTransaction(ctx, "ORD-1")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound)

	order := &entity.Order{
		ID:      "ORD-1",
		OwnerID: "h1",
		Items:   []entity.LineItem{{ProductID: "v1", Quantity: 2}},
		Amounts: entity.OrderAmounts{Subtotal: 600, Tax: 48, Total: 648},
		Status:  entity.OrderStatusConfirmed,
	}
	require.NoError(t, repo.SaveOrder(ctx, order))

	txn := entity.NewOrderTransaction("txn-1", "ORD-1", testStart)
	txn.AddStep(entity.StepInventoryReserved, map[string]any{"items": order.Items}, testStart)
	require.NoError(t, repo.SaveTransaction(ctx, txn))

	loaded, err := repo.GetOrder(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, order.Amounts, loaded.Amounts)
	assert.Equal(t, order.Items, loaded.Items)

	loadedTxn, err := repo.GetTransaction(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "txn-1", loadedTxn.ID)
	require.Len(t, loadedTxn.Steps, 1)
	assert.Equal(t, entity.StepInventoryReserved, loadedTxn.Steps[0].Name)
}
