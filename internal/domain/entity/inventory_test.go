package entity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampStock(t *testing.T) {
	assert.Equal(t, 7, ClampStock(10, -3))
	assert.Equal(t, 0, ClampStock(2, -5))
	assert.Equal(t, 13, ClampStock(10, 3))
}

func TestInventoryRecord_Apply(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rec := &InventoryRecord{ProductID: "p1", Stock: 2}

	change := rec.Apply(-5, ReasonAdjustment, "admin", now)

	assert.Equal(t, 0, rec.Stock)
	assert.Equal(t, now, rec.LastUpdated)
	assert.Equal(t, "admin", rec.UpdatedBy)
	assert.Equal(t, InventoryChange{
		ProductID: "p1",
		OldStock:  2,
		NewStock:  0,
		Delta:     -2, // the effective delta after clamping
		Reason:    ReasonAdjustment,
		Actor:     "admin",
		Timestamp: now,
	}, change)

	set := rec.SetStock(12, ReasonHarvestSync, "farm", now)
	assert.Equal(t, 12, rec.Stock)
	assert.Equal(t, 12, set.Delta)
}

func TestPrependChanges(t *testing.T) {
	t.Run("newest first", func(t *testing.T) {
		log := []InventoryChange{{ProductID: "old"}}
		log = PrependChanges(log, InventoryChange{ProductID: "b"}, InventoryChange{ProductID: "a"})

		require.Len(t, log, 3)
		// the last argument is the most recent change
		assert.Equal(t, "a", log[0].ProductID)
		assert.Equal(t, "b", log[1].ProductID)
		assert.Equal(t, "old", log[2].ProductID)
	})

	t.Run("evicts beyond cap", func(t *testing.T) {
		var log []InventoryChange
		for i := 0; i < MaxInventoryChanges+5; i++ {
			log = PrependChanges(log, InventoryChange{ProductID: fmt.Sprintf("p%d", i)})
		}

		require.Len(t, log, MaxInventoryChanges)
		assert.Equal(t, fmt.Sprintf("p%d", MaxInventoryChanges+4), log[0].ProductID)
		assert.Equal(t, "p5", log[MaxInventoryChanges-1].ProductID)
	})
}

func TestNewAvailability(t *testing.T) {
	a := NewAvailability("p1", 3, 5)
	assert.False(t, a.Available)
	assert.Equal(t, 2, a.Shortage)

	b := NewAvailability("p1", 5, 5)
	assert.True(t, b.Available)
	assert.Equal(t, 0, b.Shortage)
}

func TestCheckReservation(t *testing.T) {
	stock := map[string]int{"a": 5, "b": 1}

	assert.Nil(t, CheckReservation([]LineItem{{ProductID: "a", Quantity: 5}, {ProductID: "b", Quantity: 1}}, stock))

	shortage := CheckReservation([]LineItem{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
		{ProductID: "missing", Quantity: 1},
	}, stock)
	require.NotNil(t, shortage)
	assert.Equal(t, StockShortage{ProductID: "b", Requested: 2, Available: 1}, *shortage)
}

func TestNewCartValidation(t *testing.T) {
	result := NewCartValidation([]Availability{
		NewAvailability("ok", 5, 1),
		NewAvailability("soldout", 0, 1),
		NewAvailability("short", 1, 3),
	})

	assert.False(t, result.Valid)
	require.Len(t, result.Unavailable, 1)
	assert.Equal(t, "soldout", result.Unavailable[0].ProductID)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "short", result.Warnings[0].ProductID)

	assert.True(t, NewCartValidation([]Availability{NewAvailability("ok", 5, 1)}).Valid)
}

func TestNewInventoryReport(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	report := NewInventoryReport([]InventoryReportItem{
		{ProductID: "a", Stock: 10, UnitPrice: 300, StockValue: 3000},
		{ProductID: "b", Stock: 0, UnitPrice: 500},
		{ProductID: "c", Stock: 2, UnitPrice: 100, StockValue: 200, LowStock: true},
	}, now)

	assert.Equal(t, 3, report.TotalItems)
	assert.Equal(t, 2, report.InStock)
	assert.Equal(t, 1, report.OutOfStock)
	assert.Equal(t, 1, report.LowStock)
	assert.Equal(t, int64(3200), report.TotalStockValue)
	assert.Equal(t, []string{"b", "c", "a"}, []string{report.Items[0].ProductID, report.Items[1].ProductID, report.Items[2].ProductID})
}

func TestIsLowStock(t *testing.T) {
	assert.False(t, IsLowStock(0, 3))
	assert.True(t, IsLowStock(1, 3))
	assert.True(t, IsLowStock(3, 3))
	assert.False(t, IsLowStock(4, 3))
}
