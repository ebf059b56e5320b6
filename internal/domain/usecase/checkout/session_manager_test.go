package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/catalog"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var farmShipping = entity.ShippingPolicy{
	Carrier:       "Yamato cool",
	Fee:           500,
	TaxRate:       decimal.RequireFromString("0.10"),
	MinimumOrder:  4500,
	ExcludedAreas: []string{"沖縄"},
}

type fixture struct {
	manager *SessionManager
	store   *kvstore.MemoryStore
	clock   *timeprovider.ManualTimeProvider
}

func newFixture(t *testing.T, shipping entity.ShippingPolicy) *fixture {
	c, err := catalog.NewStaticCatalog([]entity.Product{
		{ID: "v1", Name: "Carrots", UnitPrice: 300, TaxRate: decimal.RequireFromString("0.08")},
		{ID: "v2", Name: "Melon", UnitPrice: 2480, TaxRate: decimal.RequireFromString("0.08"), MaxOrderQuantity: 3},
		{ID: "v3", Name: "Tea", UnitPrice: 999, TaxRate: decimal.RequireFromString("0.08")},
	})
	require.NoError(t, err)

	store := kvstore.NewMemoryStore()
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	return &fixture{
		manager: NewSessionManager(store, c, shipping, clock, logger.NewNoopLogger(), 0),
		store:   store,
		clock:   clock,
	}
}

func TestRecalculate(t *testing.T) {
	ctx := context.Background()

	t.Run("no shipping policy", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})

		calc, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "v1", Quantity: 2}}, "")
		require.NoError(t, err)
		assert.Equal(t, int64(600), calc.Subtotal)
		assert.Equal(t, int64(48), calc.Tax)
		assert.Equal(t, int64(648), calc.FinalTotal)
		assert.True(t, calc.CanCheckout)
		require.Len(t, calc.Items, 1)
		assert.Equal(t, "Carrots", calc.Items[0].Name)
	})

	t.Run("duplicate lines priced as one floored line", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})

		calc, err := f.manager.Recalculate(ctx, []entity.LineItem{
			{ProductID: "v3", Quantity: 1},
			{ProductID: "v3", Quantity: 2},
		}, "")
		require.NoError(t, err)
		require.Len(t, calc.Items, 1)
		assert.Equal(t, int64(2997), calc.Subtotal)
		assert.Equal(t, int64(239), calc.Tax)
	})

	t.Run("flat shipping with tax", func(t *testing.T) {
		f := newFixture(t, farmShipping)

		calc, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "v2", Quantity: 2}}, "東京都")
		require.NoError(t, err)
		assert.Equal(t, int64(4960), calc.Subtotal)
		assert.Equal(t, int64(396), calc.Tax)
		assert.Equal(t, int64(550), calc.Shipping.Total)
		assert.Equal(t, int64(4960+396+550), calc.FinalTotal)
		assert.True(t, calc.CanCheckout)
	})

	t.Run("below minimum order", func(t *testing.T) {
		f := newFixture(t, farmShipping)

		calc, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "v1", Quantity: 2}}, "")
		require.NoError(t, err)
		assert.True(t, calc.Shipping.CannotShip)
		assert.False(t, calc.CanCheckout)
	})

	t.Run("excluded area", func(t *testing.T) {
		f := newFixture(t, farmShipping)

		calc, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "v2", Quantity: 2}}, "沖縄県")
		require.NoError(t, err)
		assert.False(t, calc.CanCheckout)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})

		_, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "nope", Quantity: 1}}, "")
		assert.ErrorIs(t, err, errs.ErrProductNotFound)
	})

	t.Run("above maximum", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})

		_, err := f.manager.Recalculate(ctx, []entity.LineItem{{ProductID: "v2", Quantity: 4}}, "")
		assert.ErrorIs(t, err, errs.ErrQuantityAboveMaximum)
	})
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.ShippingPolicy{})
	cart := []entity.LineItem{{ProductID: "v1", Quantity: 2}}

	session, err := f.manager.Create(ctx, "shopper-1", cart)
	require.NoError(t, err)
	assert.False(t, session.Verified)
	assert.Equal(t, session.CreatedAt.Add(entity.DefaultSessionTTL), session.ExpiresAt)

	got, err := f.manager.Get(ctx, "shopper-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	prefecture := "東京都"
	updated, err := f.manager.Update(ctx, "shopper-1", entity.SessionPatch{Prefecture: &prefecture})
	require.NoError(t, err)
	assert.Equal(t, "東京都", updated.Prefecture)

	removed, err := f.manager.Clear(ctx, "shopper-1")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = f.manager.Get(ctx, "shopper-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.manager.Update(ctx, "shopper-1", entity.SessionPatch{Prefecture: &prefecture})
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.ShippingPolicy{})

	_, err := f.manager.Create(ctx, "shopper-1", []entity.LineItem{{ProductID: "v1", Quantity: 1}})
	require.NoError(t, err)

	f.clock.Advance(entity.DefaultSessionTTL)
	got, err := f.manager.Get(ctx, "shopper-1")
	require.NoError(t, err)
	assert.NotNil(t, got, "still live exactly at expiry")

	f.clock.Advance(time.Second)
	_, err = f.manager.Require(ctx, "shopper-1")
	assert.ErrorIs(t, err, errs.ErrSessionExpired)
	assert.Empty(t, f.store.Keys(sessionKeyPrefix), "expired session purged")

	_, err = f.manager.Require(ctx, "shopper-1")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		clientTotal int64
		valid       bool
	}{
		{"exact", 648, true},
		{"one yen over", 649, true},
		{"one yen under", 647, true},
		{"two yen off", 646, false},
		{"far off", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, entity.ShippingPolicy{})
			_, err := f.manager.Create(ctx, "shopper-1", []entity.LineItem{{ProductID: "v1", Quantity: 2}})
			require.NoError(t, err)

			verification, calc, err := f.manager.Verify(ctx, "shopper-1", tt.clientTotal)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, verification.Valid)
			assert.Equal(t, !tt.valid, verification.Tampering)
			assert.Equal(t, int64(648), calc.FinalTotal)

			stored, err := f.manager.Require(ctx, "shopper-1")
			require.NoError(t, err)
			assert.Equal(t, tt.valid, stored.Verified)
			require.NotNil(t, stored.ServerCalculation)
		})
	}

	t.Run("cart change resets verification", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})
		_, err := f.manager.Create(ctx, "shopper-1", []entity.LineItem{{ProductID: "v1", Quantity: 2}})
		require.NoError(t, err)
		_, _, err = f.manager.Verify(ctx, "shopper-1", 648)
		require.NoError(t, err)

		updated, err := f.manager.Update(ctx, "shopper-1", entity.SessionPatch{
			Cart: []entity.LineItem{{ProductID: "v1", Quantity: 3}},
		})
		require.NoError(t, err)
		assert.False(t, updated.Verified)
		assert.Nil(t, updated.ServerCalculation)
	})

	t.Run("no session", func(t *testing.T) {
		f := newFixture(t, entity.ShippingPolicy{})

		_, _, err := f.manager.Verify(ctx, "ghost", 648)
		assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	})
}

func TestCreate_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, entity.ShippingPolicy{})

	_, err := f.manager.Create(ctx, "", []entity.LineItem{{ProductID: "v1", Quantity: 1}})
	assert.ErrorIs(t, err, errs.ErrInvalidHolderID)

	_, err = f.manager.Create(ctx, "shopper-1", nil)
	assert.ErrorIs(t, err, errs.ErrEmptyCart)
}
