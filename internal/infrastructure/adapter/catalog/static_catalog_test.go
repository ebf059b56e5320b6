package catalog

import (
	"context"
	"testing"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog(t *testing.T) {
	ctx := context.Background()
	c, err := NewStaticCatalog([]entity.Product{
		{ID: "v2", Name: "Tomatoes", UnitPrice: 450, TaxRate: decimal.RequireFromString("0.08")},
		{ID: "v1", Name: "Carrots", UnitPrice: 300, TaxRate: decimal.RequireFromString("0.08")},
	})
	require.NoError(t, err)

	p, err := c.GetProduct(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.UnitPrice)
	assert.Equal(t, entity.SaleTypeNormal, p.SaleType)

	p.UnitPrice = 1
	again, err := c.GetProduct(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), again.UnitPrice, "callers get copies")

	_, err = c.GetProduct(ctx, "nope")
	assert.ErrorIs(t, err, errs.ErrProductNotFound)

	all, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "v1", all[0].ID)
	assert.Equal(t, "v2", all[1].ID)
}

func TestNewStaticCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		products []entity.Product
		want     error
	}{
		{"empty id", []entity.Product{{ID: " "}}, errs.ErrInvalidProductID},
		{"duplicate", []entity.Product{{ID: "v1"}, {ID: "v1"}}, errs.ErrInvalidRequest},
		{"negative price", []entity.Product{{ID: "v1", UnitPrice: -1}}, errs.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStaticCatalog(tt.products)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
