package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

// StaticCatalog serves a fixed product list loaded at startup
type StaticCatalog struct {
	products map[string]*entity.Product
	ordered  []*entity.Product
}

// NewStaticCatalog indexes products by ID. Duplicate or empty IDs and negative prices are rejected.
func NewStaticCatalog(products []entity.Product) (*StaticCatalog, error) {
	c := &StaticCatalog{products: make(map[string]*entity.Product, len(products))}

	for i := range products {
		p := products[i]
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("%w: catalog entry %d", errs.ErrInvalidProductID, i)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %s", errs.ErrInvalidRequest, p.ID)
		}
		if p.UnitPrice < 0 || p.TaxRate.IsNegative() {
			return nil, fmt.Errorf("%w: product %s has a negative price or tax rate", errs.ErrInvalidRequest, p.ID)
		}
		if p.SaleType == "" {
			p.SaleType = entity.SaleTypeNormal
		}
		c.products[p.ID] = &p
		c.ordered = append(c.ordered, &p)
	}

	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	return c, nil
}

func (c *StaticCatalog) GetProduct(_ context.Context, productID string) (*entity.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrProductNotFound, productID)
	}
	clone := *p
	return &clone, nil
}

func (c *StaticCatalog) ListProducts(_ context.Context) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(c.ordered))
	for _, p := range c.ordered {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}
