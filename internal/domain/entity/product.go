package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/shopspring/decimal"
)

// SaleType describes how a product is currently offered
type SaleType string

const (
	SaleTypeNormal     SaleType = "normal"
	SaleTypePreOrder   SaleType = "pre_order"
	SaleTypeOutOfStock SaleType = "out_of_stock"
)

// Product is read-only catalog reference data. Prices always come from here, never from the client.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	UnitPrice        int64           `json:"price"`                      // Tax-exclusive price in yen
	TaxRate          decimal.Decimal `json:"taxRate"`                    // e.g. 0.08 for food
	Unit             string          `json:"unit,omitempty"`             // e.g. "box", "kg"
	MinOrderQuantity int             `json:"minOrderQuantity,omitempty"` // 0 means 1
	MaxOrderQuantity int             `json:"maxOrderQuantity,omitempty"` // 0 means unbounded
	SaleType         SaleType        `json:"saleType,omitempty"`
}

// ValidateQuantity checks a cart quantity against the product's order bounds
func (p *Product) ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return errs.ErrInvalidQuantity
	}
	if p.MinOrderQuantity > 1 && quantity < p.MinOrderQuantity {
		return errs.NewQuantityBoundsError(p.ID, quantity, p.MinOrderQuantity, errs.ErrQuantityBelowMinimum)
	}
	if p.MaxOrderQuantity > 0 && quantity > p.MaxOrderQuantity {
		return errs.NewQuantityBoundsError(p.ID, quantity, p.MaxOrderQuantity, errs.ErrQuantityAboveMaximum)
	}
	return nil
}

// LineItem is one element of a cart snapshot
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Validate checks the line's shape without consulting the catalog
func (l LineItem) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" {
		return errs.ErrInvalidProductID
	}
	if l.Quantity < 1 {
		return fmt.Errorf("%w: product %s quantity %d", errs.ErrInvalidQuantity, l.ProductID, l.Quantity)
	}
	return nil
}

// ValidateLineItems validates every line and rejects an empty list
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return errs.ErrEmptyCart
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MergeLineItems sums quantities of repeated products, keeping first-occurrence order
func MergeLineItems(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// CartQuantity returns the quantity of productID already in the cart
func CartQuantity(cart []LineItem, productID string) int {
	total := 0
	for _, item := range cart {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}

// UpsertLineItem returns a copy of the cart with productID set to quantity
func UpsertLineItem(cart []LineItem, productID string, quantity int) []LineItem {
	updated := make([]LineItem, 0, len(cart)+1)
	found := false
	for _, item := range cart {
		if item.ProductID == productID {
			if !found {
				updated = append(updated, LineItem{ProductID: productID, Quantity: quantity})
				found = true
			}
			continue
		}
		updated = append(updated, item)
	}
	if !found {
		updated = append(updated, LineItem{ProductID: productID, Quantity: quantity})
	}
	return updated
}
