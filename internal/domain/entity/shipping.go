package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingPolicy is the flat-rate cool-delivery policy of the farm.
// The zero value ships everything for free with no minimum order.
type ShippingPolicy struct {
	Carrier               string
	Fee                   int64           // Flat fee in yen, tax exclusive
	TaxRate               decimal.Decimal // Tax charged on the fee
	FreeShippingThreshold int64           // 0 disables free shipping
	MinimumOrder          int64           // Subtotal below this cannot ship; 0 disables
	ExcludedAreas         []string        // e.g. remote islands
}

// ShippingCalculation is the shipping part of a server-side calculation
type ShippingCalculation struct {
	Fee          int64  `json:"fee"`
	Tax          int64  `json:"tax"`
	Total        int64  `json:"total"`
	FreeShipping bool   `json:"freeShipping"`
	CannotShip   bool   `json:"cannotShip"`
	Message      string `json:"message,omitempty"`
}

// Calculate prices shipping for a tax-exclusive subtotal and an optional prefecture
func (p ShippingPolicy) Calculate(subtotal int64, prefecture string) ShippingCalculation {
	if p.MinimumOrder > 0 && subtotal < p.MinimumOrder {
		return ShippingCalculation{
			CannotShip: true,
			Message:    fmt.Sprintf("minimum order of %s not reached", FormatYen(p.MinimumOrder)),
		}
	}

	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return ShippingCalculation{
			FreeShipping: true,
			Message:      fmt.Sprintf("free shipping on orders of %s or more", FormatYen(p.FreeShippingThreshold)),
		}
	}

	result := ShippingCalculation{Fee: p.Fee}
	if p.Fee > 0 {
		result.Tax = CalculateTax(p.Fee, p.TaxRate)
		result.Message = strings.TrimSpace(p.Carrier + " flat rate")
	}
	result.Total = result.Fee + result.Tax

	if p.IsExcluded(prefecture) {
		result.CannotShip = true
		result.Message = fmt.Sprintf("%s is outside the delivery area", prefecture)
	}
	return result
}

// IsExcluded reports whether the destination matches an excluded area in either direction
func (p ShippingPolicy) IsExcluded(prefecture string) bool {
	prefecture = strings.TrimSpace(prefecture)
	if prefecture == "" {
		return false
	}
	for _, area := range p.ExcludedAreas {
		if strings.Contains(prefecture, area) || strings.Contains(area, prefecture) {
			return true
		}
	}
	return false
}
