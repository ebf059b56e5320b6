package checkout

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// Recalculate prices the cart strictly from catalog data; client prices never enter here.
// Line tax is floored per line and the order tax is the sum of line taxes.
func (m *SessionManager) Recalculate(ctx context.Context, cart []entity.LineItem, prefecture string) (*entity.ServerCalculation, error) {
	if err := entity.ValidateLineItems(cart); err != nil {
		return nil, err
	}

	calc := &entity.ServerCalculation{
		Items:        make([]entity.LineCalculation, 0, len(cart)),
		CalculatedAt: m.timeProvider.Now(),
	}

	for _, item := range entity.MergeLineItems(cart) {
		product, err := m.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := product.ValidateQuantity(item.Quantity); err != nil {
			return nil, err
		}

		subtotal := product.UnitPrice * int64(item.Quantity)
		tax := entity.CalculateTax(subtotal, product.TaxRate)
		calc.Items = append(calc.Items, entity.LineCalculation{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
			Tax:       tax,
			Total:     subtotal + tax,
		})
		calc.Subtotal += subtotal
		calc.Tax += tax
	}

	calc.SubtotalWithTax = calc.Subtotal + calc.Tax
	calc.Shipping = m.shipping.Calculate(calc.Subtotal, prefecture)
	calc.FinalTotal = calc.SubtotalWithTax + calc.Shipping.Total
	calc.CanCheckout = !calc.Shipping.CannotShip
	return calc, nil
}
