package dto

import "github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"

// LineItem is one cart line as sent by the browser
type LineItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ToEntities converts request lines to domain line items
func ToEntities(items []LineItem) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, entity.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// AddToCartRequest represents the API request for adding a product to the cart
type AddToCartRequest struct {
	HolderID  string     `json:"holderId" binding:"required"`
	ProductID string     `json:"productId" binding:"required"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	Cart      []LineItem `json:"cart" binding:"omitempty,dive"`
}

// AcquireLockRequest represents the API request for taking a purchase lock directly
type AcquireLockRequest struct {
	HolderID string `json:"holderId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// ReleaseAllResponse reports how many locks were dropped
type ReleaseAllResponse struct {
	HolderID string `json:"holderId"`
	Released int    `json:"released"`
}

// ReleaseResponse reports whether a lock was dropped
type ReleaseResponse struct {
	ProductID string `json:"productId"`
	Released  bool   `json:"released"`
}
