package dto

import (
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// AdjustStockRequest represents the API request for a relative stock change
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// SetStockRequest represents the API request for an absolute stock level
type SetStockRequest struct {
	Stock  *int   `json:"stock" binding:"required,min=0"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// HarvestSyncRequest represents a batch of stock levels from the harvest sheet
type HarvestSyncRequest struct {
	Items []HarvestItem `json:"items" binding:"required,min=1,dive"`
	Actor string        `json:"actor"`
}

// HarvestItem is one product line of a harvest sync
type HarvestItem struct {
	ProductID string `json:"productId" binding:"required"`
	Stock     *int   `json:"stock" binding:"required,min=0"`
}

// ToHarvestItems converts request lines to use case input
func ToHarvestItems(items []HarvestItem) []usecase.HarvestItem {
	out := make([]usecase.HarvestItem, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.HarvestItem{ProductID: item.ProductID, Stock: *item.Stock})
	}
	return out
}

// CartRequest carries a cart snapshot
type CartRequest struct {
	Cart []LineItem `json:"cart" binding:"required,min=1,dive"`
}

// InventoryListResponse wraps the stock records
type InventoryListResponse struct {
	Items []*entity.InventoryRecord `json:"items"`
	Count int                       `json:"count"`
}

// ChangesResponse wraps the change log
type ChangesResponse struct {
	Changes []entity.InventoryChange `json:"changes"`
	Count   int                      `json:"count"`
}
