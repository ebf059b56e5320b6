package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

const (
	defaultChangesLimit = 100
	adminActor          = "admin"
)

// InventoryHandler handles stock queries and admin stock edits
type InventoryHandler struct {
	inventory usecase.InventoryUseCase
	logger    coreport.Logger
}

// NewInventoryHandler creates a new inventory handler instance
func NewInventoryHandler(inventory usecase.InventoryUseCase, logger coreport.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// List handles the GET /api/inventory endpoint
func (h *InventoryHandler) List(c *gin.Context) {
	records, err := h.inventory.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Inventory listing failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.InventoryListResponse{Items: records, Count: len(records)})
}

// Get handles the GET /api/inventory/items/:productId endpoint
func (h *InventoryHandler) Get(c *gin.Context) {
	record, err := h.inventory.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, "Inventory lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Availability handles the GET /api/inventory/items/:productId/availability endpoint
func (h *InventoryHandler) Availability(c *gin.Context) {
	quantity, err := queryInt(c, "quantity", 1)
	if err != nil {
		respondError(c, h.logger, "Invalid availability query", err)
		return
	}

	availability, err := h.inventory.CheckAvailability(c.Request.Context(), c.Param("productId"), quantity)
	if err != nil {
		respondError(c, h.logger, "Availability check failed", err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// Adjust handles the POST /api/inventory/items/:productId/adjust endpoint
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	record, err := h.inventory.Adjust(c.Request.Context(), c.Param("productId"), req.Delta,
		orDefault(req.Reason, entity.ReasonAdjustment), orDefault(req.Actor, adminActor))
	if err != nil {
		respondError(c, h.logger, "Stock adjustment failed", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetStock handles the PUT /api/inventory/items/:productId endpoint
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	record, err := h.inventory.SetStock(c.Request.Context(), c.Param("productId"), *req.Stock,
		orDefault(req.Reason, entity.ReasonAdjustment), orDefault(req.Actor, adminActor))
	if err != nil {
		respondError(c, h.logger, "Stock update failed", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SyncHarvest handles the POST /api/inventory/sync-harvest endpoint
func (h *InventoryHandler) SyncHarvest(c *gin.Context) {
	var req dto.HarvestSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	records, err := h.inventory.SyncHarvest(c.Request.Context(), dto.ToHarvestItems(req.Items), orDefault(req.Actor, adminActor))
	if err != nil {
		respondError(c, h.logger, "Harvest sync failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.InventoryListResponse{Items: records, Count: len(records)})
}

// ValidateCart handles the POST /api/inventory/validate-cart endpoint
func (h *InventoryHandler) ValidateCart(c *gin.Context) {
	var req dto.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	validation, err := h.inventory.ValidateCart(c.Request.Context(), dto.ToEntities(req.Cart))
	if err != nil {
		respondError(c, h.logger, "Cart validation failed", err)
		return
	}
	c.JSON(http.StatusOK, validation)
}

// Changes handles the GET /api/inventory/logs endpoint
func (h *InventoryHandler) Changes(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultChangesLimit)
	if err != nil {
		respondError(c, h.logger, "Invalid change log query", err)
		return
	}

	changes, err := h.inventory.Changes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "Change log lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.ChangesResponse{Changes: changes, Count: len(changes)})
}

// LowStock handles the GET /api/inventory/low-stock endpoint
func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold, err := queryInt(c, "threshold", 0)
	if err != nil {
		respondError(c, h.logger, "Invalid low stock query", err)
		return
	}

	records, err := h.inventory.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, h.logger, "Low stock lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.InventoryListResponse{Items: records, Count: len(records)})
}

// Report handles the GET /api/inventory/report endpoint
func (h *InventoryHandler) Report(c *gin.Context) {
	report, err := h.inventory.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Inventory report failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
