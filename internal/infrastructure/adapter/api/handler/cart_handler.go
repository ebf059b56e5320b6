package handler

import (
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CartHandler handles add-to-cart requests
type CartHandler struct {
	purchase usecase.PurchaseUseCase
	logger   coreport.Logger
}

// NewCartHandler creates a new cart handler instance
func NewCartHandler(purchase usecase.PurchaseUseCase, logger coreport.Logger) *CartHandler {
	return &CartHandler{
		purchase: purchase,
		logger:   logger,
	}
}

// AddItem handles the POST /api/cart/items endpoint
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	result, err := h.purchase.AddToCart(c.Request.Context(), usecase.AddToCartRequest{
		HolderID:  req.HolderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Cart:      dto.ToEntities(req.Cart),
	})
	if err != nil {
		respondError(c, h.logger, "Add to cart failed", err)
		return
	}

	switch {
	case result.Locked:
		c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		c.JSON(http.StatusLocked, result)
	case !result.Success:
		c.JSON(http.StatusConflict, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// ReleaseItem handles the DELETE /api/cart/items/:productId endpoint.
// The shopper is named by the holderId query parameter.
func (h *CartHandler) ReleaseItem(c *gin.Context) {
	productID := c.Param("productId")
	holderID := c.Query("holderId")
	if holderID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidHolderID),
			Message: "Missing required query parameter: holderId",
		})
		return
	}

	released, err := h.purchase.ReleaseHold(c.Request.Context(), productID, holderID)
	if err != nil {
		respondError(c, h.logger, "Release hold failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.ReleaseResponse{ProductID: productID, Released: released})
}
