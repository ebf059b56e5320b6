package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout sessions and server-side totals
type CheckoutHandler struct {
	purchase usecase.PurchaseUseCase
	checkout usecase.CheckoutUseCase
	logger   coreport.Logger
}

// NewCheckoutHandler creates a new checkout handler instance
func NewCheckoutHandler(
	purchase usecase.PurchaseUseCase,
	checkout usecase.CheckoutUseCase,
	logger coreport.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		purchase: purchase,
		checkout: checkout,
		logger:   logger,
	}
}

// CreateSession handles the POST /api/checkout/sessions endpoint
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	session, err := h.purchase.BeginCheckout(c.Request.Context(), req.OwnerID, dto.ToEntities(req.Cart), req.Prefecture)
	if err != nil {
		respondError(c, h.logger, "Checkout session creation failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession handles the GET /api/checkout/sessions/:ownerId endpoint
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	session, err := h.checkout.Require(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, h.logger, "Checkout session lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles the PATCH /api/checkout/sessions/:ownerId endpoint
func (h *CheckoutHandler) UpdateSession(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	ownerID := c.Param("ownerId")
	session, err := h.checkout.Update(ctx, ownerID, req.ToPatch())
	if err != nil {
		respondError(c, h.logger, "Checkout session update failed", err)
		return
	}

	// Totals follow the cart and the destination
	calc, err := h.checkout.Recalculate(ctx, session.Cart, session.Prefecture)
	if err != nil {
		respondError(c, h.logger, "Checkout recalculation failed", err)
		return
	}
	session, err = h.checkout.Update(ctx, ownerID, entity.SessionPatch{ServerCalculation: calc})
	if err != nil {
		respondError(c, h.logger, "Checkout session update failed", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles the DELETE /api/checkout/sessions/:ownerId endpoint
func (h *CheckoutHandler) DeleteSession(c *gin.Context) {
	existed, err := h.checkout.Clear(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		respondError(c, h.logger, "Checkout session deletion failed", err)
		return
	}
	if !existed {
		respondError(c, h.logger, "Checkout session deletion failed", domainerr.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// Calculate handles the POST /api/checkout/calculate endpoint
func (h *CheckoutHandler) Calculate(c *gin.Context) {
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	calc, err := h.checkout.Recalculate(c.Request.Context(), dto.ToEntities(req.Cart), req.Prefecture)
	if err != nil {
		respondError(c, h.logger, "Calculation failed", err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

// Verify handles the POST /api/checkout/sessions/:ownerId/verify endpoint
func (h *CheckoutHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	ownerID := c.Param("ownerId")
	verification, calc, err := h.checkout.Verify(c.Request.Context(), ownerID, req.ClientTotal)
	if err != nil {
		respondError(c, h.logger, "Amount verification failed", err)
		return
	}
	if !verification.Valid {
		h.logger.Warn("Amount mismatch on verification", map[string]any{
			"owner_id":     ownerID,
			"client_total": verification.ClientTotal,
			"server_total": verification.ServerTotal,
			"difference":   verification.Difference,
		})
		c.JSON(http.StatusBadRequest, dto.VerifyResponse{Valid: false, Message: tamperingMessage})
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{Valid: true, Calculation: calc})
}
