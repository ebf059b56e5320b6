package handler

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order placement and the order lifecycle
type OrderHandler struct {
	purchase usecase.PurchaseUseCase
	orders   usecase.OrderUseCase
	logger   coreport.Logger
}

// NewOrderHandler creates a new order handler instance
func NewOrderHandler(
	purchase usecase.PurchaseUseCase,
	orders usecase.OrderUseCase,
	logger coreport.Logger,
) *OrderHandler {
	return &OrderHandler{
		purchase: purchase,
		orders:   orders,
		logger:   logger,
	}
}

// PlaceOrder handles the POST /api/orders endpoint
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	result, err := h.purchase.PlaceOrder(c.Request.Context(), usecase.PlaceOrderRequest{
		OwnerID:       req.OwnerID,
		OrderID:       req.OrderID,
		ClientTotal:   req.ClientTotal,
		Customer:      req.Customer.ToCustomer(),
		PaymentMethod: req.PaymentMethod.ToPaymentMethod(),
	})
	if err != nil {
		respondError(c, h.logger, "Order placement rejected", err)
		return
	}

	if result.Success {
		c.JSON(http.StatusCreated, result)
		return
	}

	if result.CriticalFailure {
		h.logger.Error("Order left in an inconsistent state", map[string]any{
			"owner_id": req.OwnerID,
			"error":    result.Error,
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    domainerr.CodeRollbackFailed,
			Message: "Your order could not be completed. Our staff has been notified.",
		})
		return
	}

	status := http.StatusInternalServerError
	if result.Err != nil {
		status = statusFor(result.Err)
	}
	h.logger.Info("Order not placed", map[string]any{
		"owner_id":    req.OwnerID,
		"status":      status,
		"rolled_back": result.RolledBack,
		"error":       result.Error,
	})
	c.JSON(status, result)
}

// GetOrder handles the GET /api/orders/:orderId endpoint
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Order(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, "Order lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetTransaction handles the GET /api/orders/:orderId/transaction endpoint
func (h *OrderHandler) GetTransaction(c *gin.Context) {
	txn, err := h.orders.Transaction(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, "Transaction lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// Settle handles the POST /api/orders/:orderId/settle endpoint
func (h *OrderHandler) Settle(c *gin.Context) {
	order, err := h.orders.Settle(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, "Order settlement failed", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Refund handles the POST /api/orders/:orderId/refund endpoint
func (h *OrderHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, h.logger, err)
			return
		}
	}

	order, err := h.orders.Refund(c.Request.Context(), c.Param("orderId"), req.Reason)
	if err != nil {
		respondError(c, h.logger, "Order refund failed", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
