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

// LockHandler exposes the purchase locks for the storefront and for support staff
type LockHandler struct {
	locks  usecase.LockUseCase
	logger coreport.Logger
}

// NewLockHandler creates a new lock handler instance
func NewLockHandler(locks usecase.LockUseCase, logger coreport.Logger) *LockHandler {
	return &LockHandler{
		locks:  locks,
		logger: logger,
	}
}

// Get handles the GET /api/locks/:productId endpoint
func (h *LockHandler) Get(c *gin.Context) {
	lock, err := h.locks.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, "Lock lookup failed", err)
		return
	}
	if lock == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrNotFound),
			Message: "No purchase lock in force",
		})
		return
	}
	c.JSON(http.StatusOK, lock)
}

// Acquire handles the POST /api/locks/:productId endpoint
func (h *LockHandler) Acquire(c *gin.Context) {
	var req dto.AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	result, err := h.locks.Acquire(c.Request.Context(), c.Param("productId"), req.HolderID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, "Lock acquisition failed", err)
		return
	}
	if !result.Granted {
		c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		c.JSON(http.StatusLocked, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Release handles the DELETE /api/locks/:productId endpoint
func (h *LockHandler) Release(c *gin.Context) {
	productID := c.Param("productId")
	holderID := c.Query("holderId")
	if holderID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidHolderID),
			Message: "Missing required query parameter: holderId",
		})
		return
	}

	released, err := h.locks.Release(c.Request.Context(), productID, holderID)
	if err != nil {
		respondError(c, h.logger, "Lock release failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.ReleaseResponse{ProductID: productID, Released: released})
}

// ReleaseAll handles the DELETE /api/holders/:holderId/locks endpoint
func (h *LockHandler) ReleaseAll(c *gin.Context) {
	holderID := c.Param("holderId")

	count, err := h.locks.ReleaseAll(c.Request.Context(), holderID)
	if err != nil {
		respondError(c, h.logger, "Lock release failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.ReleaseAllResponse{HolderID: holderID, Released: count})
}
