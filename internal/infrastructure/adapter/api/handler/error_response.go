package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// tamperingMessage is shown instead of the server figures
const tamperingMessage = "The order amount changed. Please review your cart and try again."

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrAmountTampering):
		return http.StatusBadRequest
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, domainerr.ErrProductLocked):
		return http.StatusLocked
	case errors.Is(err, domainerr.ErrInsufficientStock), errors.Is(err, domainerr.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrInvalidOrderState), errors.Is(err, domainerr.ErrDuplicateNotification),
		errors.Is(err, domainerr.ErrOrderIDConflict):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, domainerr.ErrNotificationRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domainerr.ErrCannotShip):
		return http.StatusUnprocessableEntity
	case domainerr.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrGatewayFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text a shopper may see for err
func messageFor(err error, status int) string {
	switch {
	case errors.Is(err, domainerr.ErrAmountTampering):
		return tamperingMessage
	case status >= http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}

// respondError writes the error response for err and logs it
func respondError(c *gin.Context, logger coreport.Logger, msg string, err error) {
	status := statusFor(err)

	fields := map[string]any{
		"path":   c.FullPath(),
		"status": status,
		"error":  err.Error(),
	}
	var detailed interface{ LogFields() map[string]any }
	if errors.As(err, &detailed) {
		for k, v := range detailed.LogFields() {
			fields[k] = v
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, fields)
	} else {
		logger.Warn(msg, fields)
	}

	resp := dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: messageFor(err, status),
	}
	var locked *domainerr.ProductLockedError
	if errors.As(err, &locked) {
		resp.RetryAfterSeconds = locked.RetryAfterSeconds
		c.Header("Retry-After", strconv.Itoa(locked.RetryAfterSeconds))
	}
	c.JSON(status, resp)
}

// respondBindError rejects a malformed request body
func respondBindError(c *gin.Context, logger coreport.Logger, err error) {
	logger.Warn("Invalid request format", map[string]any{
		"path":  c.FullPath(),
		"error": err.Error(),
	})
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
		Message: "Invalid request format: " + err.Error(),
	})
}

// queryInt reads an optional non-negative integer query parameter
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domainerr.ErrInvalidRequest, name)
	}
	return n, nil
}
