package order

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// Notifications are best effort: a failed e-mail never changes the outcome of an order.

func (c *Coordinator) notifyConfirmation(ctx context.Context, req usecase.OrderRequest, order *entity.Order, awaitingPayment bool) {
	if c.notifier == nil {
		return
	}
	_, err := c.notifier.SendOrderConfirmation(ctx, entity.OrderConfirmation{
		OrderID:          order.ID,
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		Items:            req.Calculation.Items,
		Amounts:          order.Amounts,
		PaymentMethod:    order.PaymentMethod,
		ShippingAddress:  strings.TrimSpace(req.Customer.Prefecture + " " + req.Customer.Address),
		DeliveryDate:     req.Customer.DeliveryDate,
		DeliveryTimeSlot: req.Customer.DeliveryTimeSlot,
		AwaitingPayment:  awaitingPayment,
	})
	if err != nil {
		c.logger.Warn("Failed to send order confirmation", map[string]any{
			"orderId": order.ID,
			"error":   err.Error(),
		})
	}
}

func (c *Coordinator) notifyPaymentFailure(ctx context.Context, req usecase.OrderRequest, method entity.PaymentMethod, reason string) {
	if c.notifier == nil {
		return
	}
	_, err := c.notifier.SendPaymentFailure(ctx, entity.PaymentFailureNotice{
		OrderID:       req.OrderID,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		PaymentMethod: method.Type,
		FailureReason: reason,
		Amount:        req.Calculation.FinalTotal,
		RetryURL:      c.retryURL(req.OrderID),
	})
	if err != nil {
		c.logger.Warn("Failed to send payment failure notice", map[string]any{
			"orderId": req.OrderID,
			"error":   err.Error(),
		})
	}
}

func (c *Coordinator) alertAdmin(ctx context.Context, alert entity.RollbackAlert) {
	if c.notifier == nil {
		return
	}
	if _, err := c.notifier.SendRollbackAlert(ctx, alert); err != nil {
		c.logger.Error("Failed to alert administrator about rollback failure", map[string]any{
			"orderId": alert.OrderID,
			"error":   err.Error(),
		})
	}
}

func (c *Coordinator) retryURL(orderID string) string {
	base := c.config.RetryURLBase
	if base == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sorderId=%s", base, sep, url.QueryEscape(orderID))
}
