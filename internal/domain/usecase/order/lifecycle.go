package order

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

// Settle confirms an order whose out-of-band payment (konbini voucher) has been received
func (c *Coordinator) Settle(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	txn, err := c.orders.GetTransaction(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if txn.Status != entity.TransactionStatusAuthorized {
		return nil, fmt.Errorf("%w: transaction is %s", errs.ErrInvalidOrderState, txn.Status)
	}

	now := c.timeProvider.Now()
	if err := order.MarkPaid(now); err != nil {
		return nil, fmt.Errorf("%w: order is %s", err, order.Status)
	}
	txn.SetStatus(entity.TransactionStatusCaptured, now)

	if err := c.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := c.orders.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	c.logger.Info("Order payment settled", map[string]any{
		"orderId":   orderID,
		"paymentId": order.PaymentID,
	})
	c.events.Emit(ctx, entity.EventOrderCaptured, orderID, orderEvent{
		OrderID:       orderID,
		TransactionID: txn.ID,
		Total:         order.Amounts.Total,
		PaymentMethod: string(order.PaymentMethod),
	})
	return order, nil
}

// Refund voids the payment of a live order and puts its stock back
func (c *Coordinator) Refund(ctx context.Context, orderID, reason string) (*entity.Order, error) {
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	txn, err := c.orders.GetTransaction(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusConfirmed && order.Status != entity.OrderStatusAwaitingPayment {
		return nil, fmt.Errorf("%w: order is %s", errs.ErrInvalidOrderState, order.Status)
	}
	if reason == "" {
		reason = entity.ReasonRefund
	}

	gw, err := c.gateways.Gateway(order.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := gw.Cancel(ctx, order.PaymentID); err != nil {
		return nil, fmt.Errorf("cancel payment %s: %w", order.PaymentID, err)
	}
	if err := c.ledger.Release(ctx, order.Items, entity.ReasonRefund); err != nil {
		c.logger.Error("CRITICAL: payment refunded but stock not restored", map[string]any{
			"orderId": orderID,
			"error":   err.Error(),
		})
		return nil, err
	}

	now := c.timeProvider.Now()
	if err := order.MarkRefunded(now); err != nil {
		return nil, err
	}
	txn.RollbackReason = reason
	txn.SetStatus(entity.TransactionStatusRefunded, now)

	if err := c.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	c.saveTransaction(ctx, txn)

	c.logger.Info("Order refunded", map[string]any{
		"orderId": orderID,
		"reason":  reason,
		"total":   order.Amounts.Total,
	})
	c.events.Emit(ctx, entity.EventOrderRefunded, orderID, orderEvent{
		OrderID:       orderID,
		TransactionID: txn.ID,
		Total:         order.Amounts.Total,
		Reason:        reason,
	})
	return order, nil
}
