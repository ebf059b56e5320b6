package order

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

// compensate undoes one completed step
func (c *Coordinator) compensate(ctx context.Context, txn *entity.OrderTransaction, order *entity.Order, step entity.TransactionStep) error {
	switch step.Name {
	case entity.StepOrderCreated:
		if order == nil {
			loaded, err := c.orders.GetOrder(ctx, txn.OrderID)
			if err != nil {
				return err
			}
			order = loaded
		}
		order.Cancel(c.timeProvider.Now())
		return c.orders.SaveOrder(ctx, order)

	case entity.StepPaymentAuthorized:
		gw, err := c.gateways.Gateway(txn.PaymentMethod)
		if err != nil {
			return err
		}
		return gw.Cancel(ctx, txn.PaymentID)

	case entity.StepInventoryReserved:
		return c.ledger.Release(ctx, txn.Items, entity.ReasonRollback)

	default:
		return fmt.Errorf("%w: no compensation for step %q", errs.ErrInternalServer, step.Name)
	}
}

// rollback compensates completed steps strictly in reverse order. A failing compensation does not
// stop the rest; all failures are joined into a RollbackError, the transaction is flagged critical
// and the administrator is alerted.
func (c *Coordinator) rollback(ctx context.Context, txn *entity.OrderTransaction, order *entity.Order, reason string) error {
	log := c.logger.With(map[string]any{
		"orderId":       txn.OrderID,
		"transactionId": txn.ID,
	})
	log.Warn("Rolling back order", map[string]any{
		"reason": reason,
		"steps":  len(txn.Steps),
	})

	var failures []error
	for i := len(txn.Steps) - 1; i >= 0; i-- {
		step := txn.Steps[i]
		if err := c.compensate(ctx, txn, order, step); err != nil {
			log.Error("CRITICAL: compensation failed", map[string]any{
				"step":  step.Name,
				"error": err.Error(),
			})
			failures = append(failures, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		txn.RolledBackSteps = append(txn.RolledBackSteps, step.Name)
	}

	txn.RollbackReason = reason
	txn.SetStatus(entity.TransactionStatusCancelled, c.timeProvider.Now())

	if len(failures) == 0 {
		c.saveTransaction(ctx, txn)
		log.Info("Order rolled back", map[string]any{
			"rolledBack": txn.RolledBackSteps,
		})
		c.events.Emit(ctx, entity.EventOrderCancelled, txn.OrderID, orderEvent{
			OrderID:       txn.OrderID,
			TransactionID: txn.ID,
			Reason:        reason,
		})
		return nil
	}

	txn.CriticalFailure = true
	c.saveTransaction(ctx, txn)

	rbErr := &errs.RollbackError{OrderID: txn.OrderID, Reason: reason, Failures: failures}
	messages := make([]string, 0, len(failures))
	for _, f := range failures {
		messages = append(messages, f.Error())
	}
	stepNames := make([]string, 0, len(txn.Steps))
	for _, s := range txn.Steps {
		stepNames = append(stepNames, s.Name)
	}

	log.Error("CRITICAL: rollback incomplete, manual intervention required", rbErr.LogFields())
	c.events.Emit(ctx, entity.EventOrderRollbackFailed, txn.OrderID, orderEvent{
		OrderID:       txn.OrderID,
		TransactionID: txn.ID,
		Reason:        reason,
		Failures:      messages,
	})
	c.alertAdmin(ctx, entity.RollbackAlert{
		OrderID:       txn.OrderID,
		TransactionID: txn.ID,
		Reason:        reason,
		Failures:      messages,
		Steps:         stepNames,
		OccurredAt:    c.timeProvider.Now(),
	})
	return rbErr
}
