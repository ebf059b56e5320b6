package inventory

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// Reserve decrements every line or none of them. Duplicate product lines are merged first,
// so the reported failing item is the merged line.
func (l *Ledger) Reserve(ctx context.Context, items []entity.LineItem) (*entity.ReservationResult, error) {
	if err := entity.ValidateLineItems(items); err != nil {
		return nil, err
	}
	merged := entity.MergeLineItems(items)

	result, err := l.repo.ReserveAll(ctx, merged, entity.ReasonReservation, actorSystem)
	if err != nil {
		l.logger.Error("Failed to reserve stock", map[string]any{
			"items": len(merged),
			"error": err.Error(),
		})
		return nil, err
	}

	if !result.Success {
		l.logger.Info("Reservation rejected", map[string]any{
			"productId": result.FailedItem.ProductID,
			"requested": result.FailedItem.Requested,
			"available": result.FailedItem.Available,
		})
		return result, nil
	}

	l.logger.Debug("Stock reserved", map[string]any{
		"items": len(merged),
	})
	l.emitLines(ctx, merged, -1, entity.ReasonReservation, actorSystem)
	return result, nil
}

// Release returns stock taken by Reserve
func (l *Ledger) Release(ctx context.Context, items []entity.LineItem, reason string) error {
	if err := entity.ValidateLineItems(items); err != nil {
		return err
	}
	reason = defaultString(reason, entity.ReasonRelease)
	merged := entity.MergeLineItems(items)

	if err := l.repo.ReleaseAll(ctx, merged, reason, actorSystem); err != nil {
		l.logger.Error("Failed to release stock", map[string]any{
			"items":  len(merged),
			"reason": reason,
			"error":  err.Error(),
		})
		return err
	}

	l.logger.Info("Stock released", map[string]any{
		"items":  len(merged),
		"reason": reason,
	})
	l.emitLines(ctx, merged, 1, reason, actorSystem)
	return nil
}
