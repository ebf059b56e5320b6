package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// Decision says how a request for an already-seen order ID is handled
type Decision int

const (
	// DecisionNew means the order ID was never used
	DecisionNew Decision = iota
	// DecisionReplay returns the recorded outcome without running the saga again
	DecisionReplay
	// DecisionRetry runs a fresh attempt after a declined or rejected one
	DecisionRetry
)

// IdempotencyHandler makes order placement idempotent per order ID
type IdempotencyHandler struct {
	orders persistence.OrderRepository
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(orders persistence.OrderRepository) *IdempotencyHandler {
	return &IdempotencyHandler{orders: orders}
}

// CheckIdempotency returns the transaction already recorded for orderID, if any
func (h *IdempotencyHandler) CheckIdempotency(ctx context.Context, orderID string) (*entity.OrderTransaction, bool, error) {
	txn, err := h.orders.GetTransaction(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to check for an existing order transaction: %w", err)
	}
	return txn, true, nil
}

// Decide looks up req.OrderID and decides whether to run, retry or replay it.
// An order ID belongs to the shopper who first used it; anyone else gets ErrOrderIDConflict.
// A replay must also carry the recorded cart and total.
func (h *IdempotencyHandler) Decide(ctx context.Context, req usecase.OrderRequest) (*entity.OrderTransaction, Decision, error) {
	existing, found, err := h.CheckIdempotency(ctx, req.OrderID)
	if err != nil {
		return nil, DecisionNew, err
	}
	if !found {
		return nil, DecisionNew, nil
	}

	if existing.OwnerID != req.OwnerID {
		return nil, DecisionNew, fmt.Errorf("%w: order %s belongs to another shopper", errs.ErrOrderIDConflict, req.OrderID)
	}
	if existing.Retryable() {
		return existing, DecisionRetry, nil
	}
	if !existing.SameOrder(req.OwnerID, req.Items, req.Calculation.FinalTotal) {
		return nil, DecisionNew, fmt.Errorf("%w: order %s was placed with a different cart", errs.ErrOrderIDConflict, req.OrderID)
	}
	return existing, DecisionReplay, nil
}

// Replay rebuilds the result of an order that was already processed
func (h *IdempotencyHandler) Replay(ctx context.Context, txn *entity.OrderTransaction) *usecase.ProcessResult {
	result := &usecase.ProcessResult{Transaction: txn, Replayed: true}

	switch txn.Status {
	case entity.TransactionStatusCaptured, entity.TransactionStatusAuthorized:
		result.Success = true
		if order, err := h.orders.GetOrder(ctx, txn.OrderID); err == nil {
			result.Order = order
		}
	case entity.TransactionStatusRefunded:
		result.Error = "order was refunded"
		result.Err = errs.ErrInvalidOrderState
	default:
		result.Error = txn.RollbackReason
		result.RolledBack = len(txn.RolledBackSteps) > 0
		result.CriticalFailure = txn.CriticalFailure
		result.Err = fmt.Errorf("%w: order %s already %s", errs.ErrInvalidOrderState, txn.OrderID, txn.Status)
	}
	return result
}
