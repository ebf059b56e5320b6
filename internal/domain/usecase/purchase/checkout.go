package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/google/uuid"
)

// BeginCheckout opens a session for the cart and attaches its server calculation
func (s *Service) BeginCheckout(ctx context.Context, ownerID string, cart []entity.LineItem, prefecture string) (*entity.CheckoutSession, error) {
	if _, err := s.checkout.Create(ctx, ownerID, cart); err != nil {
		return nil, err
	}

	calc, err := s.checkout.Recalculate(ctx, cart, prefecture)
	if err != nil {
		return nil, err
	}

	patch := entity.SessionPatch{ServerCalculation: calc}
	if prefecture != "" {
		patch.Prefecture = &prefecture
	}
	return s.checkout.Update(ctx, ownerID, patch)
}

// PlaceOrder queues the order behind any earlier one of the same shopper
func (s *Service) PlaceOrder(ctx context.Context, req usecase.PlaceOrderRequest) (*usecase.ProcessResult, error) {
	if req.OwnerID == "" {
		return nil, errs.ErrInvalidHolderID
	}
	return s.queue.Enqueue(ctx, req)
}

func (s *Service) placeOrder(ctx context.Context, req usecase.PlaceOrderRequest) (*usecase.ProcessResult, error) {
	session, err := s.checkout.Require(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	verification, calc, err := s.checkout.Verify(ctx, req.OwnerID, req.ClientTotal)
	if err != nil {
		return nil, err
	}
	if !verification.Valid {
		s.logger.Warn("Order refused: amount mismatch", map[string]any{
			"ownerId":     req.OwnerID,
			"clientTotal": verification.ClientTotal,
			"serverTotal": verification.ServerTotal,
		})
		return nil, errs.NewTamperingError(verification.ClientTotal, verification.ServerTotal)
	}
	if calc.Shipping.CannotShip {
		return nil, fmt.Errorf("%w: %s", errs.ErrCannotShip, calc.Shipping.Message)
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = newOrderID(s.timeProvider.Now().Format("20060102"))
	}

	customer := req.Customer
	if customer.Prefecture == "" {
		customer.Prefecture = session.Prefecture
	}

	result, err := s.orders.Process(ctx, usecase.OrderRequest{
		OrderID:     orderID,
		OwnerID:     req.OwnerID,
		Items:       session.Cart,
		Calculation: calc,
		Customer:    customer,
	}, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	// a replay belongs to an earlier submission; the current cart and its locks stay
	if !result.Success || result.Replayed {
		return result, nil
	}

	if _, err := s.checkout.Clear(ctx, req.OwnerID); err != nil && !errors.Is(err, errs.ErrSessionNotFound) {
		s.logger.Warn("Failed to clear checkout session", map[string]any{
			"ownerId": req.OwnerID,
			"error":   err.Error(),
		})
	}
	released, err := s.locks.ReleaseAll(ctx, req.OwnerID)
	if err != nil {
		s.logger.Warn("Failed to release purchase locks", map[string]any{
			"ownerId": req.OwnerID,
			"error":   err.Error(),
		})
	}

	s.logger.Info("Checkout completed", map[string]any{
		"ownerId":       req.OwnerID,
		"orderId":       orderID,
		"releasedLocks": released,
	})
	return result, nil
}

// newOrderID builds IDs like ORD-20240601-1a2b3c4d
func newOrderID(day string) string {
	return fmt.Sprintf("ORD-%s-%s", day, uuid.NewString()[:8])
}
