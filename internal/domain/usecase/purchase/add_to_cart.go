package purchase

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// AddToCart runs the lock -> availability -> cart critical section for one product.
// Contention and shortage are reported in the result; the lock is kept only on success.
func (s *Service) AddToCart(ctx context.Context, req usecase.AddToCartRequest) (*usecase.AddToCartResult, error) {
	if strings.TrimSpace(req.HolderID) == "" {
		return nil, errs.ErrInvalidHolderID
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, errs.ErrInvalidProductID
	}
	if req.Quantity < 1 {
		return nil, errs.ErrInvalidQuantity
	}

	// bounds apply to what the cart will hold after the change
	total := entity.CartQuantity(req.Cart, req.ProductID) + req.Quantity
	if err := s.inventory.ValidateQuantity(ctx, req.ProductID, total); err != nil {
		return nil, err
	}

	lockResult, err := s.locks.Acquire(ctx, req.ProductID, req.HolderID, total)
	if err != nil {
		return nil, fmt.Errorf("acquire purchase lock: %w", err)
	}
	if !lockResult.Granted {
		s.logger.Info("Product held by another shopper", map[string]any{
			"productId":  req.ProductID,
			"holderId":   req.HolderID,
			"retryAfter": lockResult.RetryAfterSeconds,
		})
		return &usecase.AddToCartResult{
			Success:           false,
			Cart:              req.Cart,
			Locked:            true,
			RetryAfterSeconds: lockResult.RetryAfterSeconds,
		}, nil
	}

	availability, err := s.inventory.CheckAvailability(ctx, req.ProductID, total)
	if err != nil {
		s.releaseQuietly(ctx, req.ProductID, req.HolderID)
		return nil, err
	}
	if !availability.Available {
		s.releaseQuietly(ctx, req.ProductID, req.HolderID)
		s.logger.Info("Add to cart rejected for stock", map[string]any{
			"productId": req.ProductID,
			"requested": total,
			"stock":     availability.CurrentStock,
		})
		return &usecase.AddToCartResult{
			Success:      false,
			Cart:         req.Cart,
			Availability: availability,
		}, nil
	}

	return &usecase.AddToCartResult{
		Success:      true,
		Cart:         entity.UpsertLineItem(req.Cart, req.ProductID, total),
		Lock:         lockResult.Lock,
		Availability: availability,
	}, nil
}

// ReleaseHold gives up the holder's lock on a product
func (s *Service) ReleaseHold(ctx context.Context, productID, holderID string) (bool, error) {
	return s.locks.Release(ctx, productID, holderID)
}

func (s *Service) releaseQuietly(ctx context.Context, productID, holderID string) {
	if _, err := s.locks.Release(ctx, productID, holderID); err != nil {
		s.logger.Warn("Failed to release purchase lock", map[string]any{
			"productId": productID,
			"holderId":  holderID,
			"error":     err.Error(),
		})
	}
}
