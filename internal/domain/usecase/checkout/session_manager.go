package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "checkout_session:"

// SessionManager keeps one checkout session per owner in the key-value store
type SessionManager struct {
	store        persistence.KeyValueStore
	catalog      gateway.Catalog
	shipping     entity.ShippingPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	ttl          time.Duration
}

// NewSessionManager creates a session manager. A non-positive ttl falls back to entity.DefaultSessionTTL.
func NewSessionManager(
	store persistence.KeyValueStore,
	catalog gateway.Catalog,
	shipping entity.ShippingPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	ttl time.Duration,
) *SessionManager {
	if ttl <= 0 {
		ttl = entity.DefaultSessionTTL
	}
	return &SessionManager{
		store:        store,
		catalog:      catalog,
		shipping:     shipping,
		timeProvider: timeProvider,
		logger:       logger,
		ttl:          ttl,
	}
}

func sessionKey(ownerID string) string {
	return sessionKeyPrefix + ownerID
}

func (m *SessionManager) Create(ctx context.Context, ownerID string, cart []entity.LineItem) (*entity.CheckoutSession, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errs.ErrInvalidHolderID
	}
	if err := entity.ValidateLineItems(cart); err != nil {
		return nil, err
	}

	now := m.timeProvider.Now()
	session := &entity.CheckoutSession{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Cart:      entity.MergeLineItems(cart),
	}
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}

	m.logger.Info("Checkout session created", map[string]any{
		"sessionId": session.ID,
		"ownerId":   ownerID,
		"items":     len(session.Cart),
		"expiresAt": session.ExpiresAt,
	})
	return session, nil
}

func (m *SessionManager) Get(ctx context.Context, ownerID string) (*entity.CheckoutSession, error) {
	session, err := m.Require(ctx, ownerID)
	if errors.Is(err, errs.ErrSessionNotFound) || errors.Is(err, errs.ErrSessionExpired) {
		return nil, nil
	}
	return session, err
}

func (m *SessionManager) Require(ctx context.Context, ownerID string) (*entity.CheckoutSession, error) {
	raw, err := m.store.Get(ctx, sessionKey(ownerID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errs.ErrSessionNotFound
	}

	var session entity.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: corrupt checkout session for %s: %v", errs.ErrStorage, ownerID, err)
	}

	if session.IsExpired(m.timeProvider.Now()) {
		if _, err := m.store.Remove(ctx, sessionKey(ownerID)); err != nil {
			m.logger.Warn("Failed to purge expired checkout session", map[string]any{
				"ownerId": ownerID,
				"error":   err.Error(),
			})
		}
		m.logger.Info("Checkout session expired", map[string]any{
			"sessionId": session.ID,
			"ownerId":   ownerID,
		})
		return nil, errs.ErrSessionExpired
	}
	return &session, nil
}

func (m *SessionManager) Update(ctx context.Context, ownerID string, patch entity.SessionPatch) (*entity.CheckoutSession, error) {
	if patch.Cart != nil {
		if err := entity.ValidateLineItems(patch.Cart); err != nil {
			return nil, err
		}
		patch.Cart = entity.MergeLineItems(patch.Cart)
	}

	session, err := m.Require(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	patch.Apply(session)

	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (m *SessionManager) Clear(ctx context.Context, ownerID string) (bool, error) {
	removed, err := m.store.Remove(ctx, sessionKey(ownerID))
	if err != nil {
		return false, err
	}
	if removed {
		m.logger.Debug("Checkout session cleared", map[string]any{
			"ownerId": ownerID,
		})
	}
	return removed, nil
}

// Verify recalculates the stored cart and checks the client's total against it.
// The calculation is stored either way; only a match marks the session verified.
func (m *SessionManager) Verify(ctx context.Context, ownerID string, clientTotal int64) (*entity.AmountVerification, *entity.ServerCalculation, error) {
	session, err := m.Require(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	calc, err := m.Recalculate(ctx, session.Cart, session.Prefecture)
	if err != nil {
		return nil, nil, err
	}

	verification := entity.VerifyAmount(clientTotal, calc)
	if verification.Tampering {
		m.logger.Warn("Amount tampering detected", map[string]any{
			"sessionId":   session.ID,
			"ownerId":     ownerID,
			"clientTotal": clientTotal,
			"serverTotal": calc.FinalTotal,
			"difference":  verification.Difference,
		})
	}

	session.ServerCalculation = calc
	session.Verified = verification.Valid
	if err := m.save(ctx, session); err != nil {
		return nil, nil, err
	}
	return &verification, calc, nil
}

func (m *SessionManager) save(ctx context.Context, session *entity.CheckoutSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInternalServer, err)
	}
	if err := m.store.Set(ctx, sessionKey(session.OwnerID), raw); err != nil {
		m.logger.Error("Failed to store checkout session", map[string]any{
			"sessionId": session.ID,
			"ownerId":   session.OwnerID,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}
