package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/google/uuid"
)

const (
	// DeclineToken makes the sandbox decline the payment, like a provider test card
	DeclineToken = "tok_decline"

	// VoucherValidity is how long a convenience-store voucher can be paid
	VoucherValidity = 7 * 24 * time.Hour
)

// KonbiniStores are the convenience store chains a voucher can be issued for
var KonbiniStores = map[string]string{
	"seven":  "7-Eleven",
	"family": "FamilyMart",
	"lawson": "Lawson",
}

type intent struct {
	amount   int64
	currency string
	metadata map[string]string
}

// SandboxGateway simulates one payment provider in memory. It never calls a real provider.
type SandboxGateway struct {
	method       entity.PaymentMethodType
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	mu           sync.Mutex
	intents      map[string]intent
	payments     map[string]int64
}

// NewSandboxGateway creates a sandbox for method
func NewSandboxGateway(method entity.PaymentMethodType, timeProvider coreport.TimeProvider, logger coreport.Logger) *SandboxGateway {
	return &SandboxGateway{
		method:       method,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"gateway": string(method)}),
		intents:      make(map[string]intent),
		payments:     make(map[string]int64),
	}
}

func (g *SandboxGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive, got %d", errs.ErrInvalidRequest, amount)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	token := "pi_" + uuid.NewString()
	g.intents[token] = intent{amount: amount, currency: currency, metadata: metadata}

	g.logger.Debug("Payment intent created", map[string]any{
		"amount":   amount,
		"currency": currency,
		"order_id": metadata["orderId"],
	})
	return token, nil
}

func (g *SandboxGateway) Confirm(_ context.Context, token string, method entity.PaymentMethod) (*gateway.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	in, ok := g.intents[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment intent %s", errs.ErrGatewayFailure, token)
	}
	delete(g.intents, token)

	if decline := g.declineReason(method); decline != "" {
		g.logger.Info("Payment declined", map[string]any{
			"amount": in.amount,
			"reason": decline,
		})
		return &gateway.PaymentResult{Success: false, Error: decline}, nil
	}

	paymentID := "pay_" + uuid.NewString()
	g.payments[paymentID] = in.amount

	result := &gateway.PaymentResult{Success: true, PaymentID: paymentID}
	if g.method.IsAsync() {
		result.Pending = true
		result.VoucherCode = fmt.Sprintf("%012d", uuid.New().ID())
		result.ExpiresAt = g.timeProvider.Now().Add(VoucherValidity)
	}

	g.logger.Info("Payment confirmed", map[string]any{
		"payment_id": paymentID,
		"amount":     in.amount,
		"pending":    result.Pending,
	})
	return result, nil
}

func (g *SandboxGateway) declineReason(method entity.PaymentMethod) string {
	switch {
	case method.Token == DeclineToken:
		return "payment declined by provider"
	case g.method == entity.PaymentMethodKonbini:
		if _, ok := KonbiniStores[storeOrDefault(method.Store)]; !ok {
			return fmt.Sprintf("unsupported convenience store %q", method.Store)
		}
	}
	return ""
}

// Cancel voids a payment. Unknown payments are treated as already cancelled.
func (g *SandboxGateway) Cancel(_ context.Context, paymentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	amount, ok := g.payments[paymentID]
	if !ok {
		g.logger.Warn("No payment found to cancel", map[string]any{
			"payment_id": paymentID,
		})
		return nil
	}
	delete(g.payments, paymentID)

	g.logger.Info("Payment cancelled", map[string]any{
		"payment_id": paymentID,
		"amount":     amount,
	})
	return nil
}

func storeOrDefault(store string) string {
	if store == "" {
		return "seven"
	}
	return store
}
