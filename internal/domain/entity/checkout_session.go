package entity

import (
	"time"
)

// DefaultSessionTTL is how long a checkout session lives after creation
const DefaultSessionTTL = 30 * time.Minute

// CheckoutSession is the server-side record of one shopper's checkout attempt.
// Created -> Verified -> (Committed | Expired | Cleared).
type CheckoutSession struct {
	ID                string             `json:"sessionId"`
	OwnerID           string             `json:"ownerId"`
	CreatedAt         time.Time          `json:"createdAt"`
	ExpiresAt         time.Time          `json:"expiresAt"`
	Cart              []LineItem         `json:"cartSnapshot"`
	Prefecture        string             `json:"prefecture,omitempty"`
	Verified          bool               `json:"verified"`
	ServerCalculation *ServerCalculation `json:"serverCalculation,omitempty"`
}

// IsExpired reports whether the session is past its expiry
func (s *CheckoutSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionPatch is a merge-patch for a session; nil fields are left untouched
type SessionPatch struct {
	Cart              []LineItem
	Prefecture        *string
	Verified          *bool
	ServerCalculation *ServerCalculation
}

// Apply merges the patch into the session
func (p SessionPatch) Apply(s *CheckoutSession) {
	if p.Cart != nil {
		s.Cart = p.Cart
		// a changed cart invalidates any earlier verification
		s.Verified = false
		s.ServerCalculation = nil
	}
	if p.Prefecture != nil {
		s.Prefecture = *p.Prefecture
	}
	if p.Verified != nil {
		s.Verified = *p.Verified
	}
	if p.ServerCalculation != nil {
		s.ServerCalculation = p.ServerCalculation
	}
}

// LineCalculation is one priced cart line
type LineCalculation struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	Tax       int64  `json:"tax"`
	Total     int64  `json:"total"`
}

// ServerCalculation is the authoritative total of a cart, computed from catalog prices only
type ServerCalculation struct {
	Items           []LineCalculation   `json:"items"`
	Subtotal        int64               `json:"subtotal"`
	Tax             int64               `json:"tax"`
	SubtotalWithTax int64               `json:"subtotalWithTax"`
	Shipping        ShippingCalculation `json:"shipping"`
	FinalTotal      int64               `json:"finalTotal"`
	CanCheckout     bool                `json:"canCheckout"`
	CalculatedAt    time.Time           `json:"calculatedAt"`
}

// AmountVerification is the outcome of comparing a client total to the server total
type AmountVerification struct {
	Valid       bool  `json:"valid"`
	Tampering   bool  `json:"tampering"`
	Difference  int64 `json:"difference"`
	ClientTotal int64 `json:"clientTotal"`
	ServerTotal int64 `json:"serverTotal"`
}

// VerifyAmount accepts a client total within AmountTolerance of the server total
func VerifyAmount(clientTotal int64, calc *ServerCalculation) AmountVerification {
	diff := clientTotal - calc.FinalTotal
	valid := AbsDiff(clientTotal, calc.FinalTotal) <= AmountTolerance
	return AmountVerification{
		Valid:       valid,
		Tampering:   !valid,
		Difference:  diff,
		ClientTotal: clientTotal,
		ServerTotal: calc.FinalTotal,
	}
}
