package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

// NotificationType identifies the kind of e-mail; it is part of the duplicate-suppression key
type NotificationType string

const (
	NotificationOrderConfirmation    NotificationType = "order_confirmation"
	NotificationShipping             NotificationType = "shipping_notification"
	NotificationPaymentFailure       NotificationType = "payment_failure"
	NotificationRollbackFailureAlert NotificationType = "rollback_failure_alert"
)

const (
	// DefaultDedupTTL is how long a sent notification suppresses a repeat
	DefaultDedupTTL = 24 * time.Hour

	// DefaultRateLimit is the number of e-mails one recipient may receive per window
	DefaultRateLimit = 10

	// DefaultRateWindow is the fixed rate-limit window
	DefaultRateWindow = time.Minute
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the address shape
func IsValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// DedupKey is the duplicate-suppression key of an order notification
func DedupKey(orderID string, kind NotificationType) string {
	return fmt.Sprintf("%s_%s", orderID, kind)
}

// Email is a fully rendered message
type Email struct {
	To       string           `json:"to"`
	From     string           `json:"from"`
	FromName string           `json:"fromName,omitempty"`
	Subject  string           `json:"subject"`
	Text     string           `json:"text"`
	HTML     string           `json:"html,omitempty"`
	Type     NotificationType `json:"type"`
	OrderID  string           `json:"orderId,omitempty"`
}

// Validate rejects malformed addresses and empty content
func (e *Email) Validate() error {
	if !IsValidEmail(e.To) {
		return fmt.Errorf("%w: recipient %q", errs.ErrInvalidEmail, e.To)
	}
	if strings.TrimSpace(e.Subject) == "" {
		return fmt.Errorf("%w: empty subject", errs.ErrInvalidEmail)
	}
	if strings.TrimSpace(e.Text) == "" && strings.TrimSpace(e.HTML) == "" {
		return fmt.Errorf("%w: empty body", errs.ErrInvalidEmail)
	}
	return nil
}

// SendReceipt is what a sender reports back
type SendReceipt struct {
	MessageID string    `json:"messageId"`
	Provider  string    `json:"provider"`
	SentAt    time.Time `json:"sentAt"`
}

// NotificationResult is the outcome of a guarded send
type NotificationResult struct {
	Success   bool         `json:"success"`
	Duplicate bool         `json:"duplicate,omitempty"`
	Receipt   *SendReceipt `json:"receipt,omitempty"`
}

// OrderConfirmation carries what the confirmation e-mail shows
type OrderConfirmation struct {
	OrderID          string
	CustomerName     string
	CustomerEmail    string
	Items            []LineCalculation
	Amounts          OrderAmounts
	PaymentMethod    PaymentMethodType
	ShippingAddress  string
	DeliveryDate     string
	DeliveryTimeSlot string
	AwaitingPayment  bool
}

// PaymentFailureNotice carries what the payment-failure e-mail shows
type PaymentFailureNotice struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	PaymentMethod PaymentMethodType
	FailureReason string
	Amount        int64
	RetryURL      string
}

// ShipmentNotice carries what the shipping e-mail shows
type ShipmentNotice struct {
	OrderID        string
	CustomerName   string
	CustomerEmail  string
	Carrier        string
	TrackingNumber string
	ShippedAt      time.Time
}

// RollbackAlert is sent to the administrator when compensation failed
type RollbackAlert struct {
	OrderID       string
	TransactionID string
	Reason        string
	Failures      []string
	Steps         []string
	OccurredAt    time.Time
}
