package entity

import (
	"time"
)

// TransactionStatus is the payment-side state of an order transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusAuthorized TransactionStatus = "authorized"
	TransactionStatusCaptured   TransactionStatus = "captured"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

// IsTerminal reports whether no further forward step can happen
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusFailed, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	default:
		return false
	}
}

// Names of completed steps. Each has a compensating action.
const (
	StepInventoryReserved = "inventory_reserved"
	StepPaymentAuthorized = "payment_authorized"
	StepOrderCreated      = "order_created"
)

// TransactionStep records one completed forward step and the data needed to undo it
type TransactionStep struct {
	Name      string         `json:"step"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// OrderTransaction is the audit trail of one checkout attempt
type OrderTransaction struct {
	ID              string            `json:"transactionId"`
	OrderID         string            `json:"orderId"`
	OwnerID         string            `json:"ownerId"`
	Attempt         int               `json:"attempt"`
	RetryOf         string            `json:"retryOf,omitempty"`
	Total           int64             `json:"total"`
	Status          TransactionStatus `json:"status"`
	Items           []LineItem        `json:"items"`
	PaymentMethod   PaymentMethodType `json:"paymentMethod"`
	PaymentID       string            `json:"paymentId,omitempty"`
	Steps           []TransactionStep `json:"steps"`
	RollbackReason  string            `json:"rollbackReason,omitempty"`
	RolledBackSteps []string          `json:"rolledBackSteps,omitempty"`
	CriticalFailure bool              `json:"criticalFailure,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewOrderTransaction starts a pending transaction
func NewOrderTransaction(id, orderID string, now time.Time) *OrderTransaction {
	return &OrderTransaction{
		ID:        id,
		OrderID:   orderID,
		Attempt:   1,
		Status:    TransactionStatusPending,
		Steps:     []TransactionStep{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddStep appends a completed step
func (t *OrderTransaction) AddStep(name string, data map[string]any, now time.Time) {
	t.Steps = append(t.Steps, TransactionStep{Name: name, Data: data, Timestamp: now})
	t.UpdatedAt = now
}

// HasStep reports whether a step with this name completed
func (t *OrderTransaction) HasStep(name string) bool {
	for _, s := range t.Steps {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SetStatus moves the transaction to status
func (t *OrderTransaction) SetStatus(status TransactionStatus, now time.Time) {
	t.Status = status
	t.UpdatedAt = now
}

// Retryable reports whether a new attempt may reuse this order ID: nothing was charged
// and every compensation succeeded
func (t *OrderTransaction) Retryable() bool {
	switch t.Status {
	case TransactionStatusFailed, TransactionStatusCancelled:
		return !t.CriticalFailure
	default:
		return false
	}
}

// SameOrder reports whether ownerID, items and total describe the order this transaction recorded
func (t *OrderTransaction) SameOrder(ownerID string, items []LineItem, total int64) bool {
	if t.OwnerID != ownerID || t.Total != total {
		return false
	}
	merged := MergeLineItems(items)
	if len(merged) != len(t.Items) {
		return false
	}
	recorded := make(map[string]int, len(t.Items))
	for _, item := range t.Items {
		recorded[item.ProductID] = item.Quantity
	}
	for _, item := range merged {
		if recorded[item.ProductID] != item.Quantity {
			return false
		}
	}
	return true
}
