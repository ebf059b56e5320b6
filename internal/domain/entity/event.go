package entity

import (
	"encoding/json"
	"time"
)

// Domain event types published by the purchase core
const (
	EventInventoryAdjusted   = "inventory.adjusted"
	EventOrderCaptured       = "order.captured"
	EventOrderAuthorized     = "order.authorized"
	EventOrderCancelled      = "order.cancelled"
	EventOrderRefunded       = "order.refunded"
	EventOrderRollbackFailed = "order.rollback_failed"
)

// DomainEvent is the envelope every published event travels in
type DomainEvent struct {
	ID            string          `json:"eventId"`
	Type          string          `json:"eventType"`
	Version       int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"` // order or product ID
	Payload       json.RawMessage `json:"payload"`
}

// NewDomainEvent marshals payload into a new envelope
func NewDomainEvent(id, eventType, correlationID string, payload any, now time.Time) (*DomainEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &DomainEvent{
		ID:            id,
		Type:          eventType,
		Version:       1,
		OccurredAt:    now,
		Producer:      "farm-storefront",
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}
