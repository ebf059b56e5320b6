package events

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/google/uuid"
)

// Emitter publishes domain events on a best-effort basis.
// A failed publish is logged and never fails the operation that produced the event.
type Emitter struct {
	publisher    gateway.EventPublisher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewEmitter creates an emitter. A nil publisher disables publishing.
func NewEmitter(publisher gateway.EventPublisher, timeProvider coreport.TimeProvider, logger coreport.Logger) *Emitter {
	return &Emitter{publisher: publisher, timeProvider: timeProvider, logger: logger}
}

// Emit wraps payload in an envelope and publishes it
func (e *Emitter) Emit(ctx context.Context, eventType, correlationID string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	event, err := entity.NewDomainEvent(uuid.NewString(), eventType, correlationID, payload, e.timeProvider.Now())
	if err != nil {
		e.logger.Error("Failed to build domain event", map[string]any{
			"eventType": eventType,
			"error":     err.Error(),
		})
		return
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("Domain event dropped", map[string]any{
			"eventType":     eventType,
			"correlationId": correlationID,
			"error":         err.Error(),
		})
	}
}
