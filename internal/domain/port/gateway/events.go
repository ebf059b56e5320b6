package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// EventPublisher hands domain events to the message bus
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.DomainEvent) error
}
