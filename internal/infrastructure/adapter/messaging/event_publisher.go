package messaging

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

const headerEventType = "event-type"

// KafkaEventPublisher writes domain events to one topic, keyed by correlation ID so that the
// events of one order or product stay in one partition
type KafkaEventPublisher struct {
	writer MessageWriter
	logger coreport.Logger
}

// NewKafkaEventPublisher creates a publisher over writer
func NewKafkaEventPublisher(writer MessageWriter, logger coreport.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer, logger: logger}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	msg, err := NewMessage(event.CorrelationID, event, event.OccurredAt, map[string]string{
		headerEventType: event.Type,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInternalServer, err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("Failed to publish domain event", map[string]any{
			"eventId":   event.ID,
			"eventType": event.Type,
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: publish %s: %v", errs.ErrGatewayFailure, event.Type, err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// LogEventPublisher only logs events. It is used when no broker is configured.
type LogEventPublisher struct {
	logger coreport.Logger
}

func NewLogEventPublisher(logger coreport.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(_ context.Context, event *entity.DomainEvent) error {
	p.logger.Info("Domain event", map[string]any{
		"eventId":       event.ID,
		"eventType":     event.Type,
		"correlationId": event.CorrelationID,
		"payload":       string(event.Payload),
	})
	return nil
}
