package mailer

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/messaging"
	"github.com/google/uuid"
)

// KafkaSender hands rendered e-mails to an external mailer through a topic.
// Messages are keyed by recipient so one shopper's mail keeps its order.
type KafkaSender struct {
	writer       messaging.MessageWriter
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewKafkaSender creates a sender over writer
func NewKafkaSender(writer messaging.MessageWriter, timeProvider coreport.TimeProvider, logger coreport.Logger) *KafkaSender {
	return &KafkaSender{writer: writer, timeProvider: timeProvider, logger: logger}
}

// outboundEmail is the message the mailer consumes
type outboundEmail struct {
	MessageID string `json:"messageId"`
	*entity.Email
}

func (s *KafkaSender) Send(ctx context.Context, email *entity.Email) (*entity.SendReceipt, error) {
	now := s.timeProvider.Now()
	messageID := uuid.NewString()

	msg, err := messaging.NewMessage(email.To, outboundEmail{MessageID: messageID, Email: email}, now, map[string]string{
		"message-id": messageID,
		"email-type": string(email.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInternalServer, err)
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Error("Failed to hand e-mail to mailer", map[string]any{
			"to":      email.To,
			"type":    string(email.Type),
			"orderId": email.OrderID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: mailer topic: %v", errs.ErrGatewayFailure, err)
	}

	return &entity.SendReceipt{MessageID: messageID, Provider: "kafka", SentAt: now}, nil
}

// Close closes the underlying writer
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
