package mailer

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/google/uuid"
)

// LogSender writes e-mails to the log instead of delivering them
type LogSender struct {
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewLogSender creates a sender for development and tests
func NewLogSender(timeProvider coreport.TimeProvider, logger coreport.Logger) *LogSender {
	return &LogSender{timeProvider: timeProvider, logger: logger}
}

func (s *LogSender) Send(_ context.Context, email *entity.Email) (*entity.SendReceipt, error) {
	receipt := &entity.SendReceipt{
		MessageID: uuid.NewString(),
		Provider:  "log",
		SentAt:    s.timeProvider.Now(),
	}

	s.logger.Info("E-mail sent", map[string]any{
		"messageId": receipt.MessageID,
		"to":        email.To,
		"subject":   email.Subject,
		"type":      string(email.Type),
		"orderId":   email.OrderID,
	})
	s.logger.Debug("E-mail body", map[string]any{
		"messageId": receipt.MessageID,
		"text":      email.Text,
	})
	return receipt, nil
}
