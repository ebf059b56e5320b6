package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/messaging"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func testEmail() *entity.Email {
	return &entity.Email{
		To:      "shopper@example.com",
		From:    "shop@example.com",
		Subject: "ご注文ありがとうございます",
		Text:    "body",
		Type:    entity.NotificationOrderConfirmation,
		OrderID: "ORD-1",
	}
}

func TestKafkaSender_Send(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	t.Run("publishes keyed by recipient", func(t *testing.T) {
		writer := &stubWriter{}
		sender := NewKafkaSender(writer, clock, logger.NewNoopLogger())

		receipt, err := sender.Send(context.Background(), testEmail())
		require.NoError(t, err)
		assert.Equal(t, "kafka", receipt.Provider)
		assert.Equal(t, clock.Now(), receipt.SentAt)

		require.Len(t, writer.messages, 1)
		msg := writer.messages[0]
		assert.Equal(t, "shopper@example.com", string(msg.Key))
		assert.Equal(t, receipt.MessageID, messaging.HeaderValue(msg, "message-id"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, receipt.MessageID, body["messageId"])
		assert.Equal(t, "ORD-1", body["orderId"])
		assert.Equal(t, "order_confirmation", body["type"])
	})

	t.Run("broker failure", func(t *testing.T) {
		sender := NewKafkaSender(&stubWriter{err: errors.New("no brokers")}, clock, logger.NewNoopLogger())

		_, err := sender.Send(context.Background(), testEmail())
		assert.ErrorIs(t, err, errs.ErrGatewayFailure)
	})
}

func TestLogSender_Send(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	sender := NewLogSender(clock, logger.NewNoopLogger())

	receipt, err := sender.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "log", receipt.Provider)
	assert.NotEmpty(t, receipt.MessageID)
}
