package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	gatewaymocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type notifierFixture struct {
	notifier *Notifier
	sender   *gatewaymocks.MockEmailSender
	clock    *timeprovider.ManualTimeProvider
}

func newNotifierFixture(t *testing.T, limit int) *notifierFixture {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	sender := gatewaymocks.NewMockEmailSender(t)
	notifier := NewNotifier(
		sender,
		cache.NewMemoryDeduplicationStore(clock),
		cache.NewMemoryRateLimiter(clock, limit, entity.DefaultRateWindow),
		Config{
			From:       "shop@example.com",
			FromName:   "Farm",
			AdminEmail: "admin@example.com",
			ShopName:   "安積直売所",
			BaseURL:    "https://shop.example.com/",
		},
		clock,
		logger.NewNoopLogger(),
	)
	return &notifierFixture{notifier: notifier, sender: sender, clock: clock}
}

func receipt() *entity.SendReceipt {
	return &entity.SendReceipt{MessageID: "msg-1", Provider: "test"}
}

func confirmation() entity.OrderConfirmation {
	return entity.OrderConfirmation{
		OrderID:       "ORD-1",
		CustomerName:  "山田太郎",
		CustomerEmail: "taro@example.com",
		Items: []entity.LineCalculation{
			{ProductID: "v1", Name: "人参", UnitPrice: 300, Quantity: 2, Subtotal: 600, Tax: 48, Total: 648},
		},
		Amounts:       entity.OrderAmounts{Subtotal: 600, Tax: 48, Total: 648},
		PaymentMethod: entity.PaymentMethodCard,
	}
}

func TestSendOrderConfirmation_RendersAndSends(t *testing.T) {
	f := newNotifierFixture(t, entity.DefaultRateLimit)

	var sent *entity.Email
	f.sender.On("Send", mock.Anything, mock.AnythingOfType("*entity.Email")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*entity.Email) }).
		Return(receipt(), nil).Once()

	result, err := f.notifier.SendOrderConfirmation(context.Background(), confirmation())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "msg-1", result.Receipt.MessageID)

	require.NotNil(t, sent)
	assert.Equal(t, "taro@example.com", sent.To)
	assert.Equal(t, "shop@example.com", sent.From)
	assert.Equal(t, entity.NotificationOrderConfirmation, sent.Type)
	assert.Contains(t, sent.Subject, "ORD-1")
	assert.Contains(t, sent.Text, "山田太郎 様")
	assert.Contains(t, sent.Text, "人参 × 2個 ¥600")
	assert.Contains(t, sent.Text, "合計: ¥648")
	assert.Contains(t, sent.Text, "クレジットカード")
	assert.Contains(t, sent.Text, "https://shop.example.com/contact.html")
}

func TestSend_DuplicateSuppressed(t *testing.T) {
	ctx := context.Background()
	f := newNotifierFixture(t, entity.DefaultRateLimit)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(receipt(), nil).Once()

	first, err := f.notifier.SendOrderConfirmation(ctx, confirmation())
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := f.notifier.SendOrderConfirmation(ctx, confirmation())
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.True(t, second.Duplicate)

	f.clock.Advance(entity.DefaultDedupTTL)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(receipt(), nil).Once()
	third, err := f.notifier.SendOrderConfirmation(ctx, confirmation())
	require.NoError(t, err)
	assert.True(t, third.Success, "mark lapses after 24h")
}

func TestSend_FailedDeliveryCanBeRetried(t *testing.T) {
	ctx := context.Background()
	f := newNotifierFixture(t, entity.DefaultRateLimit)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(nil, errs.ErrGatewayFailure).Once()
	f.sender.On("Send", mock.Anything, mock.Anything).Return(receipt(), nil).Once()

	_, err := f.notifier.SendOrderConfirmation(ctx, confirmation())
	assert.ErrorIs(t, err, errs.ErrGatewayFailure)

	result, err := f.notifier.SendOrderConfirmation(ctx, confirmation())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestSend_RateLimitedPerRecipient(t *testing.T) {
	ctx := context.Background()
	f := newNotifierFixture(t, 2)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(receipt(), nil).Times(3)

	for _, id := range []string{"ORD-1", "ORD-2"} {
		notice := confirmation()
		notice.OrderID = id
		_, err := f.notifier.SendOrderConfirmation(ctx, notice)
		require.NoError(t, err)
	}

	notice := confirmation()
	notice.OrderID = "ORD-3"
	_, err := f.notifier.SendOrderConfirmation(ctx, notice)
	assert.ErrorIs(t, err, errs.ErrNotificationRateLimited)

	f.clock.Advance(entity.DefaultRateWindow)
	result, err := f.notifier.SendOrderConfirmation(ctx, notice)
	require.NoError(t, err)
	assert.True(t, result.Success, "rate-limited mail was not marked as sent")
}

func TestSend_Validation(t *testing.T) {
	f := newNotifierFixture(t, entity.DefaultRateLimit)

	tests := []struct {
		name  string
		email entity.Email
	}{
		{"bad address", entity.Email{To: "not-an-address", Subject: "s", Text: "t"}},
		{"address with space", entity.Email{To: "a b@example.com", Subject: "s", Text: "t"}},
		{"empty subject", entity.Email{To: "a@example.com", Subject: " ", Text: "t"}},
		{"empty body", entity.Email{To: "a@example.com", Subject: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := tt.email
			_, err := f.notifier.Send(context.Background(), &email)
			assert.ErrorIs(t, err, errs.ErrInvalidEmail)
		})
	}
}

func TestSendPaymentFailure(t *testing.T) {
	f := newNotifierFixture(t, entity.DefaultRateLimit)

	var sent *entity.Email
	f.sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*entity.Email) }).
		Return(receipt(), nil).Once()

	_, err := f.notifier.SendPaymentFailure(context.Background(), entity.PaymentFailureNotice{
		OrderID:       "ORD-9",
		CustomerName:  "山田太郎",
		CustomerEmail: "taro@example.com",
		PaymentMethod: entity.PaymentMethodPayPay,
		FailureReason: "payment declined by provider",
		Amount:        648,
		RetryURL:      "https://shop.example.com/checkout?retry=ORD-9",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationPaymentFailure, sent.Type)
	assert.Contains(t, sent.Text, "https://shop.example.com/checkout?retry=ORD-9")
	assert.Contains(t, sent.Text, "¥648")
	assert.Contains(t, sent.Text, "PayPay")
}

func TestSendShippingNotification(t *testing.T) {
	f := newNotifierFixture(t, entity.DefaultRateLimit)

	var sent *entity.Email
	f.sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*entity.Email) }).
		Return(receipt(), nil).Once()

	_, err := f.notifier.SendShippingNotification(context.Background(), entity.ShipmentNotice{
		OrderID:        "ORD-1",
		CustomerName:   "山田太郎",
		CustomerEmail:  "taro@example.com",
		Carrier:        "ヤマト運輸",
		TrackingNumber: "1234-5678-9012",
		ShippedAt:      f.clock.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationShipping, sent.Type)
	assert.Contains(t, sent.Text, "1234-5678-9012")
	assert.Contains(t, sent.Text, "2024-06-01 09:00")
}

func TestSendRollbackAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("goes to the administrator", func(t *testing.T) {
		f := newNotifierFixture(t, entity.DefaultRateLimit)

		var sent *entity.Email
		f.sender.On("Send", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(*entity.Email) }).
			Return(receipt(), nil).Once()

		_, err := f.notifier.SendRollbackAlert(ctx, entity.RollbackAlert{
			OrderID:       "ORD-1",
			TransactionID: "TXN-1",
			Reason:        "payment declined",
			Failures:      []string{"payment_authorized: gateway down"},
			Steps:         []string{entity.StepInventoryReserved, entity.StepPaymentAuthorized},
			OccurredAt:    f.clock.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", sent.To)
		assert.Contains(t, sent.Subject, "CRITICAL")
		assert.Contains(t, sent.Text, "payment_authorized: gateway down")
	})

	t.Run("no administrator configured", func(t *testing.T) {
		clock := timeprovider.NewManualTimeProvider(time.Now())
		notifier := NewNotifier(gatewaymocks.NewMockEmailSender(t), cache.NewMemoryDeduplicationStore(clock),
			cache.NewMemoryRateLimiter(clock, 10, time.Minute), Config{From: "shop@example.com"}, clock, logger.NewNoopLogger())

		_, err := notifier.SendRollbackAlert(ctx, entity.RollbackAlert{OrderID: "ORD-1"})
		assert.True(t, errors.Is(err, errs.ErrInvalidEmail))
	})
}
