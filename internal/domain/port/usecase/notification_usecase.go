package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// NotificationUseCase sends storefront e-mails with duplicate suppression and rate limiting
type NotificationUseCase interface {
	// Send validates and delivers one e-mail
	//
	// Possible errors:
	// - ErrInvalidEmail: If the address or content is malformed
	// - ErrNotificationRateLimited: If the recipient got too many e-mails this window
	Send(ctx context.Context, email *entity.Email) (*entity.NotificationResult, error)

	SendOrderConfirmation(ctx context.Context, notice entity.OrderConfirmation) (*entity.NotificationResult, error)

	SendPaymentFailure(ctx context.Context, notice entity.PaymentFailureNotice) (*entity.NotificationResult, error)

	SendShippingNotification(ctx context.Context, notice entity.ShipmentNotice) (*entity.NotificationResult, error)

	// SendRollbackAlert tells the administrator that compensation failed
	SendRollbackAlert(ctx context.Context, alert entity.RollbackAlert) (*entity.NotificationResult, error)
}
