package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
)

// EmailSender delivers one rendered e-mail. It does no duplicate suppression of its own.
type EmailSender interface {
	Send(ctx context.Context, email *entity.Email) (*entity.SendReceipt, error)
}
