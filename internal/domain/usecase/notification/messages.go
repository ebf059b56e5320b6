package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

func (n *Notifier) SendOrderConfirmation(ctx context.Context, notice entity.OrderConfirmation) (*entity.NotificationResult, error) {
	text, err := render(orderConfirmationTemplate, n.view(notice))
	if err != nil {
		return nil, err
	}
	return n.Send(ctx, &entity.Email{
		To:      notice.CustomerEmail,
		Subject: fmt.Sprintf("【%s】ご注文ありがとうございます（注文番号: %s）", n.config.ShopName, notice.OrderID),
		Text:    text,
		Type:    entity.NotificationOrderConfirmation,
		OrderID: notice.OrderID,
	})
}

func (n *Notifier) SendPaymentFailure(ctx context.Context, notice entity.PaymentFailureNotice) (*entity.NotificationResult, error) {
	text, err := render(paymentFailureTemplate, n.view(notice))
	if err != nil {
		return nil, err
	}
	return n.Send(ctx, &entity.Email{
		To:      notice.CustomerEmail,
		Subject: fmt.Sprintf("【%s】お支払いの処理に失敗しました（注文番号: %s）", n.config.ShopName, notice.OrderID),
		Text:    text,
		Type:    entity.NotificationPaymentFailure,
		OrderID: notice.OrderID,
	})
}

func (n *Notifier) SendShippingNotification(ctx context.Context, notice entity.ShipmentNotice) (*entity.NotificationResult, error) {
	text, err := render(shippingTemplate, n.view(notice))
	if err != nil {
		return nil, err
	}
	return n.Send(ctx, &entity.Email{
		To:      notice.CustomerEmail,
		Subject: fmt.Sprintf("【%s】商品を発送いたしました（注文番号: %s）", n.config.ShopName, notice.OrderID),
		Text:    text,
		Type:    entity.NotificationShipping,
		OrderID: notice.OrderID,
	})
}

// SendRollbackAlert goes to the administrator. It is deduplicated per order like customer mail.
func (n *Notifier) SendRollbackAlert(ctx context.Context, alert entity.RollbackAlert) (*entity.NotificationResult, error) {
	if strings.TrimSpace(n.config.AdminEmail) == "" {
		n.logger.Error("Rollback failed and no administrator address is configured", map[string]any{
			"orderId":  alert.OrderID,
			"failures": alert.Failures,
		})
		return nil, fmt.Errorf("%w: no administrator address", errs.ErrInvalidEmail)
	}

	text, err := render(rollbackAlertTemplate, n.view(alert))
	if err != nil {
		return nil, err
	}
	return n.Send(ctx, &entity.Email{
		To:      n.config.AdminEmail,
		Subject: fmt.Sprintf("[CRITICAL] Rollback failed for order %s", alert.OrderID),
		Text:    text,
		Type:    entity.NotificationRollbackFailureAlert,
		OrderID: alert.OrderID,
	})
}

type view struct {
	Shop    string
	BaseURL string
	Data    any
}

func (n *Notifier) view(data any) view {
	return view{Shop: n.config.ShopName, BaseURL: strings.TrimRight(n.config.BaseURL, "/"), Data: data}
}
