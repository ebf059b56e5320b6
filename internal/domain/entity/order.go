package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
)

// PaymentMethodType selects the payment gateway
type PaymentMethodType string

const (
	PaymentMethodCard    PaymentMethodType = "card"
	PaymentMethodPayPay  PaymentMethodType = "paypay"
	PaymentMethodLinePay PaymentMethodType = "linepay"
	PaymentMethodKonbini PaymentMethodType = "konbini"
)

// IsAsync reports whether the method settles out-of-band (voucher paid later at a store)
func (t PaymentMethodType) IsAsync() bool {
	return t == PaymentMethodKonbini
}

// PaymentMethod is what the shopper chose at checkout
type PaymentMethod struct {
	Type      PaymentMethodType `json:"type"`
	Token     string            `json:"token,omitempty"`     // card token / client secret
	ReturnURL string            `json:"returnUrl,omitempty"` // mobile wallets redirect here
	Store     string            `json:"store,omitempty"`     // convenience store chain
}

// OrderAmounts are the server-computed totals of an order
type OrderAmounts struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// AmountsFromCalculation copies the totals of a server calculation
func AmountsFromCalculation(calc *ServerCalculation) OrderAmounts {
	return OrderAmounts{
		Subtotal: calc.Subtotal,
		Tax:      calc.Tax,
		Shipping: calc.Shipping.Total,
		Total:    calc.FinalTotal,
	}
}

// Customer holds contact and delivery details
type Customer struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	Prefecture       string `json:"prefecture,omitempty"`
	DeliveryDate     string `json:"deliveryDate,omitempty"`
	DeliveryTimeSlot string `json:"deliveryTimeSlot,omitempty"`
}

// OrderStatus is the lifecycle state of the local order record
type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefunded        OrderStatus = "refunded"
)

// Order is the local order record created once payment is authorized
type Order struct {
	ID            string            `json:"orderId"`
	OwnerID       string            `json:"ownerId"`
	Items         []LineItem        `json:"items"`
	Amounts       OrderAmounts      `json:"amounts"`
	Customer      Customer          `json:"customer"`
	PaymentMethod PaymentMethodType `json:"paymentMethod"`
	PaymentID     string            `json:"paymentId,omitempty"`
	Status        OrderStatus       `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Cancel marks the order cancelled. Cancelling twice is a no-op.
func (o *Order) Cancel(now time.Time) {
	if o.Status == OrderStatusCancelled {
		return
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
}

// MarkPaid confirms an order that was waiting for out-of-band payment
func (o *Order) MarkPaid(now time.Time) error {
	if o.Status != OrderStatusAwaitingPayment {
		return errs.ErrInvalidOrderState
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = now
	return nil
}

// MarkRefunded records a refund of a confirmed order
func (o *Order) MarkRefunded(now time.Time) error {
	if o.Status != OrderStatusConfirmed && o.Status != OrderStatusAwaitingPayment {
		return errs.ErrInvalidOrderState
	}
	o.Status = OrderStatusRefunded
	o.UpdatedAt = now
	return nil
}
