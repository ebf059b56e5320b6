package dto

import "github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"

// CustomerRequest holds contact and delivery details
type CustomerRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	Prefecture       string `json:"prefecture"`
	DeliveryDate     string `json:"deliveryDate"`
	DeliveryTimeSlot string `json:"deliveryTimeSlot"`
}

// PaymentMethodRequest is the payment method chosen at checkout
type PaymentMethodRequest struct {
	Type      string `json:"type" binding:"required,oneof=card paypay linepay konbini"`
	Token     string `json:"token"`
	ReturnURL string `json:"returnUrl"`
	Store     string `json:"store"`
}

// PlaceOrderRequest represents the API request for placing an order
type PlaceOrderRequest struct {
	OwnerID       string               `json:"ownerId" binding:"required"`
	OrderID       string               `json:"orderId"`
	ClientTotal   int64                `json:"clientTotal" binding:"required,min=1"`
	Customer      CustomerRequest      `json:"customer" binding:"required"`
	PaymentMethod PaymentMethodRequest `json:"paymentMethod" binding:"required"`
}

// ToCustomer converts the request to the domain customer
func (r CustomerRequest) ToCustomer() entity.Customer {
	return entity.Customer{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		Prefecture:       r.Prefecture,
		DeliveryDate:     r.DeliveryDate,
		DeliveryTimeSlot: r.DeliveryTimeSlot,
	}
}

// ToPaymentMethod converts the request to the domain payment method
func (r PaymentMethodRequest) ToPaymentMethod() entity.PaymentMethod {
	return entity.PaymentMethod{
		Type:      entity.PaymentMethodType(r.Type),
		Token:     r.Token,
		ReturnURL: r.ReturnURL,
		Store:     r.Store,
	}
}

// RefundRequest carries the reason for a refund
type RefundRequest struct {
	Reason string `json:"reason"`
}
