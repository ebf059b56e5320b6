package payment

import (
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
)

// Registry maps payment method types to gateways
type Registry struct {
	gateways map[entity.PaymentMethodType]gateway.PaymentGateway
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[entity.PaymentMethodType]gateway.PaymentGateway)}
}

// NewSandboxRegistry registers a sandbox gateway for every supported method
func NewSandboxRegistry(timeProvider coreport.TimeProvider, logger coreport.Logger) *Registry {
	r := NewRegistry()
	for _, method := range []entity.PaymentMethodType{
		entity.PaymentMethodCard,
		entity.PaymentMethodPayPay,
		entity.PaymentMethodLinePay,
		entity.PaymentMethodKonbini,
	} {
		r.Register(method, NewSandboxGateway(method, timeProvider, logger))
	}
	return r
}

// Register binds gw to method, replacing any earlier binding
func (r *Registry) Register(method entity.PaymentMethodType, gw gateway.PaymentGateway) {
	r.gateways[method] = gw
}

func (r *Registry) Gateway(method entity.PaymentMethodType) (gateway.PaymentGateway, error) {
	gw, ok := r.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedPaymentMethod, method)
	}
	return gw, nil
}
