package purchase

import (
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// Service is the shopper-facing purchase flow: hold a product, check out, place the order.
type Service struct {
	locks        usecase.LockUseCase
	inventory    usecase.InventoryUseCase
	checkout     usecase.CheckoutUseCase
	orders       usecase.OrderUseCase
	queue        *OrderQueue
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates the purchase flow
func NewService(
	locks usecase.LockUseCase,
	inventory usecase.InventoryUseCase,
	checkout usecase.CheckoutUseCase,
	orders usecase.OrderUseCase,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	s := &Service{
		locks:        locks,
		inventory:    inventory,
		checkout:     checkout,
		orders:       orders,
		timeProvider: timeProvider,
		logger:       logger,
	}
	s.queue = NewOrderQueue(s.placeOrder, logger)
	return s
}

// Shutdown waits for in-flight orders
func (s *Service) Shutdown() {
	s.queue.Shutdown()
}
