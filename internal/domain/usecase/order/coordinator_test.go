package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/events"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/inventory"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/catalog"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/payment"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/repository"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	gatewaymocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/gateway"
	persistencemocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/persistence"
	usecasemocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published event type in order
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, event *entity.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.Type)
	return nil
}

func (p *recordingPublisher) published(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.types {
		if t == eventType {
			return true
		}
	}
	return false
}

type fixture struct {
	coordinator *Coordinator
	ledger      *inventory.Ledger
	orders      *repository.KVOrderRepository
	notifier    *usecasemocks.MockNotificationUseCase
	publisher   *recordingPublisher
	clock       *timeprovider.ManualTimeProvider
}

type fixtureOptions struct {
	gateways gateway.PaymentGateways
	orders   persistence.OrderRepository
}

func newFixture(t *testing.T, stock map[string]int, opts fixtureOptions) *fixture {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	log := logger.NewNoopLogger()
	store := kvstore.NewMemoryStore()

	products, err := catalog.NewStaticCatalog([]entity.Product{
		{ID: "v1", Name: "Carrots", UnitPrice: 300, TaxRate: decimal.RequireFromString("0.08")},
		{ID: "v2", Name: "Tomatoes", UnitPrice: 450, TaxRate: decimal.RequireFromString("0.08")},
	})
	require.NoError(t, err)

	invRepo := repository.NewKVInventoryRepository(store, clock)
	for id, qty := range stock {
		_, err := invRepo.Set(ctx, id, qty, entity.ReasonInitialStock, "test")
		require.NoError(t, err)
	}

	publisher := &recordingPublisher{}
	emitter := events.NewEmitter(publisher, clock, log)
	ledger := inventory.NewLedger(invRepo, products, emitter, clock, log, 0)

	orders := repository.NewKVOrderRepository(store)
	gateways := opts.gateways
	if gateways == nil {
		gateways = payment.NewSandboxRegistry(clock, log)
	}
	orderRepo := opts.orders
	if orderRepo == nil {
		orderRepo = orders
	}

	notifier := usecasemocks.NewMockNotificationUseCase(t)
	coordinator := NewCoordinator(ledger, gateways, orderRepo, notifier, emitter,
		Config{Currency: "jpy", RetryURLBase: "https://farm.example/checkout/retry"}, clock, log)

	return &fixture{
		coordinator: coordinator,
		ledger:      ledger,
		orders:      orders,
		notifier:    notifier,
		publisher:   publisher,
		clock:       clock,
	}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	rec, err := f.ledger.Get(context.Background(), productID)
	require.NoError(t, err)
	return rec.Stock
}

// three carrots: 900 + 72 tax, free shipping
func carrotsRequest(orderID string) usecase.OrderRequest {
	return usecase.OrderRequest{
		OrderID: orderID,
		OwnerID: "shopper-1",
		Items:   []entity.LineItem{{ProductID: "v1", Quantity: 3}},
		Calculation: &entity.ServerCalculation{
			Items: []entity.LineCalculation{
				{ProductID: "v1", Name: "Carrots", UnitPrice: 300, Quantity: 3, Subtotal: 900, Tax: 72, Total: 972},
			},
			Subtotal:        900,
			Tax:             72,
			SubtotalWithTax: 972,
			FinalTotal:      972,
			CanCheckout:     true,
		},
		Customer: entity.Customer{Name: "Hanako", Email: "hanako@example.com", Prefecture: "東京都"},
	}
}

var card = entity.PaymentMethod{Type: entity.PaymentMethodCard, Token: "tok_visa"}

func TestCoordinator_ProcessCaptured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})
	f.notifier.On("SendOrderConfirmation", mock.Anything, mock.MatchedBy(func(n entity.OrderConfirmation) bool {
		return n.OrderID == "ORD-1" && n.Amounts.Total == 972 && !n.AwaitingPayment
	})).Return(&entity.NotificationResult{Success: true}, nil).Once()

	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-1"), card)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.False(t, result.RolledBack)

	assert.Equal(t, entity.TransactionStatusCaptured, result.Transaction.Status)
	require.Len(t, result.Transaction.Steps, 3)
	assert.Equal(t, entity.StepInventoryReserved, result.Transaction.Steps[0].Name)
	assert.Equal(t, entity.StepPaymentAuthorized, result.Transaction.Steps[1].Name)
	assert.Equal(t, entity.StepOrderCreated, result.Transaction.Steps[2].Name)

	assert.Equal(t, entity.OrderStatusConfirmed, result.Order.Status)
	assert.Equal(t, result.Payment.PaymentID, result.Order.PaymentID)
	assert.Equal(t, 7, f.stock(t, "v1"))
	assert.True(t, f.publisher.published(entity.EventOrderCaptured))

	stored, err := f.coordinator.Transaction(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, result.Transaction.ID, stored.ID)
}

func TestCoordinator_DeclineRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})
	f.notifier.On("SendPaymentFailure", mock.Anything, mock.MatchedBy(func(n entity.PaymentFailureNotice) bool {
		return n.OrderID == "ORD-C" &&
			n.Amount == 972 &&
			n.RetryURL == "https://farm.example/checkout/retry?orderId=ORD-C"
	})).Return(&entity.NotificationResult{Success: true}, nil).Once()

	declined := entity.PaymentMethod{Type: entity.PaymentMethodCard, Token: payment.DeclineToken}
	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-C"), declined)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.False(t, result.CriticalFailure)
	assert.ErrorIs(t, result.Err, errs.ErrPaymentDeclined)
	assert.Equal(t, entity.TransactionStatusCancelled, result.Transaction.Status)
	assert.Equal(t, []string{entity.StepInventoryReserved}, result.Transaction.RolledBackSteps)

	// 10 -> 7 -> 10
	assert.Equal(t, 10, f.stock(t, "v1"))
	assert.True(t, f.publisher.published(entity.EventOrderCancelled))

	changes, err := f.ledger.Changes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, entity.ReasonRollback, changes[0].Reason)

	_, err = f.coordinator.Order(ctx, "ORD-C")
	assert.ErrorIs(t, err, errs.ErrOrderNotFound, "no order record for a declined payment")
}

func TestCoordinator_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 2}, fixtureOptions{})

	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-2"), card)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.RolledBack, "nothing was reserved, nothing to undo")
	assert.Equal(t, entity.TransactionStatusFailed, result.Transaction.Status)
	assert.Empty(t, result.Transaction.Steps)

	var stockErr *errs.InsufficientStockError
	require.ErrorAs(t, result.Err, &stockErr)
	assert.Equal(t, "v1", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, f.stock(t, "v1"))
}

func TestCoordinator_UnsupportedMethodRollsBackReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})

	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-3"),
		entity.PaymentMethod{Type: "bitcoin"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.ErrorIs(t, result.Err, errs.ErrUnsupportedPaymentMethod)
	assert.Equal(t, 10, f.stock(t, "v1"))
}

func TestCoordinator_CompensationFailureIsCritical(t *testing.T) {
	ctx := context.Background()

	gw := gatewaymocks.NewMockPaymentGateway(t)
	gateways := gatewaymocks.NewMockPaymentGateways(t)
	gateways.On("Gateway", entity.PaymentMethodCard).Return(gw, nil)
	gw.On("CreateIntent", mock.Anything, int64(972), "jpy", mock.Anything).Return("pi_1", nil).Once()
	gw.On("Confirm", mock.Anything, "pi_1", card).Return(&gateway.PaymentResult{Success: true, PaymentID: "pay_1"}, nil).Once()
	gw.On("Cancel", mock.Anything, "pay_1").Return(errors.New("provider timeout")).Once()

	orders := persistencemocks.NewMockOrderRepository(t)
	orders.On("GetTransaction", mock.Anything, "ORD-X").Return(nil, errs.ErrOrderNotFound).Once()
	orders.On("SaveOrder", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	orders.On("SaveTransaction", mock.Anything, mock.MatchedBy(func(txn *entity.OrderTransaction) bool {
		return txn.CriticalFailure && txn.Status == entity.TransactionStatusCancelled
	})).Return(nil).Once()

	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{gateways: gateways, orders: orders})
	f.notifier.On("SendRollbackAlert", mock.Anything, mock.MatchedBy(func(a entity.RollbackAlert) bool {
		return a.OrderID == "ORD-X" && len(a.Failures) == 1 && len(a.Steps) == 2
	})).Return(&entity.NotificationResult{Success: true}, nil).Once()

	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-X"), card)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.True(t, result.CriticalFailure)
	assert.ErrorIs(t, result.Err, errs.ErrRollbackFailed)

	// the reservation is still undone after the payment compensation failed
	assert.Equal(t, 10, f.stock(t, "v1"))
	assert.Equal(t, []string{entity.StepInventoryReserved}, result.Transaction.RolledBackSteps)
	assert.True(t, f.publisher.published(entity.EventOrderRollbackFailed))
	assert.False(t, f.publisher.published(entity.EventOrderCancelled))
}

func TestCoordinator_RollbackOrderIsReversed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})

	gw := gatewaymocks.NewMockPaymentGateway(t)
	gateways := gatewaymocks.NewMockPaymentGateways(t)
	gateways.On("Gateway", entity.PaymentMethodCard).Return(gw, nil)

	var calls []string
	gw.On("Cancel", mock.Anything, "pay_9").Run(func(mock.Arguments) {
		calls = append(calls, entity.StepPaymentAuthorized)
	}).Return(nil).Once()
	f.coordinator.gateways = gateways

	order := &entity.Order{ID: "ORD-9", Status: entity.OrderStatusConfirmed, PaymentMethod: entity.PaymentMethodCard}
	require.NoError(t, f.orders.SaveOrder(ctx, order))

	_, err := f.ledger.Reserve(ctx, []entity.LineItem{{ProductID: "v1", Quantity: 4}})
	require.NoError(t, err)

	txn := entity.NewOrderTransaction("txn-9", "ORD-9", f.clock.Now())
	txn.Items = []entity.LineItem{{ProductID: "v1", Quantity: 4}}
	txn.PaymentMethod = entity.PaymentMethodCard
	txn.PaymentID = "pay_9"
	txn.AddStep(entity.StepInventoryReserved, nil, f.clock.Now())
	txn.AddStep(entity.StepPaymentAuthorized, nil, f.clock.Now())
	txn.AddStep(entity.StepOrderCreated, nil, f.clock.Now())

	require.NoError(t, f.coordinator.rollback(ctx, txn, nil, "test"))

	assert.Equal(t, []string{
		entity.StepOrderCreated,
		entity.StepPaymentAuthorized,
		entity.StepInventoryReserved,
	}, txn.RolledBackSteps)
	assert.Equal(t, []string{entity.StepPaymentAuthorized}, calls)
	assert.Equal(t, 10, f.stock(t, "v1"))

	cancelled, err := f.orders.GetOrder(ctx, "ORD-9")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
}

func TestCoordinator_KonbiniSettleAndRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})
	f.notifier.On("SendOrderConfirmation", mock.Anything, mock.MatchedBy(func(n entity.OrderConfirmation) bool {
		return n.AwaitingPayment && n.PaymentMethod == entity.PaymentMethodKonbini
	})).Return(&entity.NotificationResult{Success: true}, nil).Once()

	konbini := entity.PaymentMethod{Type: entity.PaymentMethodKonbini, Store: "family"}
	result, err := f.coordinator.Process(ctx, carrotsRequest("ORD-K"), konbini)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.Payment.Pending)
	assert.NotEmpty(t, result.Payment.VoucherCode)
	assert.Equal(t, entity.TransactionStatusAuthorized, result.Transaction.Status)
	assert.Equal(t, entity.OrderStatusAwaitingPayment, result.Order.Status)
	assert.True(t, f.publisher.published(entity.EventOrderAuthorized))

	settled, err := f.coordinator.Settle(ctx, "ORD-K")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, settled.Status)

	_, err = f.coordinator.Settle(ctx, "ORD-K")
	assert.ErrorIs(t, err, errs.ErrInvalidOrderState, "settling twice")

	refunded, err := f.coordinator.Refund(ctx, "ORD-K", "customer request")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, 10, f.stock(t, "v1"))

	txn, err := f.coordinator.Transaction(ctx, "ORD-K")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusRefunded, txn.Status)
	assert.Equal(t, "customer request", txn.RollbackReason)
	assert.True(t, f.publisher.published(entity.EventOrderRefunded))

	_, err = f.coordinator.Refund(ctx, "ORD-K", "")
	assert.ErrorIs(t, err, errs.ErrInvalidOrderState, "refunding twice")
	assert.Equal(t, 10, f.stock(t, "v1"))
}

func TestCoordinator_ReplayedOrderID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})
	f.notifier.On("SendOrderConfirmation", mock.Anything, mock.Anything).
		Return(&entity.NotificationResult{Success: true}, nil).Once()

	first, err := f.coordinator.Process(ctx, carrotsRequest("ORD-R"), card)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := f.coordinator.Process(ctx, carrotsRequest("ORD-R"), card)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	require.NotNil(t, second.Order)
	assert.Equal(t, "ORD-R", second.Order.ID)
	assert.Equal(t, 7, f.stock(t, "v1"), "stock is reserved once")
}

func TestCoordinator_InvalidRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{"v1": 10}, fixtureOptions{})

	tests := []struct {
		name   string
		mutate func(req *usecase.OrderRequest, method *entity.PaymentMethod)
		want   error
	}{
		{
			name:   "missing order ID",
			mutate: func(req *usecase.OrderRequest, _ *entity.PaymentMethod) { req.OrderID = "" },
			want:   errs.ErrInvalidRequest,
		},
		{
			name:   "empty cart",
			mutate: func(req *usecase.OrderRequest, _ *entity.PaymentMethod) { req.Items = nil },
			want:   errs.ErrEmptyCart,
		},
		{
			name:   "no calculation",
			mutate: func(req *usecase.OrderRequest, _ *entity.PaymentMethod) { req.Calculation = nil },
			want:   errs.ErrInvalidRequest,
		},
		{
			name:   "no payment method",
			mutate: func(_ *usecase.OrderRequest, method *entity.PaymentMethod) { method.Type = "" },
			want:   errs.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := carrotsRequest("ORD-V")
			method := card
			tt.mutate(&req, &method)

			result, err := f.coordinator.Process(ctx, req, method)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, result)
		})
	}
	assert.Equal(t, 10, f.stock(t, "v1"))
}
