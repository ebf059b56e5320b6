package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/usecase/events"
	"github.com/google/uuid"
)

// Config holds payment settings of the coordinator
type Config struct {
	Currency     string
	RetryURLBase string // the order ID is appended as ?orderId=
}

// Coordinator places orders as a saga: reserve stock, take payment, record the order.
// Each completed step is recorded on the transaction so it can be compensated in reverse.
type Coordinator struct {
	ledger       usecase.InventoryUseCase
	gateways     gateway.PaymentGateways
	orders       persistence.OrderRepository
	notifier     usecase.NotificationUseCase
	events       *events.Emitter
	idempotency  *IdempotencyHandler
	config       Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewCoordinator creates an order coordinator
func NewCoordinator(
	ledger usecase.InventoryUseCase,
	gateways gateway.PaymentGateways,
	orders persistence.OrderRepository,
	notifier usecase.NotificationUseCase,
	emitter *events.Emitter,
	config Config,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Coordinator {
	if config.Currency == "" {
		config.Currency = "jpy"
	}
	return &Coordinator{
		ledger:       ledger,
		gateways:     gateways,
		orders:       orders,
		notifier:     notifier,
		events:       emitter,
		idempotency:  NewIdempotencyHandler(orders),
		config:       config,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func validateRequest(req usecase.OrderRequest, method entity.PaymentMethod) error {
	if strings.TrimSpace(req.OrderID) == "" {
		return fmt.Errorf("%w: order ID is required", errs.ErrInvalidRequest)
	}
	if err := entity.ValidateLineItems(req.Items); err != nil {
		return err
	}
	if req.Calculation == nil || req.Calculation.FinalTotal <= 0 {
		return fmt.Errorf("%w: server calculation is required", errs.ErrInvalidRequest)
	}
	if method.Type == "" {
		return fmt.Errorf("%w: payment method is required", errs.ErrInvalidRequest)
	}
	return nil
}

// Process runs the order saga. Business outcomes (shortage, decline, rollback) come back in the
// result; only malformed requests are returned as errors.
func (c *Coordinator) Process(ctx context.Context, req usecase.OrderRequest, method entity.PaymentMethod) (*usecase.ProcessResult, error) {
	if err := validateRequest(req, method); err != nil {
		return nil, err
	}

	existing, decision, err := c.idempotency.Decide(ctx, req)
	if err != nil {
		c.logger.Warn("Order ID refused", map[string]any{
			"orderId": req.OrderID,
			"ownerId": req.OwnerID,
			"error":   err.Error(),
		})
		return nil, err
	}
	if decision == DecisionReplay {
		c.logger.Info("Order already processed, returning recorded outcome", map[string]any{
			"orderId":       req.OrderID,
			"transactionId": existing.ID,
			"status":        string(existing.Status),
		})
		return c.idempotency.Replay(ctx, existing), nil
	}

	now := c.timeProvider.Now()
	txn := entity.NewOrderTransaction(uuid.NewString(), req.OrderID, now)
	txn.OwnerID = req.OwnerID
	txn.Total = req.Calculation.FinalTotal
	txn.Items = entity.MergeLineItems(req.Items)
	txn.PaymentMethod = method.Type
	if decision == DecisionRetry {
		txn.Attempt = max(existing.Attempt, 1) + 1
		txn.RetryOf = existing.ID
	}

	log := c.logger.With(map[string]any{
		"orderId":       req.OrderID,
		"transactionId": txn.ID,
	})
	log.Info("Processing order", map[string]any{
		"attempt":       txn.Attempt,
		"items":         len(txn.Items),
		"total":         req.Calculation.FinalTotal,
		"paymentMethod": string(method.Type),
	})

	// Step 1: reserve stock
	reservation, err := c.ledger.Reserve(ctx, txn.Items)
	if err != nil {
		return c.abort(ctx, txn, nil, fmt.Sprintf("inventory reservation failed: %v", err), err), nil
	}
	if !reservation.Success {
		shortage := reservation.FailedItem
		txn.SetStatus(entity.TransactionStatusFailed, c.timeProvider.Now())
		txn.RollbackReason = "insufficient stock"
		c.saveTransaction(ctx, txn)

		stockErr := errs.NewInsufficientStockError(shortage.ProductID, shortage.Requested, shortage.Available)
		log.Info("Order rejected for insufficient stock", map[string]any{
			"productId": shortage.ProductID,
			"requested": shortage.Requested,
			"available": shortage.Available,
		})
		return &usecase.ProcessResult{
			Success:     false,
			Transaction: txn,
			Error:       stockErr.Error(),
			Err:         stockErr,
		}, nil
	}
	txn.AddStep(entity.StepInventoryReserved, map[string]any{"items": txn.Items}, c.timeProvider.Now())

	// Step 2: payment
	payment, err := c.pay(ctx, req, txn, method)
	if err != nil {
		return c.abort(ctx, txn, nil, fmt.Sprintf("payment error: %v", err), err), nil
	}
	if !payment.Success {
		declineErr := fmt.Errorf("%w: %s", errs.ErrPaymentDeclined, payment.Error)
		result := c.abort(ctx, txn, nil, declineErr.Error(), declineErr)
		result.Payment = payment
		c.notifyPaymentFailure(ctx, req, method, payment.Error)
		return result, nil
	}
	txn.PaymentID = payment.PaymentID
	txn.AddStep(entity.StepPaymentAuthorized, map[string]any{"paymentId": payment.PaymentID}, c.timeProvider.Now())

	// Step 3: order record
	order := c.newOrder(req, method, payment)
	if err := c.orders.SaveOrder(ctx, order); err != nil {
		result := c.abort(ctx, txn, nil, fmt.Sprintf("order creation failed: %v", err), err)
		result.Payment = payment
		return result, nil
	}
	txn.AddStep(entity.StepOrderCreated, map[string]any{"orderId": order.ID}, c.timeProvider.Now())

	status, eventType := entity.TransactionStatusCaptured, entity.EventOrderCaptured
	if payment.Pending {
		status, eventType = entity.TransactionStatusAuthorized, entity.EventOrderAuthorized
	}
	txn.SetStatus(status, c.timeProvider.Now())
	if err := c.orders.SaveTransaction(ctx, txn); err != nil {
		result := c.abort(ctx, txn, order, fmt.Sprintf("transaction record failed: %v", err), err)
		result.Payment = payment
		return result, nil
	}

	log.Info("Order placed", map[string]any{
		"status":    string(status),
		"paymentId": payment.PaymentID,
		"total":     order.Amounts.Total,
	})
	c.events.Emit(ctx, eventType, order.ID, orderEvent{
		OrderID:       order.ID,
		TransactionID: txn.ID,
		Total:         order.Amounts.Total,
		PaymentMethod: string(method.Type),
		Items:         order.Items,
	})
	c.notifyConfirmation(ctx, req, order, payment.Pending)

	return &usecase.ProcessResult{
		Success:     true,
		Transaction: txn,
		Order:       order,
		Payment:     payment,
	}, nil
}

func (c *Coordinator) pay(ctx context.Context, req usecase.OrderRequest, txn *entity.OrderTransaction, method entity.PaymentMethod) (*gateway.PaymentResult, error) {
	gw, err := c.gateways.Gateway(method.Type)
	if err != nil {
		return nil, err
	}

	token, err := gw.CreateIntent(ctx, req.Calculation.FinalTotal, c.config.Currency, map[string]string{
		"orderId":       req.OrderID,
		"transactionId": txn.ID,
		"ownerId":       req.OwnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	payment, err := gw.Confirm(ctx, token, method)
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	return payment, nil
}

func (c *Coordinator) newOrder(req usecase.OrderRequest, method entity.PaymentMethod, payment *gateway.PaymentResult) *entity.Order {
	now := c.timeProvider.Now()
	status := entity.OrderStatusConfirmed
	if payment.Pending {
		status = entity.OrderStatusAwaitingPayment
	}
	return &entity.Order{
		ID:            req.OrderID,
		OwnerID:       req.OwnerID,
		Items:         entity.MergeLineItems(req.Items),
		Amounts:       entity.AmountsFromCalculation(req.Calculation),
		Customer:      req.Customer,
		PaymentMethod: method.Type,
		PaymentID:     payment.PaymentID,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// abort rolls back and builds the failure result
func (c *Coordinator) abort(ctx context.Context, txn *entity.OrderTransaction, order *entity.Order, reason string, cause error) *usecase.ProcessResult {
	result := &usecase.ProcessResult{
		Success:     false,
		Transaction: txn,
		Error:       reason,
		RolledBack:  true,
		Err:         cause,
	}

	if rbErr := c.rollback(ctx, txn, order, reason); rbErr != nil {
		result.CriticalFailure = true
		result.Err = rbErr
	}
	return result
}

// orderEvent is the payload of order.* events
type orderEvent struct {
	OrderID       string            `json:"orderId"`
	TransactionID string            `json:"transactionId"`
	Total         int64             `json:"total,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	Items         []entity.LineItem `json:"items,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Failures      []string          `json:"failures,omitempty"`
}

func (c *Coordinator) saveTransaction(ctx context.Context, txn *entity.OrderTransaction) {
	if err := c.orders.SaveTransaction(ctx, txn); err != nil {
		c.logger.Error("Failed to persist order transaction", map[string]any{
			"orderId":       txn.OrderID,
			"transactionId": txn.ID,
			"status":        string(txn.Status),
			"error":         err.Error(),
		})
	}
}

func (c *Coordinator) Order(ctx context.Context, orderID string) (*entity.Order, error) {
	return c.orders.GetOrder(ctx, orderID)
}

func (c *Coordinator) Transaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error) {
	return c.orders.GetTransaction(ctx, orderID)
}
