package purchase

import (
	"context"
	"sync"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/usecase"
)

// PlaceOrderFunc is the function signature for placing one order
type PlaceOrderFunc func(ctx context.Context, req usecase.PlaceOrderRequest) (*usecase.ProcessResult, error)

// ownerLane serializes one shopper's calls. refs counts callers running or waiting;
// the lane is dropped from the map when it reaches zero.
type ownerLane struct {
	turn chan struct{}
	refs int
}

// OrderQueue runs place-order calls of the same shopper one at a time, so a double submit
// sees the session already consumed by the first call. Different shoppers run in parallel.
type OrderQueue struct {
	logger    coreport.Logger
	processor PlaceOrderFunc

	mu       sync.Mutex
	lanes    map[string]*ownerLane
	closed   bool
	inflight sync.WaitGroup
}

// NewOrderQueue creates a queue around processor
func NewOrderQueue(processor PlaceOrderFunc, logger coreport.Logger) *OrderQueue {
	if processor == nil {
		panic("place order function cannot be nil")
	}
	return &OrderQueue{
		logger:    logger,
		processor: processor,
		lanes:     make(map[string]*ownerLane),
	}
}

// Enqueue waits for the shopper's earlier orders, then runs req on the caller's goroutine
func (q *OrderQueue) Enqueue(ctx context.Context, req usecase.PlaceOrderRequest) (*usecase.ProcessResult, error) {
	lane, err := q.join(req.OwnerID)
	if err != nil {
		return nil, err
	}
	defer q.leave(req.OwnerID, lane)

	select {
	case lane.turn <- struct{}{}:
	case <-ctx.Done():
		q.logger.Warn("Context canceled while waiting for earlier orders", map[string]any{
			"ownerId": req.OwnerID,
			"error":   ctx.Err().Error(),
		})
		return nil, ctx.Err()
	}
	defer func() { <-lane.turn }()

	return q.processor(ctx, req)
}

func (q *OrderQueue) join(ownerID string) (*ownerLane, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, errs.ErrInternalServer
	}
	lane, ok := q.lanes[ownerID]
	if !ok {
		lane = &ownerLane{turn: make(chan struct{}, 1)}
		q.lanes[ownerID] = lane
	}
	lane.refs++
	q.inflight.Add(1)
	return lane, nil
}

func (q *OrderQueue) leave(ownerID string, lane *ownerLane) {
	q.mu.Lock()
	lane.refs--
	if lane.refs == 0 {
		delete(q.lanes, ownerID)
	}
	q.mu.Unlock()
	q.inflight.Done()
}

// Shutdown stops accepting orders and waits for running and waiting ones to finish
func (q *OrderQueue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.inflight.Wait()
	q.logger.Info("Order queue shut down", nil)
}

// owners reports how many shoppers currently have calls running or waiting
func (q *OrderQueue) owners() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes)
}
