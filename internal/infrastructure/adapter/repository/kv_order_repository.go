package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

// KVOrderRepository stores each order and transaction as its own document
type KVOrderRepository struct {
	store persistence.KeyValueStore
}

// NewKVOrderRepository creates an order repository over store
func NewKVOrderRepository(store persistence.KeyValueStore) *KVOrderRepository {
	return &KVOrderRepository{store: store}
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order:%s", orderID)
}

func transactionKey(orderID string) string {
	return fmt.Sprintf("order_transaction:%s", orderID)
}

func (r *KVOrderRepository) SaveOrder(ctx context.Context, order *entity.Order) error {
	return saveDocument(ctx, r.store, orderKey(order.ID), order)
}

func (r *KVOrderRepository) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var order entity.Order
	found, err := loadDocument(ctx, r.store, orderKey(orderID), &order)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.ErrOrderNotFound
	}
	return &order, nil
}

func (r *KVOrderRepository) SaveTransaction(ctx context.Context, txn *entity.OrderTransaction) error {
	return saveDocument(ctx, r.store, transactionKey(txn.OrderID), txn)
}

func (r *KVOrderRepository) GetTransaction(ctx context.Context, orderID string) (*entity.OrderTransaction, error) {
	var txn entity.OrderTransaction
	found, err := loadDocument(ctx, r.store, transactionKey(orderID), &txn)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.ErrOrderNotFound
	}
	return &txn, nil
}
