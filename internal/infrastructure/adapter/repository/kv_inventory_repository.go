package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/persistence"
)

const (
	inventoryKey    = "inventory_realtime"
	inventoryLogKey = "inventory_log"
)

// KVInventoryRepository keeps stock and the change log as two documents.
// The mutex makes every check-then-write atomic within this process.
type KVInventoryRepository struct {
	store        persistence.KeyValueStore
	timeProvider coreport.TimeProvider
	mu           sync.Mutex
}

// NewKVInventoryRepository creates an inventory repository over store
func NewKVInventoryRepository(store persistence.KeyValueStore, timeProvider coreport.TimeProvider) *KVInventoryRepository {
	return &KVInventoryRepository{
		store:        store,
		timeProvider: timeProvider,
	}
}

func (r *KVInventoryRepository) loadRecords(ctx context.Context) (map[string]*entity.InventoryRecord, error) {
	records := make(map[string]*entity.InventoryRecord)
	if _, err := loadDocument(ctx, r.store, inventoryKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *KVInventoryRepository) loadLog(ctx context.Context) ([]entity.InventoryChange, error) {
	var log []entity.InventoryChange
	if _, err := loadDocument(ctx, r.store, inventoryLogKey, &log); err != nil {
		return nil, err
	}
	return log, nil
}

// commit writes stock first; the log is the audit trail of what was written
func (r *KVInventoryRepository) commit(ctx context.Context, records map[string]*entity.InventoryRecord, changes []entity.InventoryChange) error {
	if err := saveDocument(ctx, r.store, inventoryKey, records); err != nil {
		return err
	}
	log, err := r.loadLog(ctx)
	if err != nil {
		return err
	}
	return saveDocument(ctx, r.store, inventoryLogKey, entity.PrependChanges(log, changes...))
}

func recordOf(records map[string]*entity.InventoryRecord, productID string) *entity.InventoryRecord {
	rec, ok := records[productID]
	if !ok {
		rec = &entity.InventoryRecord{ProductID: productID}
		records[productID] = rec
	}
	return rec
}

func (r *KVInventoryRepository) Get(ctx context.Context, productID string) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}
	if rec, ok := records[productID]; ok {
		return rec, nil
	}
	return &entity.InventoryRecord{ProductID: productID}, nil
}

func (r *KVInventoryRepository) List(ctx context.Context) ([]*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*entity.InventoryRecord, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r *KVInventoryRepository) Adjust(ctx context.Context, mutation entity.StockMutation) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	rec := recordOf(records, mutation.ProductID)
	change := rec.Apply(mutation.Delta, mutation.Reason, mutation.Actor, r.timeProvider.Now())
	if err := r.commit(ctx, records, []entity.InventoryChange{change}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *KVInventoryRepository) Set(ctx context.Context, productID string, stock int, reason, actor string) (*entity.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	rec := recordOf(records, productID)
	change := rec.SetStock(stock, reason, actor, r.timeProvider.Now())
	if err := r.commit(ctx, records, []entity.InventoryChange{change}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *KVInventoryRepository) ReserveAll(ctx context.Context, items []entity.LineItem, reason, actor string) (*entity.ReservationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	merged := entity.MergeLineItems(items)
	stock := make(map[string]int, len(merged))
	for _, item := range merged {
		if rec, ok := records[item.ProductID]; ok {
			stock[item.ProductID] = rec.Stock
		}
	}
	if shortage := entity.CheckReservation(merged, stock); shortage != nil {
		return &entity.ReservationResult{Success: false, FailedItem: shortage}, nil
	}

	now := r.timeProvider.Now()
	changes := make([]entity.InventoryChange, 0, len(merged))
	for _, item := range merged {
		changes = append(changes, recordOf(records, item.ProductID).Apply(-item.Quantity, reason, actor, now))
	}
	if err := r.commit(ctx, records, changes); err != nil {
		return nil, err
	}
	return &entity.ReservationResult{Success: true}, nil
}

func (r *KVInventoryRepository) ReleaseAll(ctx context.Context, items []entity.LineItem, reason, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadRecords(ctx)
	if err != nil {
		return err
	}

	now := r.timeProvider.Now()
	merged := entity.MergeLineItems(items)
	changes := make([]entity.InventoryChange, 0, len(merged))
	for _, item := range merged {
		changes = append(changes, recordOf(records, item.ProductID).Apply(item.Quantity, reason, actor, now))
	}
	return r.commit(ctx, records, changes)
}

func (r *KVInventoryRepository) Changes(ctx context.Context, limit int) ([]entity.InventoryChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.loadLog(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	if log == nil {
		log = []entity.InventoryChange{}
	}
	return log, nil
}
