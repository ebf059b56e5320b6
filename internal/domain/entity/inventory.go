package entity

import (
	"sort"
	"time"
)

const (
	// MaxInventoryChanges caps the change log; the oldest entries are evicted first
	MaxInventoryChanges = 1000

	// DefaultLowStockThreshold is the stock level at or below which a product is reported as low
	DefaultLowStockThreshold = 3
)

// Reasons recorded in the change log
const (
	ReasonReservation  = "reservation"
	ReasonRelease      = "release"
	ReasonRollback     = "rollback"
	ReasonRefund       = "refund"
	ReasonAdjustment   = "adjustment"
	ReasonHarvestSync  = "harvest_sync"
	ReasonInitialStock = "initial_stock"
)

// InventoryRecord is the authoritative stock count of one product. Records are never deleted.
type InventoryRecord struct {
	ProductID   string    `json:"productId"`
	Stock       int       `json:"stock"` // Never negative
	LastUpdated time.Time `json:"lastUpdated"`
	UpdatedBy   string    `json:"updatedBy"`
}

// InventoryChange is one audit entry of the change log
type InventoryChange struct {
	ProductID string    `json:"productId"`
	OldStock  int       `json:"oldStock"`
	NewStock  int       `json:"newStock"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// StockMutation is a relative change request applied to one product
type StockMutation struct {
	ProductID string
	Delta     int
	Reason    string
	Actor     string
}

// ClampStock applies delta to current and never returns a negative value
func ClampStock(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// Apply mutates the record and returns the change entry describing it
func (r *InventoryRecord) Apply(delta int, reason, actor string, now time.Time) InventoryChange {
	old := r.Stock
	r.Stock = ClampStock(old, delta)
	r.LastUpdated = now
	r.UpdatedBy = actor
	return InventoryChange{
		ProductID: r.ProductID,
		OldStock:  old,
		NewStock:  r.Stock,
		Delta:     r.Stock - old,
		Reason:    reason,
		Actor:     actor,
		Timestamp: now,
	}
}

// SetStock replaces the stock count and returns the change entry
func (r *InventoryRecord) SetStock(stock int, reason, actor string, now time.Time) InventoryChange {
	if stock < 0 {
		stock = 0
	}
	return r.Apply(stock-r.Stock, reason, actor, now)
}

// PrependChanges adds entries given in chronological order to a newest-first log
// and evicts the oldest beyond MaxInventoryChanges.
func PrependChanges(log []InventoryChange, changes ...InventoryChange) []InventoryChange {
	out := make([]InventoryChange, 0, len(log)+len(changes))
	for i := len(changes) - 1; i >= 0; i-- {
		out = append(out, changes[i])
	}
	out = append(out, log...)
	if len(out) > MaxInventoryChanges {
		out = out[:MaxInventoryChanges]
	}
	return out
}

// Availability answers "can the shopper have this many right now"
type Availability struct {
	ProductID    string `json:"productId"`
	Available    bool   `json:"available"`
	CurrentStock int    `json:"currentStock"`
	Requested    int    `json:"requested"`
	Shortage     int    `json:"shortage"`
}

// NewAvailability builds the availability answer for a stock level and a request
func NewAvailability(productID string, currentStock, requested int) Availability {
	shortage := requested - currentStock
	if shortage < 0 {
		shortage = 0
	}
	return Availability{
		ProductID:    productID,
		Available:    currentStock >= requested,
		CurrentStock: currentStock,
		Requested:    requested,
		Shortage:     shortage,
	}
}

// StockShortage identifies the line that made a reservation fail
type StockShortage struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// ReservationResult is the outcome of an all-or-nothing reservation
type ReservationResult struct {
	Success    bool           `json:"success"`
	FailedItem *StockShortage `json:"failedItem,omitempty"`
}

// CheckReservation returns the first line (in request order) the stock levels cannot cover
func CheckReservation(items []LineItem, stock map[string]int) *StockShortage {
	for _, item := range items {
		available := stock[item.ProductID]
		if available < item.Quantity {
			return &StockShortage{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}
		}
	}
	return nil
}

// CartValidation separates sold-out lines from lines with too little stock
type CartValidation struct {
	Valid       bool           `json:"valid"`
	Unavailable []Availability `json:"unavailable"`
	Warnings    []Availability `json:"warnings"`
}

// NewCartValidation classifies availability answers
func NewCartValidation(checks []Availability) *CartValidation {
	result := &CartValidation{
		Unavailable: []Availability{},
		Warnings:    []Availability{},
	}
	for _, c := range checks {
		if c.Available {
			continue
		}
		if c.CurrentStock == 0 {
			result.Unavailable = append(result.Unavailable, c)
		} else {
			result.Warnings = append(result.Warnings, c)
		}
	}
	result.Valid = len(result.Unavailable) == 0 && len(result.Warnings) == 0
	return result
}

// InventoryReportItem is one product line of the inventory report
type InventoryReportItem struct {
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	Stock       int       `json:"stock"`
	UnitPrice   int64     `json:"price"`
	StockValue  int64     `json:"stockValue"`
	LowStock    bool      `json:"lowStock"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// InventoryReport summarizes stock across the catalog
type InventoryReport struct {
	GeneratedAt     time.Time             `json:"generatedAt"`
	TotalItems      int                   `json:"totalItems"`
	InStock         int                   `json:"inStock"`
	OutOfStock      int                   `json:"outOfStock"`
	LowStock        int                   `json:"lowStock"`
	TotalStockValue int64                 `json:"totalStockValue"`
	Items           []InventoryReportItem `json:"items"`
}

// NewInventoryReport aggregates report lines, ordering them by ascending stock
func NewInventoryReport(items []InventoryReportItem, generatedAt time.Time) *InventoryReport {
	report := &InventoryReport{
		GeneratedAt: generatedAt,
		TotalItems:  len(items),
		Items:       items,
	}
	for _, item := range items {
		if item.Stock > 0 {
			report.InStock++
		} else {
			report.OutOfStock++
		}
		if item.LowStock {
			report.LowStock++
		}
		report.TotalStockValue += item.StockValue
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].Stock != report.Items[j].Stock {
			return report.Items[i].Stock < report.Items[j].Stock
		}
		return report.Items[i].ProductID < report.Items[j].ProductID
	})
	return report
}

// IsLowStock reports whether stock is positive but at or below threshold
func IsLowStock(stock, threshold int) bool {
	return stock > 0 && stock <= threshold
}
