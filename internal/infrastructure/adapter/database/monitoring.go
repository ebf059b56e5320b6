package database

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

// DefaultSlowQueryThreshold is used when NewQueryTimer gets a non-positive threshold
const DefaultSlowQueryThreshold = 100 * time.Millisecond

// QueryStats is what QueryTimer observed for one statement
type QueryStats struct {
	Operation string
	Elapsed   time.Duration
	Rows      int64
	Err       error
}

// QueryTimer warns about statements slower than its threshold. The purchase lock upsert runs
// on every add-to-cart, so a slow claim shows up here before shoppers notice.
type QueryTimer struct {
	logger    coreport.Logger
	clock     coreport.TimeProvider
	threshold time.Duration
}

func NewQueryTimer(logger coreport.Logger, clock coreport.TimeProvider, threshold time.Duration) *QueryTimer {
	if threshold <= 0 {
		threshold = DefaultSlowQueryThreshold
	}
	return &QueryTimer{logger: logger, clock: clock, threshold: threshold}
}

// Run executes fn, which returns the rows it touched, and reports how long it took
func (t *QueryTimer) Run(ctx context.Context, operation string, fn func() (int64, error)) (QueryStats, error) {
	start := t.clock.Now()
	rows, err := fn()
	stats := QueryStats{
		Operation: operation,
		Elapsed:   t.clock.Since(start).Std(),
		Rows:      rows,
		Err:       err,
	}

	if stats.Elapsed >= t.threshold {
		fields := map[string]any{
			"operation":    operation,
			"elapsed_ms":   stats.Elapsed.Milliseconds(),
			"threshold_ms": t.threshold.Milliseconds(),
			"rows":         rows,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			fields["context"] = ctxErr.Error()
		}
		t.logger.Warn("Slow database query", fields)
	}
	return stats, err
}
