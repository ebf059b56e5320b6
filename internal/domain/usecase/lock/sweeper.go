package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

// Sweeper periodically removes expired purchase locks.
// Correctness never depends on it; it only keeps the store small.
type Sweeper struct {
	manager  *Manager
	logger   coreport.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewSweeper creates a sweeper running every interval
func NewSweeper(manager *Manager, logger coreport.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep goroutine
func (s *Sweeper) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run(ctx)
}

// Stop ends the sweep goroutine and waits for it to exit
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Purchase lock sweeper started", map[string]any{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-s.stopChan:
			s.logger.Info("Purchase lock sweeper stopped", nil)
			return
		case <-ctx.Done():
			s.logger.Info("Purchase lock sweeper stopped", nil)
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	removed, err := s.manager.Sweep(ctx)
	if err != nil {
		s.logger.Error("Purchase lock sweep failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	if removed > 0 {
		s.logger.Debug("Expired purchase locks removed", map[string]any{
			"count": removed,
		})
	}
}
