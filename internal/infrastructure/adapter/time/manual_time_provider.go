package time

import (
	"sync"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

// ManualTimeProvider is a clock that only moves when told to.
// Lock and session TTL tests drive it with Advance.
type ManualTimeProvider struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualTimeProvider creates a clock frozen at start
func NewManualTimeProvider(start time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{now: start}
}

func (p *ManualTimeProvider) Now() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.now
}

// Advance moves the clock forward by d
func (p *ManualTimeProvider) Advance(d time.Duration) {
	p.mu.Lock()
	p.now = p.now.Add(d)
	p.mu.Unlock()
}

// Set moves the clock to t
func (p *ManualTimeProvider) Set(t time.Time) {
	p.mu.Lock()
	p.now = t
	p.mu.Unlock()
}

func (p *ManualTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(p.Now().Sub(t))
}

// Sleep advances the clock instead of blocking
func (p *ManualTimeProvider) Sleep(d core.Duration) {
	p.Advance(d.Std())
}
