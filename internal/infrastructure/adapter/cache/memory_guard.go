package cache

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

// dedupPruneInterval is how often MarkIfAbsent drops lapsed keys
const dedupPruneInterval = time.Minute

// MemoryDeduplicationStore is the single-process DeduplicationStore.
// Lapsed keys are dropped at most once per dedupPruneInterval.
type MemoryDeduplicationStore struct {
	timeProvider coreport.TimeProvider
	mu           sync.Mutex
	expiries     map[string]time.Time
	nextPrune    time.Time
}

// NewMemoryDeduplicationStore creates an empty store
func NewMemoryDeduplicationStore(timeProvider coreport.TimeProvider) *MemoryDeduplicationStore {
	return &MemoryDeduplicationStore{
		timeProvider: timeProvider,
		expiries:     make(map[string]time.Time),
	}
}

func (s *MemoryDeduplicationStore) MarkIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeProvider.Now()
	if !now.Before(s.nextPrune) {
		for k, expiry := range s.expiries {
			if !now.Before(expiry) {
				delete(s.expiries, k)
			}
		}
		s.nextPrune = now.Add(dedupPruneInterval)
	}
	if expiry, ok := s.expiries[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.expiries[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryDeduplicationStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expiries, key)
	return nil
}

type windowCounter struct {
	window int64
	count  int
}

// MemoryRateLimiter is the single-process fixed-window RateLimiter.
// Counters of past windows are dropped when a new window starts.
type MemoryRateLimiter struct {
	timeProvider coreport.TimeProvider
	limit        int
	window       time.Duration
	mu           sync.Mutex
	counters     map[string]*windowCounter
	lastWindow   int64
}

// NewMemoryRateLimiter allows limit events per key per window
func NewMemoryRateLimiter(timeProvider coreport.TimeProvider, limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		timeProvider: timeProvider,
		limit:        limit,
		window:       window,
		counters:     make(map[string]*windowCounter),
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.timeProvider.Now().UnixNano() / int64(l.window)
	if current != l.lastWindow {
		for k, c := range l.counters {
			if c.window != current {
				delete(l.counters, k)
			}
		}
		l.lastWindow = current
	}
	counter, ok := l.counters[key]
	if !ok || counter.window != current {
		counter = &windowCounter{window: current}
		l.counters[key] = counter
	}
	counter.count++
	return counter.count <= l.limit, nil
}

func (s *MemoryDeduplicationStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiries)
}

func (l *MemoryRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}
