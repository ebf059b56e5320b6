package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/kvstore"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/repository"
	timeprovider "github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/time"
	persistencemocks "github.com/amirhossein-jamali/farm-storefront/mocks/port/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) (*Manager, *repository.KVPurchaseLockRepository, *timeprovider.ManualTimeProvider) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := repository.NewKVPurchaseLockRepository(kvstore.NewMemoryStore())
	return NewManager(repo, clock, logger.NewNoopLogger(), ttl), repo, clock
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m, _, _ := newTestManager(0)
	assert.Equal(t, entity.DefaultLockTTL, m.TTL())

	m, _, _ = newTestManager(time.Minute)
	assert.Equal(t, time.Minute, m.TTL())
}

func TestManager_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("mutual exclusion", func(t *testing.T) {
		m, _, clock := newTestManager(0)

		first, err := m.Acquire(ctx, "v1", "h1", 1)
		require.NoError(t, err)
		assert.True(t, first.Granted)

		clock.Advance(4*time.Minute + 500*time.Millisecond)
		second, err := m.Acquire(ctx, "v1", "h2", 1)
		require.NoError(t, err)
		assert.False(t, second.Granted)
		assert.Nil(t, second.Lock)
		assert.Equal(t, 360, second.RetryAfterSeconds, "remaining time rounds up to whole seconds")

		other, err := m.Acquire(ctx, "v2", "h2", 1)
		require.NoError(t, err)
		assert.True(t, other.Granted, "locks are per product")
	})

	t.Run("holder re-acquires and refreshes", func(t *testing.T) {
		m, _, clock := newTestManager(0)

		_, err := m.Acquire(ctx, "v1", "h1", 1)
		require.NoError(t, err)

		clock.Advance(9 * time.Minute)
		again, err := m.Acquire(ctx, "v1", "h1", 3)
		require.NoError(t, err)
		require.True(t, again.Granted)
		assert.Equal(t, clock.Now(), again.Lock.AcquiredAt)
		assert.Equal(t, 3, again.Lock.RequestedQuantity)

		clock.Advance(2 * time.Minute)
		held, err := m.Get(ctx, "v1")
		require.NoError(t, err)
		require.NotNil(t, held, "the refresh restarted the ttl")
		assert.Equal(t, "h1", held.HolderID)
	})

	t.Run("expired lock is taken over", func(t *testing.T) {
		m, _, clock := newTestManager(0)

		_, err := m.Acquire(ctx, "v1", "h1", 1)
		require.NoError(t, err)

		clock.Advance(entity.DefaultLockTTL)
		res, err := m.Acquire(ctx, "v1", "h2", 2)
		require.NoError(t, err)
		require.True(t, res.Granted)
		assert.Equal(t, "h2", res.Lock.HolderID)

		released, err := m.Release(ctx, "v1", "h1")
		require.NoError(t, err)
		assert.False(t, released, "the old holder no longer owns the lock")
	})

	t.Run("concurrent holders", func(t *testing.T) {
		m, _, _ := newTestManager(0)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			granted []string
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(holder string) {
				defer wg.Done()
				res, err := m.Acquire(ctx, "v1", holder, 1)
				if assert.NoError(t, err) && res.Granted {
					mu.Lock()
					granted = append(granted, holder)
					mu.Unlock()
				}
			}(string(rune('A' + i)))
		}
		wg.Wait()
		assert.Len(t, granted, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		m, _, _ := newTestManager(0)

		_, err := m.Acquire(ctx, "", "h1", 1)
		assert.ErrorIs(t, err, errs.ErrInvalidProductID)
		_, err = m.Acquire(ctx, "v1", " ", 1)
		assert.ErrorIs(t, err, errs.ErrInvalidHolderID)
		_, err = m.Acquire(ctx, "v1", "h1", 0)
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := persistencemocks.NewMockPurchaseLockRepository(t)
		repo.On("Claim", mock.Anything, mock.Anything, entity.DefaultLockTTL).
			Return(nil, false, errs.ErrStorage).Once()
		clock := timeprovider.NewManualTimeProvider(time.Now())
		m := NewManager(repo, clock, logger.NewNoopLogger(), 0)

		res, err := m.Acquire(ctx, "v1", "h1", 1)
		assert.ErrorIs(t, err, errs.ErrStorage)
		assert.Nil(t, res)
	})
}

func TestManager_Release(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(0)

	_, err := m.Acquire(ctx, "v1", "h1", 1)
	require.NoError(t, err)

	released, err := m.Release(ctx, "v1", "h2")
	require.NoError(t, err)
	assert.False(t, released, "only the holder can release")

	released, err = m.Release(ctx, "v1", "h1")
	require.NoError(t, err)
	assert.True(t, released)

	released, err = m.Release(ctx, "v1", "h1")
	require.NoError(t, err)
	assert.False(t, released, "second release is a no-op")

	res, err := m.Acquire(ctx, "v1", "h2", 1)
	require.NoError(t, err)
	assert.True(t, res.Granted)
}

func TestManager_GetReportsExpiredAsAbsent(t *testing.T) {
	ctx := context.Background()
	m, repo, clock := newTestManager(time.Minute)

	_, err := m.Acquire(ctx, "v1", "h1", 1)
	require.NoError(t, err)

	clock.Advance(time.Minute - time.Millisecond)
	held, err := m.Get(ctx, "v1")
	require.NoError(t, err)
	assert.NotNil(t, held)

	clock.Advance(time.Millisecond)
	held, err = m.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, held, "a lock is expired exactly at its ttl")

	stored, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.NotNil(t, stored, "reading does not delete")

	removed, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestManager_GetLeavesRefreshedLockAlone(t *testing.T) {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	repo := persistencemocks.NewMockPurchaseLockRepository(t)
	m := NewManager(repo, clock, logger.NewNoopLogger(), time.Minute)

	// the holder re-acquires between this read and any cleanup; Release must not be called
	stale := &entity.PurchaseLock{ProductID: "v1", HolderID: "h1", AcquiredAt: clock.Now().Add(-2 * time.Minute), RequestedQuantity: 1}
	repo.On("Get", mock.Anything, "v1").Return(stale, nil).Once()

	held, err := m.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, held)
	repo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_ReleaseAll(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(0)

	for _, productID := range []string{"v1", "v2", "v3"} {
		_, err := m.Acquire(ctx, productID, "h1", 1)
		require.NoError(t, err)
	}
	_, err := m.Acquire(ctx, "v4", "h2", 1)
	require.NoError(t, err)

	released, err := m.ReleaseAll(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 3, released)

	held, err := m.Get(ctx, "v4")
	require.NoError(t, err)
	assert.NotNil(t, held, "other holders keep their locks")

	_, err = m.ReleaseAll(ctx, "")
	assert.ErrorIs(t, err, errs.ErrInvalidHolderID)
}

func TestManager_Sweep(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newTestManager(time.Minute)

	_, err := m.Acquire(ctx, "v1", "h1", 1)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = m.Acquire(ctx, "v2", "h2", 1)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	removed, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	held, err := m.Get(ctx, "v2")
	require.NoError(t, err)
	assert.NotNil(t, held)
}

func TestSweeper(t *testing.T) {
	ctx := context.Background()
	m, repo, clock := newTestManager(time.Minute)

	_, err := m.Acquire(ctx, "v1", "h1", 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	sweeper := NewSweeper(m, logger.NewNoopLogger(), 5*time.Millisecond)
	sweeper.Start(ctx)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		stored, err := repo.Get(ctx, "v1")
		return err == nil && stored == nil
	}, time.Second, 5*time.Millisecond)

	sweeper.Stop()
	sweeper.Stop()
}

func TestSweeper_StopWithoutStart(t *testing.T) {
	m, _, _ := newTestManager(0)
	sweeper := NewSweeper(m, logger.NewNoopLogger(), time.Second)

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked on a sweeper that never started")
	}
}
