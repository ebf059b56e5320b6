package time

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
)

func TestManualTimeProvider(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualTimeProvider(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(10 * time.Minute)
	assert.Equal(t, start.Add(10*time.Minute), clock.Now())
	assert.Equal(t, core.Duration(10*time.Minute), clock.Since(start))

	clock.Sleep(core.Second)
	assert.Equal(t, start.Add(10*time.Minute+time.Second), clock.Now())

	clock.Set(start)
	assert.Equal(t, core.Duration(0), clock.Since(start))
}

func TestRealTimeProvider(t *testing.T) {
	clock := NewRealTimeProvider()

	before := clock.Now()
	clock.Sleep(core.Millisecond)
	assert.GreaterOrEqual(t, clock.Since(before).Std(), time.Millisecond)
}
