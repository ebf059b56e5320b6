package time

import (
	"time"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
)

// RealTimeProvider is the production clock
type RealTimeProvider struct{}

func NewRealTimeProvider() core.TimeProvider {
	return RealTimeProvider{}
}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

func (RealTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(time.Since(t))
}

func (RealTimeProvider) Sleep(d core.Duration) {
	time.Sleep(d.Std())
}
