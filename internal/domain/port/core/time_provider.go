package core

import "time"

// Duration is the span type TimeProvider hands out
type Duration time.Duration

const (
	Millisecond = Duration(time.Millisecond)
	Second      = Duration(time.Second)
	Minute      = Duration(time.Minute)
)

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TimeProvider is the clock behind lock TTLs, session expiry and order timestamps.
// Tests swap in a manual clock so expiry can be stepped instead of waited for.
type TimeProvider interface {
	Now() time.Time
	// Since is Now minus t
	Since(t time.Time) Duration
	// Sleep blocks for d on a wall clock; a manual clock advances instead
	Sleep(d Duration)
}
