package clock

import (
	"sync/atomic"
	"time"
)

// EpochNanos is a wall-clock timestamp in nanoseconds since the Unix epoch.
type EpochNanos uint64

var lastStamp atomic.Uint64

// Now returns the current wall-clock time with a best-effort monotonicity
// guarantee: two calls in the same process never return the same value, and
// later calls never return smaller values. Coarse system clocks would
// otherwise hand identical nanosecond stamps to back-to-back operations.
func Now() EpochNanos {
	for {
		now := uint64(time.Now().UnixNano())
		prev := lastStamp.Load()
		if now <= prev {
			now = prev + 1
		}
		if lastStamp.CompareAndSwap(prev, now) {
			return EpochNanos(now)
		}
	}
}
