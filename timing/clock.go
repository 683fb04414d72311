package timing

import "time"

// clockEpoch anchors all timestamps to the process start so that elapsed
// intervals are computed from Go's monotonic clock reading, immune to wall
// clock adjustments.
var clockEpoch = time.Now()

// nowNanos returns the current monotonic timestamp in nanoseconds.
// Replaceable in tests for deterministic intervals.
var nowNanos = func() int64 {
	return int64(time.Since(clockEpoch))
}
