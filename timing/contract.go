package timing

// Handle is an opaque reference to a metric instance registered in the
// storage engine. The zero value means "no handle": allocation failed or
// the metric was never registered, and every operation on it degrades to a
// silent no-op.
type Handle int64

// NoHandle is the sentinel for a missing or failed metric allocation.
const NoHandle Handle = 0

// TimerID correlates one Start call with exactly one later
// StopAndAccumulate or Cancel call. It is opaque: it carries no meaning
// beyond identity, is never reused, and is consumed by its first matching
// stop or cancel. The zero value is never a live timer.
type TimerID uint64

// Engine is the contract of the storage engine that owns aggregation,
// error counters, and persistence. The core treats it as an opaque
// collaborator; engine-side failures never propagate to recording calls.
//
// Implementations must be safe for concurrent use: SetStart is called
// synchronously from arbitrary producer goroutines, while the remaining
// recording operations arrive serialized on the dispatcher's consumer.
type Engine interface {
	// CreateMetric registers a metric and returns its handle, or NoHandle
	// if the metric cannot be registered.
	CreateMetric(meta CommonMetricData) Handle

	// DestroyMetric releases a handle. Safe to call on an already-released
	// or never-allocated handle.
	DestroyMetric(h Handle)

	// SetStart begins a new timer at the given timestamp and returns its
	// ID, or zero if the metric cannot start timers.
	SetStart(h Handle, startNanos int64) TimerID

	// SetStopAndAccumulate commits the interval between the timer's start
	// and stopNanos. A timer that is unknown or already consumed records
	// an ErrorInvalidState counter increment instead of a value.
	SetStopAndAccumulate(h Handle, id TimerID, stopNanos int64)

	// Cancel discards a running timer. Unknown or already-consumed timers
	// are ignored silently.
	Cancel(h Handle, id TimerID)

	// TestHasValue reports whether the metric holds data for the ping.
	TestHasValue(h Handle, ping string) bool

	// TestGetValueAsJSON returns the stored distribution for the ping,
	// encoded as {"sum":..,"count":..,"histogram":{"<lowerBound>":count}}.
	// The second result is false when no data exists.
	TestGetValueAsJSON(h Handle, ping string) (string, bool)

	// TestGetNumRecordedErrors returns the error counter for the kind and
	// ping.
	TestGetNumRecordedErrors(h Handle, kind ErrorKind, ping string) int32
}

// Dispatcher executes submitted tasks on a single consumer in strict
// submission order, across all producers and all metrics sharing it.
type Dispatcher interface {
	// Submit enqueues a task for ordered execution. It returns
	// immediately and never blocks the caller.
	Submit(task func())

	// DrainAndWait blocks until every task submitted before the call has
	// finished executing. It must not be called from within a task.
	DrainAndWait()
}
