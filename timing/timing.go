package timing

import (
	"fmt"
	"sync"
)

// Distribution is a timing-distribution metric instance.
//
// Producers time operations with Start/StopAndAccumulate (or Cancel to
// abandon a timing). Timestamps are captured synchronously on the calling
// goroutine so queueing never delays them; the commit itself is submitted
// to the shared dispatcher and applied later, in strict submission order.
//
// A nil *TimerID is the "nothing to do" value: Start returns nil for a
// disabled or unallocated metric, and StopAndAccumulate/Cancel accept nil
// as a silent no-op, so callers never need to branch on the metric's
// state.
type Distribution struct {
	meta       CommonMetricData
	engine     Engine
	dispatcher Dispatcher
	handle     Handle

	releaseOnce sync.Once
}

// New registers a metric with the engine and returns its facade. The
// dispatcher is shared: every metric of a runtime submits to the same
// queue, which is what gives commits a single global order.
//
// If the engine cannot allocate the metric, the returned Distribution is
// still valid; every operation on it behaves as if the metric were
// disabled.
func New(engine Engine, dispatcher Dispatcher, meta CommonMetricData) *Distribution {
	d := &Distribution{
		meta:       meta,
		engine:     engine,
		dispatcher: dispatcher,
	}
	if engine != nil && dispatcher != nil {
		d.handle = engine.CreateMetric(meta)
	}
	return d
}

// Metadata returns the metric's immutable definition.
func (d *Distribution) Metadata() CommonMetricData {
	return d.meta
}

// active reports whether recording operations should do anything at all.
func (d *Distribution) active() bool {
	return !d.meta.Disabled && d.handle != NoHandle
}

// Start begins a new timing and returns its timer ID. The start timestamp
// is captured synchronously, before this call returns.
//
// Returns nil when the metric is disabled or was never allocated; passing
// that nil on to StopAndAccumulate or Cancel is a no-op.
func (d *Distribution) Start() *TimerID {
	if !d.active() {
		return nil
	}
	id := d.engine.SetStart(d.handle, nowNanos())
	if id == 0 {
		return nil
	}
	return &id
}

// StopAndAccumulate stops the timer and commits the elapsed interval. The
// stop timestamp is captured synchronously; the commit is applied later by
// the dispatcher's consumer.
//
// A nil id, a disabled metric, or an unallocated handle is a silent no-op.
// Stopping a timer that was never started or already consumed records an
// ErrorInvalidState counter increment in the engine instead of a value;
// it never fails visibly.
func (d *Distribution) StopAndAccumulate(id *TimerID) {
	if id == nil || !d.active() {
		return
	}
	stop := nowNanos()
	timer := *id
	d.dispatcher.Submit(func() {
		d.engine.SetStopAndAccumulate(d.handle, timer, stop)
	})
}

// Cancel stops the timer and discards the interval. No value is emitted
// and no error is recorded, even if the timer was already consumed, so
// defensive cancellation is always safe.
func (d *Distribution) Cancel(id *TimerID) {
	if id == nil || !d.active() {
		return
	}
	timer := *id
	d.dispatcher.Submit(func() {
		d.engine.Cancel(d.handle, timer)
	})
}

// Close releases the metric's engine handle. It is idempotent, and safe
// to call on a metric whose handle was never allocated. Recording calls
// made after Close are ignored by the engine.
func (d *Distribution) Close() {
	d.releaseOnce.Do(func() {
		if d.handle != NoHandle {
			d.engine.DestroyMetric(d.handle)
		}
	})
}

// TestHasValue reports whether any value is stored for the ping (empty
// string: the first configured ping). It drains the dispatcher first, so
// the answer reflects every recording call made before it.
func (d *Distribution) TestHasValue(ping string) bool {
	if d.engine == nil || d.dispatcher == nil {
		return false
	}
	d.dispatcher.DrainAndWait()
	return d.engine.TestHasValue(d.handle, d.meta.defaultPing(ping))
}

// TestGetValue returns the stored distribution for the ping (empty
// string: the first configured ping). It drains the dispatcher first.
// Returns ErrNoValue if nothing was recorded.
func (d *Distribution) TestGetValue(ping string) (DistributionData, error) {
	resolved := d.meta.defaultPing(ping)
	if d.engine == nil || d.dispatcher == nil {
		return DistributionData{}, fmt.Errorf("%w for %s in ping %q", ErrNoValue, d.meta.Identifier(), resolved)
	}
	d.dispatcher.DrainAndWait()
	payload, ok := d.engine.TestGetValueAsJSON(d.handle, resolved)
	if !ok {
		return DistributionData{}, fmt.Errorf("%w for %s in ping %q", ErrNoValue, d.meta.Identifier(), resolved)
	}
	return parseDistribution(payload), nil
}

// TestGetNumRecordedErrors returns how many errors of the given kind were
// recorded for the ping (empty string: the first configured ping). It
// drains the dispatcher first.
func (d *Distribution) TestGetNumRecordedErrors(kind ErrorKind, ping string) int32 {
	if d.engine == nil || d.dispatcher == nil {
		return 0
	}
	d.dispatcher.DrainAndWait()
	return d.engine.TestGetNumRecordedErrors(d.handle, kind, d.meta.defaultPing(ping))
}
