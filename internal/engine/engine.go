// Package engine implements the in-memory storage engine behind the
// timing.Engine contract: histogram aggregation, error counters, and the
// JSON-encoded test read path.
package engine

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"github.com/wesleyorama2/beacon/timing"
)

// Config contains the histogram parameters applied to every metric.
// Values are expressed in the metric's own time unit.
type Config struct {
	// HistogramMin is the lowest trackable value (default: 1)
	HistogramMin int64

	// HistogramMax is the highest trackable value (default: 3600000000)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultConfig returns the default histogram configuration.
func DefaultConfig() Config {
	return Config{
		HistogramMin:     1,
		HistogramMax:     3600000000,
		HistogramSigFigs: 3,
	}
}

// Engine aggregates timing-distribution values using HDR histograms.
//
// One histogram and one exact running sum are kept per (metric, ping).
// The histogram answers bucketed reads; the sum is tracked separately
// because HDR buckets are approximate and the test contract promises the
// exact total. Error counters are keyed by (kind, ping) per metric.
//
// Safe for concurrent use. SetStart arrives from arbitrary producer
// goroutines; the remaining recording calls arrive serialized on the
// dispatcher's consumer.
type Engine struct {
	log *zap.Logger
	cfg Config

	mu         sync.Mutex
	nextHandle timing.Handle
	metrics    map[timing.Handle]*metric
}

type errorKey struct {
	kind timing.ErrorKind
	ping string
}

// metric is one registered metric's engine-side state.
type metric struct {
	meta   timing.CommonMetricData
	timers *timerTable
	stores map[string]*distStore
	errors map[errorKey]int32
}

// distStore is the per-ping aggregation state.
type distStore struct {
	hist *hdrhistogram.Histogram
	sum  int64
}

// testPayload is the wire shape of TestGetValueAsJSON.
type testPayload struct {
	Sum       int64            `json:"sum"`
	Count     int64            `json:"count"`
	Histogram map[string]int64 `json:"histogram"`
}

// New creates an engine with the default configuration. A nil logger
// disables logging.
func New(log *zap.Logger) *Engine {
	return NewWithConfig(log, DefaultConfig())
}

// NewWithConfig creates an engine with custom histogram parameters.
func NewWithConfig(log *zap.Logger, cfg Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.HistogramMin <= 0 {
		cfg.HistogramMin = def.HistogramMin
	}
	if cfg.HistogramMax <= cfg.HistogramMin {
		cfg.HistogramMax = def.HistogramMax
	}
	if cfg.HistogramSigFigs < 1 || cfg.HistogramSigFigs > 5 {
		cfg.HistogramSigFigs = def.HistogramSigFigs
	}
	return &Engine{
		log:     log,
		cfg:     cfg,
		metrics: make(map[timing.Handle]*metric),
	}
}

// CreateMetric registers a metric and returns its handle. A definition
// with no category, no name, or no pings cannot be registered and yields
// NoHandle; callers treat that as a disabled metric.
func (e *Engine) CreateMetric(meta timing.CommonMetricData) timing.Handle {
	if meta.Category == "" || meta.Name == "" || len(meta.SendInPings) == 0 {
		e.log.Warn("rejecting metric registration",
			zap.String("metric", meta.Identifier()),
			zap.Strings("pings", meta.SendInPings))
		return timing.NoHandle
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextHandle++
	handle := e.nextHandle

	stores := make(map[string]*distStore, len(meta.SendInPings))
	for _, ping := range meta.SendInPings {
		stores[ping] = &distStore{
			hist: hdrhistogram.New(e.cfg.HistogramMin, e.cfg.HistogramMax, e.cfg.HistogramSigFigs),
		}
	}

	e.metrics[handle] = &metric{
		meta:   meta,
		timers: newTimerTable(),
		stores: stores,
		errors: make(map[errorKey]int32),
	}
	return handle
}

// DestroyMetric releases a handle and all its state. Idempotent.
func (e *Engine) DestroyMetric(h timing.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.metrics, h)
}

// lookup returns the live, enabled metric for a handle. Disabled metrics
// are registered but never record.
func (e *Engine) lookup(h timing.Handle) *metric {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[h]
	if !ok || m.meta.Disabled {
		return nil
	}
	return m
}

// SetStart begins a timer at startNanos and returns its ID, or zero when
// the handle is unknown or the metric is disabled.
func (e *Engine) SetStart(h timing.Handle, startNanos int64) timing.TimerID {
	m := e.lookup(h)
	if m == nil {
		return 0
	}
	return m.timers.begin(startNanos)
}

// SetStopAndAccumulate commits the interval for a running timer into
// every ping the metric reports to.
//
// An unknown or already-consumed timer records invalid_state; a stop
// timestamp before the start records invalid_value. Neither produces a
// value, and neither is visible to the producer.
func (e *Engine) SetStopAndAccumulate(h timing.Handle, id timing.TimerID, stopNanos int64) {
	m := e.lookup(h)
	if m == nil {
		return
	}

	startNanos, ok := m.timers.consumeForCommit(id)
	if !ok {
		e.mu.Lock()
		m.recordError(timing.ErrorInvalidState)
		e.mu.Unlock()
		e.log.Debug("timer stopped without a running start",
			zap.String("metric", m.meta.Identifier()),
			zap.Uint64("timer", uint64(id)))
		return
	}

	elapsed := stopNanos - startNanos
	if elapsed < 0 {
		e.mu.Lock()
		m.recordError(timing.ErrorInvalidValue)
		e.mu.Unlock()
		e.log.Debug("timer stopped before it started",
			zap.String("metric", m.meta.Identifier()),
			zap.Int64("elapsed_nanos", elapsed))
		return
	}

	sample := m.meta.TimeUnit.FromNanos(elapsed)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, store := range m.stores {
		store.sum += sample
		store.hist.RecordValue(e.clamp(sample))
	}
}

// Cancel discards a running timer. Unknown and already-consumed timers
// are ignored.
func (e *Engine) Cancel(h timing.Handle, id timing.TimerID) {
	m := e.lookup(h)
	if m == nil {
		return
	}
	m.timers.consumeForDiscard(id)
}

// TestHasValue reports whether the metric stored at least one value in
// the ping.
func (e *Engine) TestHasValue(h timing.Handle, ping string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[h]
	if !ok {
		return false
	}
	store, ok := m.stores[ping]
	return ok && store.hist.TotalCount() > 0
}

// TestGetValueAsJSON encodes the stored distribution for the ping as
// {"sum":..,"count":..,"histogram":{"<lowerBound>":count}}. The second
// result is false when no data exists.
func (e *Engine) TestGetValueAsJSON(h timing.Handle, ping string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[h]
	if !ok {
		return "", false
	}
	store, ok := m.stores[ping]
	if !ok || store.hist.TotalCount() == 0 {
		return "", false
	}

	payload := testPayload{
		Sum:       store.sum,
		Count:     store.hist.TotalCount(),
		Histogram: make(map[string]int64),
	}
	for _, bar := range store.hist.Distribution() {
		if bar.Count > 0 {
			payload.Histogram[strconv.FormatInt(bar.From, 10)] += bar.Count
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		e.log.Warn("failed to encode distribution",
			zap.String("metric", m.meta.Identifier()),
			zap.Error(err))
		return "", false
	}
	return string(encoded), true
}

// TestGetNumRecordedErrors returns the error counter for the kind and
// ping.
func (e *Engine) TestGetNumRecordedErrors(h timing.Handle, kind timing.ErrorKind, ping string) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.metrics[h]
	if !ok {
		return 0
	}
	return m.errors[errorKey{kind: kind, ping: ping}]
}

// Reset clears every metric's recorded values, running timers, and error
// counters while keeping the metrics registered. Test hook.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range e.metrics {
		m.timers.reset()
		for _, store := range m.stores {
			store.hist.Reset()
			store.sum = 0
		}
		m.errors = make(map[errorKey]int32)
	}
}

// clamp bounds a sample to the histogram's trackable range. The exact
// sum is unaffected; only the bucketed view saturates.
func (e *Engine) clamp(sample int64) int64 {
	if sample < e.cfg.HistogramMin {
		return e.cfg.HistogramMin
	}
	if sample > e.cfg.HistogramMax {
		return e.cfg.HistogramMax
	}
	return sample
}

// recordError increments the counter for every ping the metric reports
// to. Caller holds e.mu.
func (m *metric) recordError(kind timing.ErrorKind) {
	for _, ping := range m.meta.SendInPings {
		m.errors[errorKey{kind: kind, ping: ping}]++
	}
}
