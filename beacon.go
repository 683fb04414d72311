// Package beacon wires the telemetry runtime: one storage engine and one
// ordered dispatcher per process, shared by every metric instance.
//
// Typical use:
//
//	rt := beacon.New()
//	defer rt.Close()
//
//	startup := rt.NewTimingDistribution(timing.CommonMetricData{
//		Category:    "app",
//		Name:        "startup_time",
//		SendInPings: []string{"metrics"},
//		TimeUnit:    timing.Millisecond,
//	})
//
//	id := startup.Start()
//	// ... work ...
//	startup.StopAndAccumulate(id)
package beacon

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wesleyorama2/beacon/internal/dispatch"
	"github.com/wesleyorama2/beacon/internal/engine"
	"github.com/wesleyorama2/beacon/timing"
)

// Runtime owns the storage engine and the dispatcher. All metrics created
// from one Runtime share the dispatcher's single consumer, which gives
// their commits one global order; test accessors rely on that.
type Runtime struct {
	log    *zap.Logger
	engine *engine.Engine
	queue  *dispatch.Queue

	mu      sync.Mutex
	metrics []*timing.Distribution

	closeOnce sync.Once
}

// Option configures a Runtime.
type Option func(*settings)

type settings struct {
	log       *zap.Logger
	engineCfg engine.Config
}

// WithLogger sets the structured logger used by the runtime, the engine,
// and the dispatcher. The default is a no-op logger; instrumentation must
// stay silent unless the host application opts in.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithHistogramRange overrides the engine's histogram parameters: the
// lowest and highest trackable value (in each metric's own time unit) and
// the number of significant figures.
func WithHistogramRange(min, max int64, sigFigs int) Option {
	return func(s *settings) {
		s.engineCfg.HistogramMin = min
		s.engineCfg.HistogramMax = max
		s.engineCfg.HistogramSigFigs = sigFigs
	}
}

// New creates a runtime with its engine and dispatcher. Close releases
// both.
func New(opts ...Option) *Runtime {
	s := settings{
		log:       zap.NewNop(),
		engineCfg: engine.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Runtime{
		log:    s.log,
		engine: engine.NewWithConfig(s.log, s.engineCfg),
		queue:  dispatch.New(s.log),
	}
}

// NewTimingDistribution registers a timing-distribution metric and
// returns its facade. The metric shares the runtime's engine and
// dispatcher; it is released by Runtime.Close, or earlier by its own
// Close.
func (r *Runtime) NewTimingDistribution(meta timing.CommonMetricData) *timing.Distribution {
	d := timing.New(r.engine, r.queue, meta)

	r.mu.Lock()
	r.metrics = append(r.metrics, d)
	r.mu.Unlock()

	r.log.Debug("registered timing distribution",
		zap.String("metric", meta.Identifier()),
		zap.Bool("disabled", meta.Disabled))
	return d
}

// Close drains the dispatcher, releases every metric handle, and stops
// the consumer goroutine. Idempotent.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		r.queue.DrainAndWait()

		r.mu.Lock()
		metrics := r.metrics
		r.metrics = nil
		r.mu.Unlock()

		for _, d := range metrics {
			d.Close()
		}
		r.queue.Shutdown()
	})
}
