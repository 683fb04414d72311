// Package timing implements the timing-distribution metric type: a
// histogram-backed telemetry metric that records how long operations take.
//
// The package provides:
// - Precise, synchronous timestamp capture on the calling goroutine
// - Correlation of independent concurrent timings via opaque timer IDs
// - Asynchronous, strictly ordered commit/discard against a storage engine
// - Deterministic, drain-based test accessors for verification
//
// A Distribution is safe for concurrent use from arbitrary goroutines.
// Recording calls (Start, StopAndAccumulate, Cancel, Measure) never block
// on the storage engine and never fail visibly; anomalies are turned into
// engine-side error counters. Only the Test* accessors block, and only
// until the dispatcher has executed every previously submitted operation.
package timing
