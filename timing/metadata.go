package timing

import (
	"fmt"
)

// TimeUnit is the unit a recorded duration is normalized to before it is
// committed to the engine. Sums returned by test accessors are expressed in
// this unit.
type TimeUnit int

const (
	Nanosecond TimeUnit = iota
	Microsecond
	Millisecond
	Second
	Minute
	Hour
)

var timeUnitNames = map[TimeUnit]string{
	Nanosecond:  "nanosecond",
	Microsecond: "microsecond",
	Millisecond: "millisecond",
	Second:      "second",
	Minute:      "minute",
	Hour:        "hour",
}

func (u TimeUnit) String() string {
	if name, ok := timeUnitNames[u]; ok {
		return name
	}
	return "unknown"
}

// FromNanos converts a nanosecond duration to this unit, truncating toward
// zero.
func (u TimeUnit) FromNanos(ns int64) int64 {
	switch u {
	case Nanosecond:
		return ns
	case Microsecond:
		return ns / 1e3
	case Millisecond:
		return ns / 1e6
	case Second:
		return ns / 1e9
	case Minute:
		return ns / (60 * 1e9)
	case Hour:
		return ns / (3600 * 1e9)
	default:
		return ns
	}
}

// ParseTimeUnit converts a registry-file unit name to a TimeUnit.
func ParseTimeUnit(s string) (TimeUnit, error) {
	for unit, name := range timeUnitNames {
		if name == s {
			return unit, nil
		}
	}
	return Nanosecond, fmt.Errorf("unknown time unit %q", s)
}

// Lifetime is the engine-defined persistence scope of a metric's recorded
// values. It is opaque to this package and passed through to the engine.
type Lifetime int

const (
	LifetimePing Lifetime = iota
	LifetimeApplication
	LifetimeUser
)

var lifetimeNames = map[Lifetime]string{
	LifetimePing:        "ping",
	LifetimeApplication: "application",
	LifetimeUser:        "user",
}

func (l Lifetime) String() string {
	if name, ok := lifetimeNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLifetime converts a registry-file lifetime name to a Lifetime.
func ParseLifetime(s string) (Lifetime, error) {
	for lifetime, name := range lifetimeNames {
		if name == s {
			return lifetime, nil
		}
	}
	return LifetimePing, fmt.Errorf("unknown lifetime %q", s)
}

// ErrorKind is a categorized instrumentation error tracked by the engine as
// a counter per (metric, kind, ping).
type ErrorKind string

const (
	// ErrorInvalidState is recorded when a timer is stopped without a
	// matching running start, or stopped a second time.
	ErrorInvalidState ErrorKind = "invalid_state"

	// ErrorInvalidValue is recorded when a measured interval is not
	// representable, e.g. the stop timestamp precedes the start timestamp.
	ErrorInvalidValue ErrorKind = "invalid_value"
)

// CommonMetricData describes a metric instance. All fields are fixed for
// the lifetime of the metric.
type CommonMetricData struct {
	// Category groups related metrics, e.g. "app".
	Category string

	// Name identifies the metric within its category, e.g. "startup_time".
	Name string

	// SendInPings lists the pings this metric's values are reported in.
	// The first entry is the default ping for test accessors.
	SendInPings []string

	// Lifetime is the persistence scope applied by the engine.
	Lifetime Lifetime

	// Disabled metrics never record state or emit values.
	Disabled bool

	// TimeUnit is the unit recorded durations are normalized to.
	TimeUnit TimeUnit
}

// Identifier returns the canonical "category.name" form of the metric.
func (m CommonMetricData) Identifier() string {
	if m.Category == "" {
		return m.Name
	}
	return m.Category + "." + m.Name
}

// defaultPing resolves an accessor's ping argument: empty means the first
// configured ping.
func (m CommonMetricData) defaultPing(ping string) string {
	if ping != "" {
		return ping
	}
	if len(m.SendInPings) > 0 {
		return m.SendInPings[0]
	}
	return ""
}
