// Package clock provides monotonic timing sources for the benchmark engine.
// Implements: spec.md §4.1
package clock

import (
	"sync"
	"time"
)

// Clock exposes monotonic nanosecond reads and wall-clock instants. No
// global state - the clock is passed in by the caller.
type Clock interface {
	// Now returns the current wall-clock instant.
	Now() time.Time
	// MonotonicNanos returns a monotonic nanosecond counter. Only
	// differences between two calls are meaningful.
	MonotonicNanos() int64
	// Elapsed returns the duration between startNanos (a prior
	// MonotonicNanos() reading) and the current monotonic reading.
	Elapsed(startNanos int64) time.Duration
	// Start begins a TimingContext.
	Start() *TimingContext
}

// TimingContext remembers the nanosecond sample a timed section started
// at. Stop is idempotent: repeated calls return the first measured
// duration even if the clock has advanced since.
type TimingContext struct {
	clock      Clock
	startNanos int64
	once       sync.Once
	duration   time.Duration
}

// Stop returns the elapsed duration since the context was started. The
// first call measures against the current clock reading; every
// subsequent call returns that same value.
func (t *TimingContext) Stop() time.Duration {
	t.once.Do(func() {
		t.duration = t.clock.Elapsed(t.startNanos)
	})
	return t.duration
}

// SystemClock is the production Clock backed by time.Now's monotonic
// reading.
type SystemClock struct{}

// NewSystemClock returns a SystemClock.
func NewSystemClock() *SystemClock { return &SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) MonotonicNanos() int64 {
	// time.Now() carries a monotonic reading; Sub against the zero-value
	// wall-clock instant would discard it, so the nanosecond counter is
	// derived by diffing against a fixed epoch read once.
	return monotonicEpoch.add(time.Now())
}

func (SystemClock) Elapsed(startNanos int64) time.Duration {
	now := monotonicEpoch.add(time.Now())
	d := now - startNanos
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

func (c SystemClock) Start() *TimingContext {
	return &TimingContext{clock: c, startNanos: c.MonotonicNanos()}
}

// monotonicAnchor anchors SystemClock's nanosecond counter to the process's
// monotonic clock reading taken at package init, so MonotonicNanos values
// stay small and diffable without ever dereferencing wall-clock bugs
// (NTP steps, DST) the way time.Now().UnixNano() would.
type monotonicAnchor struct {
	base time.Time
}

func (a monotonicAnchor) add(t time.Time) int64 {
	return int64(t.Sub(a.base))
}

var monotonicEpoch = monotonicAnchor{base: time.Now()}
