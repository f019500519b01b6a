// Package metrics provides the thread-safe histogram accumulator that
// backs the benchmark engine's measurement phase.
// Implements: spec.md §4.4, §5 (concurrency), §8 (boundary behaviors)
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/whhaicheng/docbench/internal/domain/overhead"
)

// MaxRecordableDuration is the histogram ceiling: values above it
// saturate to this value rather than overflowing the HDR bucket range.
// Per SPEC_FULL.md §9.1's Open Question decision, this is part of the public
// contract, not an internal implementation detail.
const MaxRecordableDuration = time.Hour

const significantDigits = 3

// conventional bucket names fed by RecordBreakdown, in protocol order
// plus the five derived metrics.
const (
	MetricTotalLatency          = "total_latency"
	MetricConnectionAcquisition = "connection_acquisition"
	MetricConnectionRelease     = "connection_release"
	MetricSerializationTime     = "serialization_time"
	MetricWireTransmitTime      = "wire_transmit_time"
	MetricServerExecutionTime   = "server_execution_time"
	MetricServerParseTime       = "server_parse_time"
	MetricServerTraversalTime   = "server_traversal_time"
	MetricServerIndexTime       = "server_index_time"
	MetricServerFetchTime       = "server_fetch_time"
	MetricWireReceiveTime       = "wire_receive_time"
	MetricDeserializationTime   = "deserialization_time"
	MetricClientTraversalTime   = "client_traversal_time"

	MetricTotalTraversal         = "total_traversal"
	MetricTotalOverhead          = "total_overhead"
	MetricNetworkOverhead        = "network_overhead"
	MetricSerializationOverhead  = "serialization_overhead"
	MetricConnectionOverhead     = "connection_overhead"
)

type histogramEntry struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func newHistogramEntry() *histogramEntry {
	return &histogramEntry{hist: hdrhistogram.New(1, MaxRecordableDuration.Nanoseconds(), significantDigits)}
}

func (e *histogramEntry) record(d time.Duration) {
	v := int64(d)
	if v < 0 {
		v = 0
	}
	if v > MaxRecordableDuration.Nanoseconds() {
		v = MaxRecordableDuration.Nanoseconds()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// RecordValue only fails for values outside the configured range,
	// which cannot happen after the clamp above.
	_ = e.hist.RecordValue(v)
}

func (e *histogramEntry) snapshot() *hdrhistogram.Histogram {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Export/Import round trip gives a deep, independent copy so the
	// summary computed from it is stable even as further records land.
	return hdrhistogram.Import(e.hist.Export())
}

// Accumulator is a thread-safe collection of named histograms and named
// counters. Many goroutines may call Record concurrently for the same or
// different metric names.
type Accumulator struct {
	mu         sync.RWMutex
	histograms map[string]*histogramEntry
	counters   map[string]*int64
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{
		histograms: make(map[string]*histogramEntry),
		counters:   make(map[string]*int64),
	}
}

func (a *Accumulator) entry(metric string) *histogramEntry {
	a.mu.RLock()
	e, ok := a.histograms[metric]
	a.mu.RUnlock()
	if ok {
		return e
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.histograms[metric]; ok {
		return e
	}
	e = newHistogramEntry()
	a.histograms[metric] = e
	return e
}

func (a *Accumulator) counter(name string) *int64 {
	a.mu.RLock()
	c, ok := a.counters[name]
	a.mu.RUnlock()
	if ok {
		return c
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.counters[name]; ok {
		return c
	}
	var v int64
	a.counters[name] = &v
	return &v
}

// Record appends one sample to the named histogram. Negative durations
// are coerced to zero; durations above MaxRecordableDuration saturate to
// it.
func (a *Accumulator) Record(metric string, d time.Duration) {
	a.entry(metric).record(d)
}

// RecordBreakdown dispatches each of the thirteen fixed components plus
// the five derived metrics into their conventionally named buckets, then
// folds the platform-specific map in verbatim.
func (a *Accumulator) RecordBreakdown(b overhead.Breakdown) {
	a.Record(MetricTotalLatency, b.TotalLatency())
	a.Record(MetricConnectionAcquisition, b.ConnectionAcquisition())
	a.Record(MetricConnectionRelease, b.ConnectionRelease())
	a.Record(MetricSerializationTime, b.SerializationTime())
	a.Record(MetricWireTransmitTime, b.WireTransmitTime())
	a.Record(MetricServerExecutionTime, b.ServerExecutionTime())
	a.Record(MetricServerParseTime, b.ServerParseTime())
	a.Record(MetricServerTraversalTime, b.ServerTraversalTime())
	a.Record(MetricServerIndexTime, b.ServerIndexTime())
	a.Record(MetricServerFetchTime, b.ServerFetchTime())
	a.Record(MetricWireReceiveTime, b.WireReceiveTime())
	a.Record(MetricDeserializationTime, b.DeserializationTime())
	a.Record(MetricClientTraversalTime, b.ClientTraversalTime())

	a.Record(MetricTotalTraversal, b.TraversalOverhead())
	a.Record(MetricTotalOverhead, b.TotalOverhead())
	a.Record(MetricNetworkOverhead, b.NetworkOverhead())
	a.Record(MetricSerializationOverhead, b.SerializationOverhead())
	a.Record(MetricConnectionOverhead, b.ConnectionOverhead())

	for name, d := range b.PlatformSpecific() {
		a.Record(name, d)
	}
}

// TimeOperation times a synchronous closure and records its duration to
// metric, returning the closure's result.
func TimeOperation[T any](a *Accumulator, metric string, fn func() T) T {
	start := time.Now()
	v := fn()
	a.Record(metric, time.Since(start))
	return v
}

// IncrementCounter adds 1 to the named counter.
func (a *Accumulator) IncrementCounter(name string) {
	a.AddCounter(name, 1)
}

// AddCounter adds value to the named counter.
func (a *Accumulator) AddCounter(name string, value int64) {
	atomic.AddInt64(a.counter(name), value)
}

// Counter returns the current value of the named counter, or 0 if it has
// never been incremented.
func (a *Accumulator) Counter(name string) int64 {
	a.mu.RLock()
	c, ok := a.counters[name]
	a.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(c)
}

// Reset drops all histogram and counter state. Reset is allowed to
// interleave with concurrent Record calls; the only guarantee is that
// state recorded strictly after Reset returns is never missing from a
// summary produced strictly after Reset returns.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.histograms = make(map[string]*histogramEntry)
	a.counters = make(map[string]*int64)
}

// Summarize produces a point-in-time MetricsSummary. Summarize is
// consistent with some serialization of the recording operations but may
// observe late-arriving records (weak snapshot).
func (a *Accumulator) Summarize() MetricsSummary {
	a.mu.RLock()
	histNames := make([]string, 0, len(a.histograms))
	entries := make([]*histogramEntry, 0, len(a.histograms))
	for name, e := range a.histograms {
		histNames = append(histNames, name)
		entries = append(entries, e)
	}
	counterNames := make([]string, 0, len(a.counters))
	counterPtrs := make([]*int64, 0, len(a.counters))
	for name, c := range a.counters {
		counterNames = append(counterNames, name)
		counterPtrs = append(counterPtrs, c)
	}
	a.mu.RUnlock()

	summary := MetricsSummary{
		Histograms: make(map[string]HistogramSummary, len(histNames)),
		Counters:   make(map[string]int64, len(counterNames)),
	}
	for i, name := range histNames {
		summary.Histograms[name] = summarizeHistogram(entries[i].snapshot())
	}
	for i, name := range counterNames {
		summary.Counters[name] = atomic.LoadInt64(counterPtrs[i])
	}
	return summary
}
