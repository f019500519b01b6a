// Package report provides the benchmark result aggregate: the
// BenchmarkResult/AdapterResult builder types an Orchestrator run emits.
// Implements: spec.md §4.8 (Result Aggregate)
//
// Construction is exclusively through builders, mirroring the teacher's
// execution.Run/BenchmarkResult "fill derived fields at finalize" idiom
// (CalculateDuration in internal/domain/execution/run.go) rather than
// exposing the struct literal directly.
package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/whhaicheng/docbench/internal/domain/config"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
)

// AdapterResult is one adapter's measurement outcome within a benchmark
// run: its identity, the summarized measurement accumulator, iteration
// counts, and the measurement-phase wall duration.
type AdapterResult struct {
	AdapterID         string
	AdapterDisplay    string
	Summary           metrics.MetricsSummary
	SuccessCount      int
	ErrorCount        int
	MeasurementWallNS time.Duration
}

// Iterations returns the total number of measurement iterations counted
// (successes plus errors).
func (r AdapterResult) Iterations() int {
	return r.SuccessCount + r.ErrorCount
}

// ErrorRate returns the fraction of iterations that failed, 0 if none ran.
func (r AdapterResult) ErrorRate() float64 {
	total := r.Iterations()
	if total == 0 {
		return 0
	}
	return float64(r.ErrorCount) / float64(total)
}

// String renders a one-line human-readable summary suitable for a log
// line.
func (r AdapterResult) String() string {
	return fmt.Sprintf("%s: %s iterations (%s errors) in %s",
		r.AdapterDisplay, humanize.Comma(int64(r.Iterations())), humanize.Comma(int64(r.ErrorCount)), r.MeasurementWallNS)
}

// AdapterResultBuilder constructs an AdapterResult incrementally as an
// Orchestrator run progresses through warmup/measurement.
type AdapterResultBuilder struct {
	result AdapterResult
}

// NewAdapterResultBuilder begins a builder for adapterID/display.
func NewAdapterResultBuilder(adapterID, adapterDisplay string) *AdapterResultBuilder {
	return &AdapterResultBuilder{result: AdapterResult{AdapterID: adapterID, AdapterDisplay: adapterDisplay}}
}

// WithSummary attaches the measurement-phase accumulator's summary.
func (b *AdapterResultBuilder) WithSummary(s metrics.MetricsSummary) *AdapterResultBuilder {
	b.result.Summary = s
	return b
}

// WithCounts sets the success/error iteration counts.
func (b *AdapterResultBuilder) WithCounts(success, errs int) *AdapterResultBuilder {
	b.result.SuccessCount = success
	b.result.ErrorCount = errs
	return b
}

// WithMeasurementWall sets the measurement-phase wall duration.
func (b *AdapterResultBuilder) WithMeasurementWall(d time.Duration) *AdapterResultBuilder {
	b.result.MeasurementWallNS = d
	return b
}

// Build finalizes the AdapterResult.
func (b *AdapterResultBuilder) Build() AdapterResult {
	return b.result
}

// BenchmarkResult is the top-level aggregate: the workload and
// configuration run, the time window it ran in, and every adapter's
// result keyed by adapter id.
type BenchmarkResult struct {
	WorkloadName string
	Config       config.WorkloadConfig
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	Adapters     map[string]AdapterResult
}

// SizeEstimate renders a human-readable byte estimate of the result's
// string form, for log lines summarizing a finished run.
func (r BenchmarkResult) SizeEstimate() string {
	return humanize.Bytes(uint64(len(fmt.Sprintf("%v", r))))
}

// BenchmarkResultBuilder constructs a BenchmarkResult. StartedAt/Config
// are set up front; AdapterResults accumulate via AddAdapterResult as
// each (adapter, workload) pair finishes; Build auto-fills CompletedAt
// and Duration if the caller never called Finish explicitly.
type BenchmarkResultBuilder struct {
	result   BenchmarkResult
	finished bool
}

// NewBenchmarkResultBuilder begins a builder for workloadName/cfg,
// stamping StartedAt as startedAt, supplied by the caller (RunMany passes
// its clock's reading taken before the first adapter runs) rather than
// read from time.Now, so callers stay testable.
func NewBenchmarkResultBuilder(workloadName string, cfg config.WorkloadConfig, startedAt time.Time) *BenchmarkResultBuilder {
	return &BenchmarkResultBuilder{
		result: BenchmarkResult{
			WorkloadName: workloadName,
			Config:       cfg,
			StartedAt:    startedAt,
			Adapters:     make(map[string]AdapterResult),
		},
	}
}

// AddAdapterResult records one adapter's finished result.
func (b *BenchmarkResultBuilder) AddAdapterResult(r AdapterResult) *BenchmarkResultBuilder {
	b.result.Adapters[r.AdapterID] = r
	return b
}

// Finish stamps an explicit completion instant and derives Duration from
// it; Build falls back to time.Now only when Finish was never called.
func (b *BenchmarkResultBuilder) Finish(completedAt time.Time) *BenchmarkResultBuilder {
	b.result.CompletedAt = completedAt
	b.result.Duration = completedAt.Sub(b.result.StartedAt)
	b.finished = true
	return b
}

// Build finalizes the BenchmarkResult. If Finish was never called, it
// first stamps CompletedAt with the current wall-clock time and derives
// Duration from it.
func (b *BenchmarkResultBuilder) Build() BenchmarkResult {
	if !b.finished {
		b.Finish(time.Now())
	}
	return b.result
}
