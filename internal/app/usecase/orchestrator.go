// Package usecase provides the Benchmark Orchestrator: the engine's
// single entry point for driving one (workload, adapter, config) triple
// end to end.
// Implements: spec.md §4.7 (Benchmark Orchestrator)
//
// Directly generalizes the teacher's BenchmarkUseCase/StartBenchmark:
// same prepare -> warmup -> run -> cleanup staging, same log/slog calls
// at phase boundaries, same sync.RWMutex-guarded shared state for the
// handful of fields an in-flight run needs to publish externally. The
// teacher's process-spawning exec.Cmd staging is replaced by direct
// adapter.Adapter calls, since DocBench adapters are in-process Go
// values rather than external tool binaries.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/whhaicheng/docbench/internal/domain/bencherr"
	"github.com/whhaicheng/docbench/internal/domain/clock"
	"github.com/whhaicheng/docbench/internal/domain/config"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/report"
	"github.com/whhaicheng/docbench/internal/domain/workload"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// Orchestrator drives workload/adapter/config triples. A single
// Orchestrator value may run many triples sequentially; it holds no
// per-run state of its own beyond the clock it was built with and the
// progress snapshot of whichever run is currently in flight.
type Orchestrator struct {
	clk clock.Clock

	progressMu sync.RWMutex
	progress   Progress
}

// Progress is a point-in-time snapshot of an in-flight run, safe to read
// concurrently with Run via Orchestrator.Progress.
type Progress struct {
	WorkloadName string
	AdapterID    string
	Phase        string
	Completed    int
	Total        int
}

// New returns an Orchestrator using clk for all timing. Production
// callers pass clock.NewSystemClock(); tests pass a clock.MockClock.
func New(clk clock.Clock) *Orchestrator {
	return &Orchestrator{clk: clk}
}

// Progress returns a snapshot of the run currently in flight, or the
// zero value if none is running.
func (o *Orchestrator) Progress() Progress {
	o.progressMu.RLock()
	defer o.progressMu.RUnlock()
	return o.progress
}

func (o *Orchestrator) setProgress(p Progress) {
	o.progressMu.Lock()
	o.progress = p
	o.progressMu.Unlock()
}

// Run executes the seven-step sequence of spec.md §4.7 for one
// (w, a, cfg) triple and returns the resulting AdapterResult.
//
// Fatal errors (configuration, capability, connection, setup) abort the
// run and are returned directly; per-iteration operation errors are
// logged (and, during measurement, counted), never aborting the run.
// Validate diagnostics prefixed "warning: " are logged and do not abort.
func (o *Orchestrator) Run(ctx context.Context, w workload.Workload, a adapter.Adapter, cfg config.WorkloadConfig) (*report.AdapterResult, error) {
	var fatal []string
	for _, d := range cfg.Validate() {
		if strings.HasPrefix(d, "warning: ") {
			slog.Warn("orchestrator: configuration warning", "workload", w.Name(), "adapter", a.ID(), "warning", d)
			continue
		}
		fatal = append(fatal, d)
	}
	if len(fatal) > 0 {
		return nil, bencherr.NewConfigurationError(cfg.Name, fatal)
	}
	if missing := missingCapabilities(w, a); len(missing) > 0 {
		return nil, bencherr.NewCapabilityError(a.ID(), w.Name(), missing)
	}

	runID := uuid.NewString()
	slog.Info("orchestrator: initializing workload", "run_id", runID, "workload", w.Name(), "adapter", a.ID())
	if err := w.Initialize(cfg); err != nil {
		return nil, bencherr.NewConfigurationError(cfg.Name, []string{err.Error()})
	}

	o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "setup"})
	setupStart := o.clk.Start()
	if err := w.SetupData(ctx, a); err != nil {
		slog.Error("orchestrator: setup failed", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "error", err)
		return nil, err
	}
	slog.Info("orchestrator: setup complete", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "elapsed", setupStart.Stop())

	warmupAcc := metrics.New()
	o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "warmup", Total: cfg.WarmupIterations})
	for i := 0; i < cfg.WarmupIterations; i++ {
		if err := w.RunIteration(ctx, a, warmupAcc); err != nil {
			slog.Warn("orchestrator: warmup iteration failed", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "iteration", i, "error", err)
		}
		o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "warmup", Completed: i + 1, Total: cfg.WarmupIterations})
	}
	slog.Info("orchestrator: warmup complete", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "iterations", cfg.WarmupIterations)

	measureAcc := metrics.New()
	o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "measurement", Total: cfg.Iterations})
	successCount, errorCount := 0, 0
	measureStart := o.clk.Start()
	for i := 0; i < cfg.Iterations; i++ {
		if err := w.RunIteration(ctx, a, measureAcc); err != nil {
			slog.Warn("orchestrator: measurement iteration failed", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "iteration", i, "error", err)
			errorCount++
		} else {
			successCount++
		}
		o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "measurement", Completed: i + 1, Total: cfg.Iterations})
	}
	measureWall := measureStart.Stop()
	slog.Info("orchestrator: measurement complete", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "success", successCount, "errors", errorCount, "wall", measureWall)

	o.setProgress(Progress{WorkloadName: w.Name(), AdapterID: a.ID(), Phase: "cleanup"})
	if err := w.Cleanup(ctx, a); err != nil {
		slog.Warn("orchestrator: cleanup reported an error, run result still valid", "run_id", runID, "workload", w.Name(), "adapter", a.ID(), "error", err)
	}

	result := report.NewAdapterResultBuilder(a.ID(), a.DisplayName()).
		WithSummary(measureAcc.Summarize()).
		WithCounts(successCount, errorCount).
		WithMeasurementWall(measureWall).
		Build()
	o.setProgress(Progress{})
	return &result, nil
}

// RunMany executes w against every adapter in adapters in sequence,
// never concurrently, per spec.md §4.7 ("running two adapters for one
// workload is a sequential outer loop; this preserves timing fidelity
// by avoiding cross-adapter cache and scheduling interference"). A
// single adapter's fatal error is recorded in the returned error map,
// keyed by adapter id, and that adapter is left out of the returned
// BenchmarkResult; the remaining adapters still run. The caller
// distinguishes partial failure by comparing len(errs) against
// len(adapters).
func (o *Orchestrator) RunMany(ctx context.Context, w workload.Workload, adapters []adapter.Adapter, cfg config.WorkloadConfig) (report.BenchmarkResult, map[string]error) {
	builder := report.NewBenchmarkResultBuilder(w.Name(), cfg, o.clk.Now())
	errs := make(map[string]error)

	for _, a := range adapters {
		// Run calls w.Initialize(cfg) again on every pass, which resets
		// all of the workload's per-execution state, so the same
		// instance is safe to reuse across adapters.
		result, err := o.Run(ctx, w, a, cfg)
		if err != nil {
			errs[a.ID()] = err
			continue
		}
		builder.AddAdapterResult(*result)
	}

	builder.Finish(o.clk.Now())
	return builder.Build(), errs
}

func missingCapabilities(w workload.Workload, a adapter.Adapter) []string {
	required := w.RequiredCapabilities()
	if len(required) == 0 {
		return nil
	}
	have := make(map[connection.Capability]bool, len(a.Capabilities()))
	for _, c := range a.Capabilities() {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, string(c))
		}
	}
	return missing
}
