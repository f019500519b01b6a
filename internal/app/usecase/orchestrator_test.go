package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/docbench/internal/domain/clock"
	"github.com/whhaicheng/docbench/internal/domain/config"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/overhead"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// mockAdapter is a minimal in-memory adapter.Adapter test double, scoped
// to this package since adapter.Adapter has no exported test helper.
type mockAdapter struct {
	id           string
	capabilities []connection.Capability
	setupCalls   int
	teardownCalls int
}

func (m *mockAdapter) ID() string                                  { return m.id }
func (m *mockAdapter) DisplayName() string                         { return m.id }
func (m *mockAdapter) Version() string                             { return "0.0.0" }
func (m *mockAdapter) Capabilities() []connection.Capability       { return m.capabilities }

func (m *mockAdapter) Connect(context.Context, connection.Config) (connection.Connection, error) {
	return mockConn{}, nil
}

func (m *mockAdapter) SetupTestEnvironment(context.Context, connection.Connection, adapter.EnvironmentDescriptor) error {
	m.setupCalls++
	return nil
}

func (m *mockAdapter) TeardownTestEnvironment(context.Context, connection.Connection) error {
	m.teardownCalls++
	return nil
}

func (m *mockAdapter) ValidateConfig(context.Context, connection.Config) adapter.ValidationResult {
	return adapter.ValidationResult{Valid: true}
}

func (m *mockAdapter) Execute(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error) {
	b := overhead.New(overhead.Fields{TotalLatency: time.Microsecond})
	return operation.Success(op.ID, op.Kind, time.Microsecond, &b), nil
}

func (m *mockAdapter) ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error) {
	return adapter.BulkExecutor{Exec: m.Execute}.ExecuteBulk(ctx, conn, ops, accumulator)
}

func (m *mockAdapter) OverheadBreakdown(result operation.Result) (overhead.Breakdown, bool) {
	if result.Breakdown == nil {
		return overhead.Breakdown{}, false
	}
	return *result.Breakdown, true
}

func (m *mockAdapter) Close() error { return nil }

type mockConn struct{}

func (mockConn) ID() string   { return "mock-conn" }
func (mockConn) Close() error { return nil }

// mockWorkload counts RunIteration calls and drives the adapter's
// setup/teardown from SetupData/Cleanup, exercising Orchestrator.Run
// without any real document generator.
type mockWorkload struct {
	name          string
	required      []connection.Capability
	runCalls      int
	failEvery     int
	initErr       error
}

func (w *mockWorkload) Name() string                                             { return w.name }
func (w *mockWorkload) Description() string                                     { return "mock workload" }
func (w *mockWorkload) RequiredCapabilities() []connection.Capability           { return w.required }
func (w *mockWorkload) Initialize(config.WorkloadConfig) error                  { return w.initErr }
func (w *mockWorkload) SetupData(ctx context.Context, a adapter.Adapter) error {
	return a.SetupTestEnvironment(ctx, mockConn{}, adapter.EnvironmentDescriptor{CollectionName: w.name})
}

func (w *mockWorkload) Cleanup(ctx context.Context, a adapter.Adapter) error {
	return a.TeardownTestEnvironment(ctx, mockConn{})
}

func (w *mockWorkload) RunIteration(ctx context.Context, a adapter.Adapter, accumulator *metrics.Accumulator) error {
	w.runCalls++
	accumulator.Record(w.name, time.Microsecond)
	if w.failEvery > 0 && w.runCalls%w.failEvery == 0 {
		accumulator.IncrementCounter(w.name + "_error")
		return errIterationFailed
	}
	return nil
}

type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

const errIterationFailed = sentinelErr("mock: forced iteration failure")

func TestOrchestratorRunFullLifecycle(t *testing.T) {
	w := &mockWorkload{name: "traverse"}
	a := &mockAdapter{id: "sequentialscan", capabilities: []connection.Capability{connection.CapabilityPartialDocumentRetrieval}}
	cfg := config.NewWorkloadConfig("traverse").WithSeed(1)
	cfg.Iterations = 5
	cfg.WarmupIterations = 0

	o := New(clock.NewSystemClock())
	result, err := o.Run(context.Background(), w, a, cfg)
	require.NoError(t, err)

	require.Equal(t, 5, result.SuccessCount)
	require.Equal(t, 0, result.ErrorCount)
	require.Greater(t, result.MeasurementWallNS, time.Duration(0))
	require.Equal(t, 1, a.setupCalls)
	require.Equal(t, 1, a.teardownCalls)
	require.Contains(t, result.Summary.Histograms, "traverse")
	require.EqualValues(t, 5, result.Summary.Histograms["traverse"].Count)
}

func TestOrchestratorRunCountsFailedIterationsWithoutAborting(t *testing.T) {
	w := &mockWorkload{name: "traverse", failEvery: 2}
	a := &mockAdapter{id: "sequentialscan"}
	cfg := config.NewWorkloadConfig("traverse")
	cfg.Iterations = 6
	cfg.WarmupIterations = 0

	o := New(clock.NewMockClock(time.Now()))
	result, err := o.Run(context.Background(), w, a, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SuccessCount != 3 || result.ErrorCount != 3 {
		t.Fatalf("counts = %+v, want 3/3", result)
	}
	if w.runCalls != 6 {
		t.Errorf("runCalls = %d, want 6", w.runCalls)
	}
}

func TestOrchestratorRunRejectsInvalidConfig(t *testing.T) {
	w := &mockWorkload{name: "traverse"}
	a := &mockAdapter{id: "sequentialscan"}
	cfg := config.NewWorkloadConfig("traverse")
	cfg.Iterations = 0

	o := New(clock.NewSystemClock())
	if _, err := o.Run(context.Background(), w, a, cfg); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestOrchestratorRunRejectsMissingCapability(t *testing.T) {
	w := &mockWorkload{name: "traverse", required: []connection.Capability{connection.CapabilityIndexedTraversal}}
	a := &mockAdapter{id: "sequentialscan", capabilities: []connection.Capability{connection.CapabilityPartialDocumentRetrieval}}
	cfg := config.NewWorkloadConfig("traverse")

	o := New(clock.NewSystemClock())
	if _, err := o.Run(context.Background(), w, a, cfg); err == nil {
		t.Fatal("expected capability error")
	}
}

func TestOrchestratorRunManyRunsAdaptersSequentially(t *testing.T) {
	w := &mockWorkload{name: "traverse"}
	a1 := &mockAdapter{id: "sequentialscan"}
	a2 := &mockAdapter{id: "hashjump"}
	cfg := config.NewWorkloadConfig("traverse")
	cfg.Iterations = 3
	cfg.WarmupIterations = 0

	o := New(clock.NewSystemClock())
	result, errs := o.RunMany(context.Background(), w, []adapter.Adapter{a1, a2}, cfg)
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
	if len(result.Adapters) != 2 {
		t.Fatalf("Adapters = %v, want 2 entries", result.Adapters)
	}
	if result.Duration < 0 {
		t.Errorf("Duration = %v, want non-negative", result.Duration)
	}
}
