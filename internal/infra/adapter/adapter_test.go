package adapter

import (
	"context"
	"testing"

	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/overhead"
)

type stubConnection struct{ closed bool }

func (c *stubConnection) ID() string { return "stub" }
func (c *stubConnection) Close() error {
	c.closed = true
	return nil
}

type stubAdapter struct{}

func (stubAdapter) ID() string                                      { return "stub" }
func (stubAdapter) DisplayName() string                             { return "Stub Adapter" }
func (stubAdapter) Version() string                                 { return "0.0.0" }
func (stubAdapter) Capabilities() []connection.Capability           { return nil }
func (stubAdapter) Connect(context.Context, connection.Config) (connection.Connection, error) {
	return &stubConnection{}, nil
}
func (s stubAdapter) Execute(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error) {
	b := overhead.New(overhead.Fields{})
	return operation.Success(op.ID, op.Kind, 0, &b), nil
}
func (s stubAdapter) ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error) {
	return BulkExecutor{Exec: s.Execute}.ExecuteBulk(ctx, conn, ops, accumulator)
}
func (stubAdapter) OverheadBreakdown(operation.Result) (overhead.Breakdown, bool) {
	return overhead.Breakdown{}, false
}
func (stubAdapter) SetupTestEnvironment(context.Context, connection.Connection, EnvironmentDescriptor) error {
	return nil
}
func (stubAdapter) TeardownTestEnvironment(context.Context, connection.Connection) error { return nil }
func (stubAdapter) ValidateConfig(context.Context, connection.Config) ValidationResult {
	return ValidationResult{Valid: true}
}
func (stubAdapter) Close() error { return nil }

func TestRegistryRegisterAndCreate(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func() (Adapter, error) { return stubAdapter{}, nil })

	a, err := r.Create("stub")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID() != "stub" {
		t.Errorf("ID() = %q, want stub", a.ID())
	}
}

func TestRegistryCreateUnknownIDErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("nope"); err == nil {
		t.Fatal("expected error for unregistered id")
	}
}

func TestRegistryAvailableListsRegisteredIDs(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func() (Adapter, error) { return stubAdapter{}, nil })
	r.Register("b", func() (Adapter, error) { return stubAdapter{}, nil })
	ids := r.Available()
	if len(ids) != 2 {
		t.Fatalf("Available() = %v, want 2 entries", ids)
	}
}

func TestBulkExecutorFansOutSequentially(t *testing.T) {
	s := stubAdapter{}
	ops := []operation.Operation{
		operation.Read("op-1", "doc-1", nil, ""),
		operation.Read("op-2", "doc-2", nil, ""),
	}
	result, err := s.ExecuteBulk(context.Background(), &stubConnection{}, ops, metrics.New())
	if err != nil {
		t.Fatalf("ExecuteBulk: %v", err)
	}
	if result.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", result.SuccessCount)
	}
}
