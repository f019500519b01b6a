// Package adapter provides the benchmark adapter interface and registry.
// Implements: spec.md §4.2 (Adapter interface), §6 (adapter plugin contract)
package adapter

import (
	"context"

	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/overhead"
)

// IndexDefinition describes one index an adapter may build during
// SetupTestEnvironment. Order matters: indexes are built in list order,
// matching spec.md §3's "ordered list of index definitions".
type IndexDefinition struct {
	Name   string
	Fields []string
	Unique bool
}

// EnvironmentDescriptor describes the collection/table, indexes, and
// platform-specific options an adapter should prepare in
// SetupTestEnvironment - spec.md §3 ("Test-environment descriptor").
// Adapters are free to ignore fields that don't apply to their storage
// model (e.g. a field-level index request against an opaque blob
// column); doing so is a documented no-op, not an error.
type EnvironmentDescriptor struct {
	CollectionName string
	ExpectedDocs   int
	Indexes        []IndexDefinition
	// DropExisting, when true, instructs the adapter to drop any
	// collection/table left over from a prior run before creating it.
	DropExisting bool
	// PlatformOptions is an open-ended adapter-specific option map, e.g.
	// storage engine or sharding hints a particular adapter understands.
	PlatformOptions map[string]string
}

// ValidationResult is the outcome of an optional pre-flight configuration
// check, distinct from the error return of Connect: Connect fails with a
// bencherr.ConnectionError, ValidateConfig reports diagnostics before any
// I/O is attempted.
type ValidationResult struct {
	Valid       bool
	Diagnostics []string
}

// Adapter is the pluggable polymorphism point. The engine never inspects
// the concrete adapter type; it interacts exclusively through this
// interface, generalized from the teacher's BenchmarkAdapter/AdapterRegistry
// shape (process-spawning tool adapters) to in-process document-database
// adapters.
type Adapter interface {
	// ID is the stable registry identifier, e.g. "sequentialscan".
	ID() string
	// DisplayName is the human-readable adapter name.
	DisplayName() string
	// Version reports the adapter implementation's version string.
	Version() string
	// Capabilities advertises what this adapter supports, so a workload
	// can fail fast with a bencherr.CapabilityError before measurement.
	Capabilities() []connection.Capability

	// Connect establishes a connection, failing with a
	// bencherr.ConnectionError if the driver rejects the endpoint.
	Connect(ctx context.Context, cfg connection.Config) (connection.Connection, error)

	// Execute runs exactly one operation and returns its timing components
	// on the Result's Breakdown; accumulator is passed for adapter-side
	// recordings, and the adapters in this module do not write to it (the
	// built-in workloads fold the Breakdown in themselves via
	// RecordBreakdown). It fails with a
	// bencherr.OperationError only for unrecoverable faults; transient
	// failures are reflected in the returned operation.Result's Success
	// flag rather than as a Go error.
	Execute(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error)

	// ExecuteBulk runs a batch of operations. The default implementation
	// (BulkExecutor, embeddable by adapters) fans out sequentially over
	// Execute; adapters may override to measure a genuinely batched path
	// and should then advertise connection.CapabilityBulkInsert.
	ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error)

	// OverheadBreakdown extracts the decomposed timing from an
	// adapter-specific result, reporting false when the result carries
	// none.
	OverheadBreakdown(result operation.Result) (overhead.Breakdown, bool)

	// SetupTestEnvironment prepares the collection/table and any indexes
	// this adapter needs.
	SetupTestEnvironment(ctx context.Context, conn connection.Connection, descriptor EnvironmentDescriptor) error
	// TeardownTestEnvironment reverses SetupTestEnvironment.
	TeardownTestEnvironment(ctx context.Context, conn connection.Connection) error

	// ValidateConfig is an optional pre-flight check, run before Connect.
	ValidateConfig(ctx context.Context, cfg connection.Config) ValidationResult

	// Close releases adapter-level resources. Must be idempotent.
	Close() error
}

// BulkExecutor implements Adapter.ExecuteBulk as sequential fan-out over
// Execute, embeddable by adapters that do not override it with a real
// batched path.
type BulkExecutor struct {
	Exec func(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error)
}

// ExecuteBulk runs ops one at a time via Exec and tallies the results.
func (b BulkExecutor) ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error) {
	results := make([]operation.Result, 0, len(ops))
	for _, op := range ops {
		res, err := b.Exec(ctx, conn, op, accumulator)
		if err != nil {
			return operation.BulkResult{}, err
		}
		results = append(results, res)
	}
	return operation.NewBulkResult(results), nil
}

// Factory constructs a fresh Adapter instance. Per spec.md §6, creating an
// adapter is pure (no I/O); the first I/O happens in Connect.
type Factory func() (Adapter, error)

// Registry is a process-wide registry of adapter factories keyed by
// adapter id, mirroring workload.Registry and the teacher's
// AdapterRegistry shape.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds id to factory, overwriting any prior registration for
// the same id.
func (r *Registry) Register(id string, factory Factory) {
	r.factories[id] = factory
}

// Create constructs a fresh Adapter for id, or an error if id is not
// registered.
func (r *Registry) Create(id string) (Adapter, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, unknownAdapterError(id)
	}
	return factory()
}

// Available lists the registered adapter ids.
func (r *Registry) Available() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	return ids
}

func unknownAdapterError(id string) error {
	return &unknownAdapter{id: id}
}

type unknownAdapter struct{ id string }

func (e *unknownAdapter) Error() string {
	return "adapter: no adapter registered with id " + e.id
}
