// Package workload provides the Workload lifecycle protocol and its
// registry, plus the two built-in workloads (traverse, deserialize).
// Implements: spec.md §4.6 (Workload Protocol), §6 (workload plugin
// contract)
package workload

import (
	"context"

	"github.com/whhaicheng/docbench/internal/domain/config"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// Workload is a five-method lifecycle implemented by each benchmark
// scenario. Workload instances are stateful between Initialize and
// Cleanup; a Registry factory must return a fresh instance per Create
// call.
type Workload interface {
	// Name is the stable identifier, recorded into the measurement
	// accumulator as the conventional metric name for this workload.
	Name() string
	// Description is a human-readable summary.
	Description() string
	// RequiredCapabilities lists the connection.Capability values an
	// adapter must advertise for this workload to run against it; the
	// orchestrator raises bencherr.CapabilityError before measurement
	// when an adapter is missing one.
	RequiredCapabilities() []connection.Capability
	// Initialize binds cfg, seeding an internal RNG from cfg.Seed (or a
	// fresh seed if absent), choosing a per-run collection name, and
	// building the document generator.
	Initialize(cfg config.WorkloadConfig) error
	// SetupData prepares the test environment and inserts documentCount
	// generated documents via adapter, using a throwaway setup
	// accumulator.
	SetupData(ctx context.Context, a adapter.Adapter) error
	// RunIteration performs the workload-defining operation once,
	// recording at least one named timing into accumulator.
	RunIteration(ctx context.Context, a adapter.Adapter, accumulator *metrics.Accumulator) error
	// Cleanup tears down the test environment and closes the connection.
	// Multiple calls must be safe.
	Cleanup(ctx context.Context, a adapter.Adapter) error
}

// Factory constructs a fresh Workload instance.
type Factory func() Workload

// Registry is a process-wide registry of workload factories keyed by
// workload id, parallel to adapter.Registry (spec.md §6): the same
// Register/Create/Available shape, plus a description per id and
// DescribeAll, which adapter.Registry does not have.
type Registry struct {
	factories   map[string]Factory
	descriptions map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:    make(map[string]Factory),
		descriptions: make(map[string]string),
	}
}

// Register binds id to factory.
func (r *Registry) Register(id, description string, factory Factory) {
	r.factories[id] = factory
	r.descriptions[id] = description
}

// Create constructs a fresh Workload for id, or an error if unregistered.
func (r *Registry) Create(id string) (Workload, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, unknownWorkloadError(id)
	}
	return factory(), nil
}

// DescribeAll returns a map of registered id to description.
func (r *Registry) DescribeAll() map[string]string {
	out := make(map[string]string, len(r.descriptions))
	for k, v := range r.descriptions {
		out[k] = v
	}
	return out
}

// Available lists the registered workload ids.
func (r *Registry) Available() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	return ids
}

func unknownWorkloadError(id string) error {
	return &unknownWorkload{id: id}
}

type unknownWorkload struct{ id string }

func (e *unknownWorkload) Error() string {
	return "workload: no workload registered with id " + e.id
}

// Default is the process-wide registry pre-populated with the two
// built-in workloads, matching the teacher's "global static registries
// become process-wide singletons with explicit init" design note.
var Default = NewRegistry()

func init() {
	Default.Register(TraverseID, "measures the cost of projecting a single deeply-nested field", func() Workload {
		return NewTraverse()
	})
	Default.Register(DeserializeID, "measures full-document retrieval/decoding cost", func() Workload {
		return NewDeserialize()
	})
}
