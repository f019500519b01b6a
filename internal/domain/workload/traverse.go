package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/whhaicheng/docbench/internal/domain/bencherr"
	"github.com/whhaicheng/docbench/internal/domain/config"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/docgen"
	"github.com/whhaicheng/docbench/internal/domain/document"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/randsrc"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// TraverseID is the stable registry identifier for the Traverse workload.
const TraverseID = "traverse"

// Traverse measures the cost of projecting a single deeply-nested field.
// Implements: spec.md §4.6 ("Traverse")
type Traverse struct {
	cfg            config.WorkloadConfig
	rand           *randsrc.Source
	gen            *docgen.Generator
	collectionName string

	nestingDepth   int
	fieldsPerLevel int
	targetPath     string
	fieldCount     int
	documentCount  int

	docs []*document.Document
	conn connection.Connection
}

// NewTraverse constructs an uninitialized Traverse workload.
func NewTraverse() *Traverse {
	return &Traverse{}
}

func (w *Traverse) Name() string { return TraverseID }

func (w *Traverse) Description() string {
	return "measures the cost of projecting a single deeply-nested field"
}

// RequiredCapabilities reports that Traverse needs both a projected
// (partial) read and the ability to resolve a nested dotted path - see
// spec.md §4.2 ("required tags for the two built-in workloads").
func (w *Traverse) RequiredCapabilities() []connection.Capability {
	return []connection.Capability{connection.CapabilityPartialDocumentRetrieval, connection.CapabilityNestedDocumentAccess}
}

// Initialize binds cfg, applying the defaults from spec.md §4.6:
// nestingDepth=5, fieldsPerLevel=10, fieldCount=20, targetPath derived
// from nestingDepth as "nested.nested....target".
func (w *Traverse) Initialize(cfg config.WorkloadConfig) error {
	w.cfg = cfg

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	w.rand = randsrc.New(seed)

	w.nestingDepth = cfg.IntParamOrDefault("nestingDepth", 5)
	w.fieldsPerLevel = cfg.IntParamOrDefault("fieldsPerLevel", 10)
	w.fieldCount = cfg.IntParamOrDefault("fieldCount", 20)
	w.documentCount = cfg.IntParamOrDefault("documentCount", 100)
	w.targetPath = cfg.StringParamOrDefault("targetPath", derivedTargetPath(w.nestingDepth))

	w.collectionName = fmt.Sprintf("bench_%s_%d", w.Name(), time.Now().Unix())

	genCfg := docgen.NewConfig(w.rand.Fork())
	genCfg.FieldCount = w.fieldCount
	genCfg.NestingDepth = w.nestingDepth
	genCfg.FieldsPerLevel = w.fieldsPerLevel
	genCfg.TargetPath = w.targetPath
	genCfg.TargetValue = "target-value"
	w.gen = docgen.New(genCfg)

	w.docs = nil
	return nil
}

func derivedTargetPath(depth int) string {
	path := "target"
	for i := 0; i < depth; i++ {
		path = "nested." + path
	}
	return path
}

// SetupData prepares the test environment and inserts documentCount
// generated documents, discarding the setup accumulator's measurements.
func (w *Traverse) SetupData(ctx context.Context, a adapter.Adapter) error {
	conn, err := a.Connect(ctx, connection.Config{})
	if err != nil {
		return err
	}
	w.conn = conn

	if err := a.SetupTestEnvironment(ctx, w.conn, adapter.EnvironmentDescriptor{
		CollectionName: w.collectionName,
		ExpectedDocs:   w.documentCount,
	}); err != nil {
		return bencherr.NewSetupError(w.Name(), "setting up test environment", err)
	}

	docs, err := w.gen.GenerateBatch(w.collectionName, w.documentCount)
	if err != nil {
		return bencherr.NewSetupError(w.Name(), "generating setup documents", err)
	}
	w.docs = docs

	setupAcc := metrics.New()
	for _, doc := range docs {
		result, err := a.Execute(ctx, w.conn, operation.Insert(doc.ID, doc), setupAcc)
		if err != nil {
			return bencherr.NewSetupError(w.Name(), "inserting setup document", err)
		}
		if !result.Success {
			return bencherr.NewSetupError(w.Name(), "inserting setup document", result.Err)
		}
	}
	return nil
}

// RunIteration picks a random document, issues a projected read for
// targetPath, and records the result's total duration to metric
// "traverse"; a failed operation additionally increments "traverse_error".
func (w *Traverse) RunIteration(ctx context.Context, a adapter.Adapter, accumulator *metrics.Accumulator) error {
	if len(w.docs) == 0 {
		return bencherr.NewOperationError("", w.Name(), "no setup documents available", nil)
	}
	idx, err := w.rand.NextBoundedInt(len(w.docs))
	if err != nil {
		return err
	}
	doc := w.docs[idx]

	op := operation.Read(doc.ID, doc.ID, []string{w.targetPath}, "")
	result, err := a.Execute(ctx, w.conn, op, accumulator)
	if err != nil {
		return err
	}

	accumulator.Record(w.Name(), result.Duration)
	if !result.Success {
		accumulator.IncrementCounter(w.Name() + "_error")
		return nil
	}
	if result.Breakdown != nil {
		accumulator.RecordBreakdown(*result.Breakdown)
	}
	return nil
}

// Cleanup tears down the test environment and closes the connection.
// Safe to call more than once.
func (w *Traverse) Cleanup(ctx context.Context, a adapter.Adapter) error {
	if w.conn == nil {
		return nil
	}
	teardownErr := a.TeardownTestEnvironment(ctx, w.conn)
	closeErr := w.conn.Close()
	w.conn = nil
	if teardownErr != nil {
		return teardownErr
	}
	return closeErr
}
