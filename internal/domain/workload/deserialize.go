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

// DeserializeID is the stable registry identifier for the Deserialize
// workload.
const DeserializeID = "deserialize"

// Deserialize measures full-document retrieval/decoding cost.
// Implements: spec.md §4.6 ("Deserialize")
type Deserialize struct {
	cfg            config.WorkloadConfig
	rand           *randsrc.Source
	gen            *docgen.Generator
	collectionName string

	documentSizeBytes       int
	sizeTolerance           float64
	numericFieldProbability float64
	booleanFieldProbability float64
	nestingDepth            int
	fieldsPerLevel          int
	arrayFieldCount         int
	documentCount           int

	docs []*document.Document
	conn connection.Connection
}

// NewDeserialize constructs an uninitialized Deserialize workload.
func NewDeserialize() *Deserialize {
	return &Deserialize{}
}

func (w *Deserialize) Name() string { return DeserializeID }

func (w *Deserialize) Description() string {
	return "measures full-document retrieval/decoding cost"
}

// RequiredCapabilities reports that Deserialize has no capability
// requirements beyond a plain read.
func (w *Deserialize) RequiredCapabilities() []connection.Capability {
	return nil
}

// Initialize binds cfg, applying the defaults from spec.md §4.6:
// documentSizeBytes=5000, sizeTolerance=20%, numericFieldProbability=0.3,
// booleanFieldProbability=0.1, nestingDepth=3, fieldsPerLevel=5,
// arrayFieldCount=2.
func (w *Deserialize) Initialize(cfg config.WorkloadConfig) error {
	w.cfg = cfg

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	w.rand = randsrc.New(seed)

	w.documentSizeBytes = cfg.IntParamOrDefault("documentSizeBytes", 5000)
	w.sizeTolerance = cfg.FloatParamOrDefault("sizeTolerance", 20)
	w.numericFieldProbability = cfg.FloatParamOrDefault("numericFieldProbability", 0.3)
	w.booleanFieldProbability = cfg.FloatParamOrDefault("booleanFieldProbability", 0.1)
	w.nestingDepth = cfg.IntParamOrDefault("nestingDepth", 3)
	w.fieldsPerLevel = cfg.IntParamOrDefault("fieldsPerLevel", 5)
	w.arrayFieldCount = cfg.IntParamOrDefault("arrayFieldCount", 2)
	w.documentCount = cfg.IntParamOrDefault("documentCount", 100)

	w.collectionName = fmt.Sprintf("bench_%s_%d", w.Name(), time.Now().Unix())

	genCfg := docgen.NewConfig(w.rand.Fork())
	genCfg.TargetByteSize = w.documentSizeBytes
	genCfg.SizeTolerancePercent = w.sizeTolerance
	genCfg.NumericFieldProbability = w.numericFieldProbability
	genCfg.BooleanFieldProbability = w.booleanFieldProbability
	genCfg.NestingDepth = w.nestingDepth
	genCfg.FieldsPerLevel = w.fieldsPerLevel
	genCfg.ArrayFieldCount = w.arrayFieldCount
	w.gen = docgen.New(genCfg)

	w.docs = nil
	return nil
}

// SetupData prepares the test environment and inserts documentCount
// generated documents, discarding the setup accumulator's measurements.
func (w *Deserialize) SetupData(ctx context.Context, a adapter.Adapter) error {
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

// RunIteration picks a random document and issues a full-document read
// (empty projection list), recording total duration to metric
// "deserialize"; if the breakdown is present, its deserialization_time is
// additionally recorded to "deserialize_serialization".
func (w *Deserialize) RunIteration(ctx context.Context, a adapter.Adapter, accumulator *metrics.Accumulator) error {
	if len(w.docs) == 0 {
		return bencherr.NewOperationError("", w.Name(), "no setup documents available", nil)
	}
	idx, err := w.rand.NextBoundedInt(len(w.docs))
	if err != nil {
		return err
	}
	doc := w.docs[idx]

	op := operation.Read(doc.ID, doc.ID, nil, "")
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
		accumulator.Record(w.Name()+"_serialization", result.Breakdown.DeserializationTime())
	}
	return nil
}

// Cleanup tears down the test environment and closes the connection.
// Safe to call more than once.
func (w *Deserialize) Cleanup(ctx context.Context, a adapter.Adapter) error {
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
