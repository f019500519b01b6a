package docgen

import (
	"fmt"

	"github.com/whhaicheng/docbench/internal/domain/document"
)

// Generator produces JsonDocument values from a fixed Config. For a fixed
// Config and seed, Generate(id) is byte-identical across invocations in
// the same process and across processes - spec.md §8.
type Generator struct {
	cfg Config
}

// New constructs a Generator. It does not validate cfg; call cfg.Validate
// first if the caller's input is not already trusted.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate produces one document identified by id.
func (g *Generator) Generate(id string) (*document.Document, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	var fields *document.Fields
	switch {
	case g.cfg.Template != TemplateNone:
		fields = g.generateFromTemplate()
	case g.cfg.TargetByteSize > 0:
		fields = g.generateToTargetSize()
	default:
		fields = g.generateRegular()
	}

	if g.cfg.TargetPath != "" {
		if err := document.SetPath(fields, g.cfg.TargetPath, g.cfg.TargetValue); err != nil {
			return nil, fmt.Errorf("docgen: planting target path: %w", err)
		}
	}

	return document.New(id, fields), nil
}

// GenerateBatch produces n documents with ids "{prefix}-0", "{prefix}-1",
// ... via successive Generate calls.
func (g *Generator) GenerateBatch(prefix string, n int) ([]*document.Document, error) {
	docs := make([]*document.Document, 0, n)
	for i := 0; i < n; i++ {
		doc, err := g.Generate(fmt.Sprintf("%s-%d", prefix, i))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// generateRegular implements the "otherwise" branch of spec.md §4.5:
// fieldCount-arrayFieldCount regular fields, optional position-targeted
// field substitution, optional nested object, then arrayFieldCount array
// fields.
func (g *Generator) generateRegular() *document.Fields {
	fields := document.NewFields()
	regularCount := g.cfg.FieldCount - g.cfg.ArrayFieldCount
	if regularCount < 0 {
		regularCount = 0
	}

	for i := 1; i <= regularCount; i++ {
		name := fmt.Sprintf("field_%d", i)
		if g.cfg.TargetFieldPosition == i && g.cfg.TargetFieldName != "" {
			name = g.cfg.TargetFieldName
			fields.Set(name, g.cfg.TargetValue)
			continue
		}
		fields.Set(name, g.randomScalar())
	}

	if g.cfg.NestingDepth > 0 {
		fields.Set("nested", g.generateNestedLevel(g.cfg.NestingDepth))
	}

	for i := 0; i < g.cfg.ArrayFieldCount; i++ {
		name := fmt.Sprintf("array_field_%d", i+1)
		fields.Set(name, g.randomArray())
	}

	return fields
}

// generateNestedLevel builds one level of nesting: fieldsPerLevel padding
// fields, plus (except at the deepest level) another "nested" child.
func (g *Generator) generateNestedLevel(depthRemaining int) *document.Fields {
	level := document.NewFields()
	for i := 1; i <= g.cfg.FieldsPerLevel; i++ {
		level.Set(fmt.Sprintf("pad_%d", i), g.randomScalar())
	}
	if depthRemaining > 1 {
		level.Set("nested", g.generateNestedLevel(depthRemaining-1))
	}
	return level
}

func (g *Generator) randomScalar() any {
	r := g.cfg.Random
	roll := r.NextFloat64()
	switch {
	case roll < g.cfg.NumericFieldProbability:
		v, _ := r.NextIntRange(0, 1_000_000)
		return v
	case roll < g.cfg.NumericFieldProbability+g.cfg.BooleanFieldProbability:
		return r.NextBool()
	default:
		length, _ := r.NextIntRange(g.cfg.MinStringLength, g.cfg.MaxStringLength+1)
		return r.NextAlphanumeric(length)
	}
}

func (g *Generator) randomArray() []any {
	size, _ := g.cfg.Random.NextIntRange(g.cfg.ArrayMinSize, g.cfg.ArrayMaxSize+1)
	arr := make([]any, size)
	for i := range arr {
		arr[i] = g.randomArrayElement()
	}
	return arr
}

func (g *Generator) randomArrayElement() any {
	kind := g.cfg.ArrayElementKind
	if kind == ArrayElementMixed {
		switch n, _ := g.cfg.Random.NextBoundedInt(3); n {
		case 0:
			kind = ArrayElementString
		case 1:
			kind = ArrayElementNumber
		default:
			kind = ArrayElementObject
		}
	}
	switch kind {
	case ArrayElementNumber:
		v, _ := g.cfg.Random.NextIntRange(0, 1_000_000)
		return v
	case ArrayElementObject:
		obj := document.NewFields()
		for i := 1; i <= 3; i++ {
			obj.Set(fmt.Sprintf("k%d", i), g.randomScalar())
		}
		return obj
	default:
		length, _ := g.cfg.Random.NextIntRange(g.cfg.MinStringLength, g.cfg.MaxStringLength+1)
		return g.cfg.Random.NextAlphanumeric(length)
	}
}
