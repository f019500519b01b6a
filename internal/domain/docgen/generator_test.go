package docgen

import (
	"testing"

	"github.com/whhaicheng/docbench/internal/domain/randsrc"
)

// TestSeededReproducibility exercises spec.md §8 scenario 1.
func TestSeededReproducibility(t *testing.T) {
	cfg1 := NewConfig(randsrc.New(12345))
	cfg1.FieldCount = 5
	cfg2 := NewConfig(randsrc.New(12345))
	cfg2.FieldCount = 5

	g1 := New(cfg1)
	g2 := New(cfg2)

	d1, err := g1.Generate("doc-1")
	if err != nil {
		t.Fatalf("generate 1: %v", err)
	}
	d2, err := g2.Generate("doc-1")
	if err != nil {
		t.Fatalf("generate 2: %v", err)
	}

	k1, k2 := d1.Keys(), d2.Keys()
	if len(k1) != len(k2) {
		t.Fatalf("key count diverged: %v vs %v", k1, k2)
	}
	for i := range k1 {
		if k1[i] != k2[i] {
			t.Fatalf("key order diverged at %d: %q vs %q", i, k1[i], k2[i])
		}
		v1, _ := d1.Content.Get(k1[i])
		v2, _ := d2.Content.Get(k2[i])
		if !valuesEqual(v1, v2) {
			t.Fatalf("value diverged for key %q: %v vs %v", k1[i], v1, v2)
		}
	}
}

func valuesEqual(a, b any) bool {
	return a == b
}

// TestPositionSensitiveFieldPlanting exercises spec.md §8 scenario 2.
func TestPositionSensitiveFieldPlanting(t *testing.T) {
	cfg := NewConfig(randsrc.New(1))
	cfg.FieldCount = 100
	cfg.TargetFieldPosition = 50
	cfg.TargetFieldName = "target"
	cfg.TargetValue = "FOUND"

	g := New(cfg)
	doc, err := g.Generate("doc-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	keys := doc.Keys()
	pos := -1
	for i, k := range keys {
		if k == "target" {
			pos = i + 1 // one-based ordinal
			break
		}
	}
	if pos < 0 {
		t.Fatalf("target field not found in keys %v", keys)
	}
	if pos < 45 || pos > 55 {
		t.Fatalf("target field at ordinal %d, want in [45, 55]", pos)
	}

	got, _ := doc.Content.Get("target")
	if got != "FOUND" {
		t.Fatalf("content[target] = %v, want FOUND", got)
	}
}

func TestGenerateBatchIDs(t *testing.T) {
	g := New(NewConfig(randsrc.New(1)))
	docs, err := g.GenerateBatch("batch", 3)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	want := []string{"batch-0", "batch-1", "batch-2"}
	for i, doc := range docs {
		if doc.ID != want[i] {
			t.Errorf("docs[%d].ID = %q, want %q", i, doc.ID, want[i])
		}
	}
}

func TestNestedDepthAttachesNestedChild(t *testing.T) {
	cfg := NewConfig(randsrc.New(5))
	cfg.FieldCount = 10
	cfg.NestingDepth = 3
	cfg.FieldsPerLevel = 4
	cfg.TargetPath = "nested.nested.nested.target"
	cfg.TargetValue = "deep"

	g := New(cfg)
	doc, err := g.Generate("doc-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, ok := doc.GetPath("nested.nested.nested.target")
	if !ok || got != "deep" {
		t.Fatalf("GetPath(nested...target) = (%v, %v), want (deep, true)", got, ok)
	}
}

// TestDocumentSizeTargetingWithinTolerance exercises spec.md §8 boundary
// behavior: tolerance 20% produces documents within the 80%-120% band.
func TestDocumentSizeTargetingWithinTolerance(t *testing.T) {
	cfg := NewConfig(randsrc.New(99))
	cfg.TargetByteSize = 5000
	cfg.SizeTolerancePercent = 20

	g := New(cfg)
	doc, err := g.Generate("doc-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	size := EstimateSize(doc.Content)
	lower := int(float64(cfg.TargetByteSize) * 0.8)
	upper := int(float64(cfg.TargetByteSize) * 1.2)
	if size < lower || size > upper {
		t.Fatalf("estimated size %d outside [%d, %d] band", size, lower, upper)
	}
}

func TestTemplatesProduceFixedShape(t *testing.T) {
	for _, tmpl := range []Template{TemplateECommerceOrder, TemplateUserProfile, TemplateIoTSensorReading} {
		cfg := NewConfig(randsrc.New(7))
		cfg.Template = tmpl
		g := New(cfg)

		d1, err := g.Generate("x")
		if err != nil {
			t.Fatalf("template %s: generate: %v", tmpl, err)
		}

		cfg2 := NewConfig(randsrc.New(7))
		cfg2.Template = tmpl
		g2 := New(cfg2)
		d2, err := g2.Generate("x")
		if err != nil {
			t.Fatalf("template %s: generate 2: %v", tmpl, err)
		}

		if len(d1.Keys()) != len(d2.Keys()) {
			t.Errorf("template %s: key count diverged across identical seeds", tmpl)
		}
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := NewConfig(nil)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for nil Random source")
	}

	cfg2 := NewConfig(randsrc.New(1))
	cfg2.ArrayFieldCount = 10
	cfg2.FieldCount = 5
	if err := cfg2.Validate(); err == nil {
		t.Fatal("expected error for ArrayFieldCount > FieldCount")
	}
}
