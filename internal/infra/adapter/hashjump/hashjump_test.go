package hashjump

import (
	"context"
	"testing"
	"time"

	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/document"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

func newTestAdapter(t *testing.T) (adapter.Adapter, connection.Connection) {
	t.Helper()
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	conn, err := a.Connect(context.Background(), connection.NewURIConfig("file::memory:?cache=shared&mode=rwc"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.SetupTestEnvironment(context.Background(), conn, adapter.EnvironmentDescriptor{CollectionName: "test_hash"}); err != nil {
		t.Fatalf("SetupTestEnvironment: %v", err)
	}
	t.Cleanup(func() {
		a.TeardownTestEnvironment(context.Background(), conn)
		conn.Close()
		a.Close()
	})
	return a, conn
}

func TestInsertBuildsIndexAndReadUsesIt(t *testing.T) {
	a, conn := newTestAdapter(t)

	fields := document.NewFields()
	fields.Set("name", "bob")
	fields.Set("age", 41)
	doc := document.New("doc-1", fields)

	acc := metrics.New()
	insertResult, err := a.Execute(context.Background(), conn, operation.Insert("op-insert", doc), acc)
	if err != nil {
		t.Fatalf("Execute insert: %v", err)
	}
	if !insertResult.Success {
		t.Fatalf("insert failed: %v", insertResult.Err)
	}

	readResult, err := a.Execute(context.Background(), conn, operation.Read("op-read", "doc-1", []string{"age"}, ""), acc)
	if err != nil {
		t.Fatalf("Execute read: %v", err)
	}
	if !readResult.Success {
		t.Fatalf("read failed: %v", readResult.Err)
	}
	if readResult.Breakdown == nil {
		t.Fatal("expected breakdown on successful read")
	}
}

func TestCapabilitiesAdvertisesIndexedTraversal(t *testing.T) {
	a, _ := New()
	caps := a.Capabilities()
	found := false
	for _, c := range caps {
		if c == connection.CapabilityIndexedTraversal {
			found = true
		}
	}
	if !found {
		t.Fatal("expected CapabilityIndexedTraversal to be advertised")
	}
}

func TestReadResolvesNestedTargetPathInO1(t *testing.T) {
	a, conn := newTestAdapter(t)

	fields := document.NewFields()
	nested := document.NewFields()
	nested.Set("target", "deep-value")
	fields.Set("nested", nested)
	doc := document.New("doc-nested", fields)

	acc := metrics.New()
	insertResult, err := a.Execute(context.Background(), conn, operation.Insert("op-insert", doc), acc)
	if err != nil {
		t.Fatalf("Execute insert: %v", err)
	}
	if !insertResult.Success {
		t.Fatalf("insert failed: %v", insertResult.Err)
	}

	readResult, err := a.Execute(context.Background(), conn, operation.Read("op-read", "doc-nested", []string{"nested.target"}, ""), acc)
	if err != nil {
		t.Fatalf("Execute read: %v", err)
	}
	if !readResult.Success {
		t.Fatalf("expected nested path to resolve, got failure: %v", readResult.Err)
	}
	if readResult.Breakdown == nil {
		t.Fatal("expected breakdown on successful nested read")
	}
	if got := readResult.Breakdown.ServerTraversalTime(); got != time.Microsecond {
		t.Fatalf("server traversal time = %v, want a fixed O(1) cost regardless of nesting depth", got)
	}
}

func TestReadMissingNestedTargetPathFails(t *testing.T) {
	a, conn := newTestAdapter(t)

	fields := document.NewFields()
	nested := document.NewFields()
	nested.Set("other", "value")
	fields.Set("nested", nested)
	doc := document.New("doc-nested-miss", fields)

	acc := metrics.New()
	if _, err := a.Execute(context.Background(), conn, operation.Insert("op-insert", doc), acc); err != nil {
		t.Fatalf("Execute insert: %v", err)
	}

	readResult, err := a.Execute(context.Background(), conn, operation.Read("op-read", "doc-nested-miss", []string{"nested.target"}, ""), acc)
	if err != nil {
		t.Fatalf("Execute read: %v", err)
	}
	if readResult.Success {
		t.Fatal("expected failure for a nested path absent from the document")
	}
}

func TestReadMissingDocumentFails(t *testing.T) {
	a, conn := newTestAdapter(t)
	acc := metrics.New()
	result, err := a.Execute(context.Background(), conn, operation.Read("op-read", "missing", nil, ""), acc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure reading a nonexistent document")
	}
}
