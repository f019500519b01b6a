// Package sequentialscan is a reference Adapter implementing BSON-style
// length-prefixed scanning traversal: every field read walks the document
// from its first field, so traversal cost scales with field position.
// Implements: spec.md §4.2 (reference adapters), SPEC_FULL.md §4.2
package sequentialscan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/whhaicheng/docbench/internal/domain/bencherr"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/document"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/overhead"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// ID is this adapter's stable registry identifier.
const ID = "sequentialscan"

const version = "1.0.0"

// Adapter stores one row per document: an id column and a BLOB column
// holding the ordered field list length-prefix-encoded, so traversal of
// a field at ordinal position n genuinely costs O(n) to decode.
type Adapter struct {
	mu    sync.Mutex
	table string
}

// New constructs a sequentialscan Adapter. Construction is pure; no I/O
// happens until Connect.
func New() (adapter.Adapter, error) {
	return &Adapter{table: "docbench_sequentialscan"}, nil
}

func (a *Adapter) ID() string          { return ID }
func (a *Adapter) DisplayName() string { return "Sequential Scan (BSON-style)" }
func (a *Adapter) Version() string     { return version }

func (a *Adapter) Capabilities() []connection.Capability {
	return []connection.Capability{connection.CapabilityPartialDocumentRetrieval, connection.CapabilityNestedDocumentAccess}
}

type sqliteConn struct {
	db *sql.DB
}

func (c *sqliteConn) ID() string { return "sequentialscan-sqlite" }
func (c *sqliteConn) Close() error {
	return c.db.Close()
}

// Connect opens the backing sqlite database. cfg.URI, if set, is used as
// the DSN; otherwise an in-memory database is used, matching this
// adapter's role as a reference/test implementation rather than a
// production driver binding.
func (a *Adapter) Connect(ctx context.Context, cfg connection.Config) (connection.Connection, error) {
	dsn := cfg.URI
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, bencherr.NewConnectionError(ID, "opening sqlite database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, bencherr.NewConnectionError(ID, "pinging sqlite database", err)
	}
	return &sqliteConn{db: db}, nil
}

// SetupTestEnvironment creates the backing table, dropping any prior one
// first when descriptor.DropExisting is set. descriptor.Indexes and
// descriptor.PlatformOptions are accepted but ignored: every field this
// adapter stores lives inside the opaque, length-prefixed payload BLOB,
// so a field-level index request has no SQL-level column to bind to.
func (a *Adapter) SetupTestEnvironment(ctx context.Context, conn connection.Connection, descriptor adapter.EnvironmentDescriptor) error {
	c, ok := conn.(*sqliteConn)
	if !ok {
		return bencherr.NewSetupError("sequentialscan", "connection is not a sqlite connection", nil)
	}
	if descriptor.CollectionName != "" {
		a.table = descriptor.CollectionName
	}
	if descriptor.DropExisting {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, a.table)); err != nil {
			return bencherr.NewSetupError("sequentialscan", "dropping existing table", err)
		}
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, payload BLOB)`, a.table)
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return bencherr.NewSetupError("sequentialscan", "creating table", err)
	}
	return nil
}

func (a *Adapter) TeardownTestEnvironment(ctx context.Context, conn connection.Connection) error {
	c, ok := conn.(*sqliteConn)
	if !ok {
		return nil
	}
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, a.table))
	return err
}

func (a *Adapter) ValidateConfig(ctx context.Context, cfg connection.Config) adapter.ValidationResult {
	diags := cfg.Validate()
	return adapter.ValidationResult{Valid: len(diags) == 0, Diagnostics: diags}
}

// fieldKind tags whether an encoded field holds a scalar value or a
// nested sub-document, so decodeSegments knows whether to descend.
const (
	fieldKindScalar byte = 0
	fieldKindNested byte = 1
)

// encode recursively length-prefixes every field in insertion order,
// including nested sub-documents, so decoding a field at nesting depth n
// requires decoding every preceding sibling at every enclosing level
// first - the defining cost model of this adapter.
func encode(doc *document.Document) []byte {
	return encodeFields(doc.Content)
}

func encodeFields(fields *document.Fields) []byte {
	var buf []byte
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		buf = append(buf, byte(len(pair.Key)))
		buf = append(buf, pair.Key...)
		if nested, ok := pair.Value.(*document.Fields); ok {
			child := encodeFields(nested)
			buf = append(buf, fieldKindNested)
			buf = appendUint32(buf, uint32(len(child)))
			buf = append(buf, child...)
			continue
		}
		rendered := fmt.Sprintf("%v", pair.Value)
		buf = append(buf, fieldKindScalar)
		buf = appendUint32(buf, uint32(len(rendered)))
		buf = append(buf, rendered...)
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// decodeField walks buf along the dotted segments of path, decoding one
// field at a time (descending into a nested sub-document whenever the
// path continues past it) until the full path resolves or the buffer is
// exhausted. It returns the total number of fields scanned across every
// level, used to derive a position-proportional server_traversal_time.
func decodeField(buf []byte, path string) (value string, found bool, fieldsScanned int) {
	return decodeSegments(buf, strings.Split(path, "."))
}

func decodeSegments(buf []byte, segments []string) (string, bool, int) {
	if len(segments) == 0 {
		return "", false, 0
	}
	target, rest := segments[0], segments[1:]

	off, scanned := 0, 0
	for off < len(buf) {
		keyLen := int(buf[off])
		off++
		key := string(buf[off : off+keyLen])
		off += keyLen
		kind := buf[off]
		off++
		valLen := int(buf[off])<<24 | int(buf[off+1])<<16 | int(buf[off+2])<<8 | int(buf[off+3])
		off += 4
		val := buf[off : off+valLen]
		off += valLen
		scanned++

		if key != target {
			continue
		}
		if kind == fieldKindNested {
			if len(rest) == 0 {
				return "", false, scanned
			}
			nestedVal, nestedFound, nestedScanned := decodeSegments(val, rest)
			return nestedVal, nestedFound, scanned + nestedScanned
		}
		if len(rest) != 0 {
			return "", false, scanned
		}
		return string(val), true, scanned
	}
	return "", false, scanned
}

func (a *Adapter) Execute(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error) {
	c, ok := conn.(*sqliteConn)
	if !ok {
		return operation.Result{}, bencherr.NewOperationError(op.ID, string(op.Kind), "connection is not a sqlite connection", nil)
	}

	start := time.Now()
	switch op.Kind {
	case operation.KindInsert:
		return a.executeInsert(ctx, c, op, start)
	case operation.KindRead:
		return a.executeRead(ctx, c, op, start)
	default:
		return operation.Failure(op.ID, op.Kind, time.Since(start), fmt.Errorf("sequentialscan: unsupported operation kind %q", op.Kind)), nil
	}
}

func (a *Adapter) executeInsert(ctx context.Context, c *sqliteConn, op operation.Operation, start time.Time) (operation.Result, error) {
	serializeStart := time.Now()
	payload := encode(op.Document)
	serializationTime := time.Since(serializeStart)

	wireStart := time.Now()
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, payload) VALUES (?, ?)`, a.table), op.Document.ID, payload)
	wireTime := time.Since(wireStart)
	if err != nil {
		return operation.Failure(op.ID, op.Kind, time.Since(start), err), nil
	}

	b := overhead.New(overhead.Fields{
		TotalLatency:      time.Since(start),
		SerializationTime: serializationTime,
		WireTransmitTime:  wireTime,
	})
	return operation.Success(op.ID, op.Kind, time.Since(start), &b), nil
}

func (a *Adapter) executeRead(ctx context.Context, c *sqliteConn, op operation.Operation, start time.Time) (operation.Result, error) {
	wireStart := time.Now()
	row := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, a.table), op.TargetKey)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return operation.Failure(op.ID, op.Kind, time.Since(start), err), nil
	}
	wireTime := time.Since(wireStart)

	// An empty projection list is a full-document read: no path to resolve.
	var targetPath string
	if len(op.ProjectionPaths) > 0 {
		targetPath = op.ProjectionPaths[0]
	}

	traversalStart := time.Now()
	var fieldsScanned int
	var found bool
	if targetPath != "" {
		_, found, fieldsScanned = decodeField(payload, targetPath)
	}
	// server_traversal_time is modeled as proportional to fields scanned
	// across every nesting level walked, matching this adapter's defining
	// cost model.
	serverTraversal := time.Duration(fieldsScanned) * time.Microsecond
	deserializationTime := time.Since(traversalStart)

	if targetPath != "" && !found {
		return operation.Failure(op.ID, op.Kind, time.Since(start), fmt.Errorf("sequentialscan: path %q not found in document %q", targetPath, op.TargetKey)), nil
	}

	b := overhead.New(overhead.Fields{
		TotalLatency:        time.Since(start),
		WireReceiveTime:     wireTime,
		ServerTraversalTime: serverTraversal,
		DeserializationTime: deserializationTime,
	})
	return operation.Success(op.ID, op.Kind, time.Since(start), &b), nil
}

func (a *Adapter) ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error) {
	return adapter.BulkExecutor{Exec: func(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error) {
		return a.Execute(ctx, conn, op, accumulator)
	}}.ExecuteBulk(ctx, conn, ops, accumulator)
}

func (a *Adapter) OverheadBreakdown(result operation.Result) (overhead.Breakdown, bool) {
	if result.Breakdown == nil {
		return overhead.Breakdown{}, false
	}
	return *result.Breakdown, true
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return nil
}
