// Package sqlstore is an Adapter family backed by database/sql, storing
// each document as a single JSON-rendered blob column in a relational
// table. It exists to exercise the real SQL driver dependencies carried
// over from the teacher's connection-per-dialect design
// (github.com/go-sql-driver/mysql, github.com/lib/pq,
// github.com/microsoft/go-mssqldb, github.com/sijms/go-ora/v2) against
// DocBench's document-adapter interface, generalizing the teacher's
// per-dialect mysql.go/postgresql.go/sqlserver.go/oracle.go connection
// builders into one parameterized adapter rather than four near-duplicate
// ones.
// Implements: spec.md §4.2 (Adapter interface); SPEC_FULL.md domain-stack
// wiring for the SQL driver dependencies.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"

	"github.com/whhaicheng/docbench/internal/domain/bencherr"
	"github.com/whhaicheng/docbench/internal/domain/connection"
	"github.com/whhaicheng/docbench/internal/domain/document"
	"github.com/whhaicheng/docbench/internal/domain/metrics"
	"github.com/whhaicheng/docbench/internal/domain/operation"
	"github.com/whhaicheng/docbench/internal/domain/overhead"
	"github.com/whhaicheng/docbench/internal/infra/adapter"
)

// Dialect selects the SQL driver and DSN-building rules for one member of
// the sqlstore adapter family.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgres"
	DialectSQLServer  Dialect = "sqlserver"
	DialectOracle     Dialect = "oracle"
)

func (d Dialect) driverName() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectPostgreSQL:
		return "postgres"
	case DialectSQLServer:
		return "sqlserver"
	case DialectOracle:
		return "oracle"
	default:
		return string(d)
	}
}

// placeholder renders the nth bind parameter in this dialect's syntax.
func (d Dialect) placeholder(n int) string {
	switch d {
	case DialectPostgreSQL:
		return fmt.Sprintf("$%d", n)
	case DialectOracle:
		return fmt.Sprintf(":%d", n)
	default:
		return "?"
	}
}

// Adapter stores documents as JSON blobs in a relational table reached
// through database/sql, parameterized by Dialect. The engine sees only
// the adapter.Adapter interface; the relational storage and per-dialect
// DSN/placeholder differences are entirely internal.
type Adapter struct {
	dialect Dialect
	table   string
}

// New returns a Factory for the given dialect, suitable for
// adapter.Registry.Register(id, sqlstore.New(dialect)).
func New(dialect Dialect) adapter.Factory {
	return func() (adapter.Adapter, error) {
		return &Adapter{dialect: dialect, table: "docbench_documents"}, nil
	}
}

func (a *Adapter) ID() string          { return "sqlstore-" + string(a.dialect) }
func (a *Adapter) DisplayName() string { return fmt.Sprintf("SQL Store (%s)", a.dialect) }
func (a *Adapter) Version() string     { return "1.0.0" }

func (a *Adapter) Capabilities() []connection.Capability {
	return nil
}

type sqlConn struct {
	db *sql.DB
}

func (c *sqlConn) ID() string   { return "sqlstore-conn" }
func (c *sqlConn) Close() error { return c.db.Close() }

// dsn builds a driver-appropriate connection string from cfg. The URI
// form is passed straight through (spec.md §6); the tuple form is
// rendered per-dialect, generalizing the teacher's per-file DSN builders.
func (a *Adapter) dsn(cfg connection.Config) string {
	if cfg.IsURIForm() {
		return cfg.URI
	}
	switch a.dialect {
	case DialectMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	case DialectPostgreSQL:
		return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable", cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password)
	case DialectSQLServer:
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s", cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	case DialectOracle:
		return fmt.Sprintf("oracle://%s:%s@%s:%d/%s", cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	default:
		return cfg.URI
	}
}

func (a *Adapter) Connect(ctx context.Context, cfg connection.Config) (connection.Connection, error) {
	db, err := sql.Open(a.dialect.driverName(), a.dsn(cfg))
	if err != nil {
		return nil, bencherr.NewConnectionError(a.ID(), "opening "+string(a.dialect)+" connection", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, bencherr.NewConnectionError(a.ID(), "pinging "+string(a.dialect)+" database", err)
	}
	return &sqlConn{db: db}, nil
}

// SetupTestEnvironment creates the backing table, dropping any prior one
// first when descriptor.DropExisting is set, then builds any requested
// index whose Fields name the "id" column - the only column this
// adapter's schema exposes, since every other field lives inside the
// opaque payload TEXT column. Index requests against other field names
// are accepted but skipped, since indexing into JSON text is a
// dialect-specific feature (generated columns, expression indexes) this
// adapter does not attempt to generalize across four drivers.
// descriptor.PlatformOptions is accepted but unused.
func (a *Adapter) SetupTestEnvironment(ctx context.Context, conn connection.Connection, descriptor adapter.EnvironmentDescriptor) error {
	c, ok := conn.(*sqlConn)
	if !ok {
		return bencherr.NewSetupError(a.ID(), "connection is not a sqlstore connection", nil)
	}
	if descriptor.CollectionName != "" {
		a.table = descriptor.CollectionName
	}
	if descriptor.DropExisting {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, a.table)); err != nil {
			return bencherr.NewSetupError(a.ID(), "dropping existing table", err)
		}
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id VARCHAR(255) PRIMARY KEY, payload TEXT)`, a.table)
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return bencherr.NewSetupError(a.ID(), "creating table", err)
	}
	for _, idx := range descriptor.Indexes {
		if len(idx.Fields) != 1 || idx.Fields[0] != "id" {
			continue
		}
		if err := a.createIDIndex(ctx, c, idx); err != nil {
			return bencherr.NewSetupError(a.ID(), "creating index "+idx.Name, err)
		}
	}
	return nil
}

func (a *Adapter) createIDIndex(ctx context.Context, c *sqlConn, idx adapter.IndexDefinition) error {
	name := idx.Name
	if name == "" {
		name = a.table + "_id_idx"
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS %s ON %s (id)`, unique, name, a.table)
	_, err := c.db.ExecContext(ctx, stmt)
	return err
}

func (a *Adapter) TeardownTestEnvironment(ctx context.Context, conn connection.Connection) error {
	c, ok := conn.(*sqlConn)
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

func documentJSON(doc *document.Document) (string, error) {
	m := make(map[string]any, len(doc.Keys()))
	for _, k := range doc.Keys() {
		v, _ := doc.Content.Get(k)
		m[k] = v
	}
	buf, err := json.Marshal(m)
	return string(buf), err
}

func (a *Adapter) Execute(ctx context.Context, conn connection.Connection, op operation.Operation, accumulator *metrics.Accumulator) (operation.Result, error) {
	c, ok := conn.(*sqlConn)
	if !ok {
		return operation.Result{}, bencherr.NewOperationError(op.ID, string(op.Kind), "connection is not a sqlstore connection", nil)
	}

	start := time.Now()
	switch op.Kind {
	case operation.KindInsert:
		return a.executeInsert(ctx, c, op, start)
	case operation.KindRead:
		return a.executeRead(ctx, c, op, start)
	default:
		return operation.Failure(op.ID, op.Kind, time.Since(start), fmt.Errorf("sqlstore: unsupported operation kind %q", op.Kind)), nil
	}
}

func (a *Adapter) executeInsert(ctx context.Context, c *sqlConn, op operation.Operation, start time.Time) (operation.Result, error) {
	serializeStart := time.Now()
	payload, err := documentJSON(op.Document)
	serializationTime := time.Since(serializeStart)
	if err != nil {
		return operation.Failure(op.ID, op.Kind, time.Since(start), err), nil
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, payload) VALUES (%s, %s)`, a.table, a.dialect.placeholder(1), a.dialect.placeholder(2))
	wireStart := time.Now()
	_, err = c.db.ExecContext(ctx, stmt, op.Document.ID, payload)
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

func (a *Adapter) executeRead(ctx context.Context, c *sqlConn, op operation.Operation, start time.Time) (operation.Result, error) {
	stmt := fmt.Sprintf(`SELECT payload FROM %s WHERE id = %s`, a.table, a.dialect.placeholder(1))
	wireStart := time.Now()
	row := c.db.QueryRowContext(ctx, stmt, op.TargetKey)
	var payload string
	if err := row.Scan(&payload); err != nil {
		return operation.Failure(op.ID, op.Kind, time.Since(start), err), nil
	}
	wireTime := time.Since(wireStart)

	deserializeStart := time.Now()
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return operation.Failure(op.ID, op.Kind, time.Since(start), err), nil
	}
	deserializationTime := time.Since(deserializeStart)

	b := overhead.New(overhead.Fields{
		TotalLatency:        time.Since(start),
		WireReceiveTime:     wireTime,
		DeserializationTime: deserializationTime,
	})
	return operation.Success(op.ID, op.Kind, time.Since(start), &b), nil
}

func (a *Adapter) ExecuteBulk(ctx context.Context, conn connection.Connection, ops []operation.Operation, accumulator *metrics.Accumulator) (operation.BulkResult, error) {
	return adapter.BulkExecutor{Exec: a.Execute}.ExecuteBulk(ctx, conn, ops, accumulator)
}

func (a *Adapter) OverheadBreakdown(result operation.Result) (overhead.Breakdown, bool) {
	if result.Breakdown == nil {
		return overhead.Breakdown{}, false
	}
	return *result.Breakdown, true
}

func (a *Adapter) Close() error { return nil }
