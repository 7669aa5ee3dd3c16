package dialect

import (
	"context"
	"errors"
	"fmt"
)

// Dialect names.
const (
	Crate    = "crate"
	Postgres = "postgres"
)

// Capabilities describes what a target dialect supports natively. Schema
// builders consult it instead of hard-coding dialect limitations.
type Capabilities struct {
	// AutoIncrement reports if the dialect can generate primary key values
	// (identity or sequence columns). When false, primary keys are string
	// columns the application populates.
	AutoIncrement bool
	// Transactions reports if statements can be grouped in a transaction.
	Transactions bool
	// NullConstraints reports if NOT NULL / NULL column constraints are accepted.
	NullConstraints bool
	// ColumnDefaults reports if DEFAULT column clauses are accepted.
	ColumnDefaults bool
}

// CapabilitiesOf returns the capabilities of the named dialect.
func CapabilitiesOf(name string) Capabilities {
	switch name {
	case Postgres:
		return Capabilities{AutoIncrement: true, Transactions: true, NullConstraints: true, ColumnDefaults: true}
	default:
		return Capabilities{}
	}
}

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. A *ResultSet is accepted by
	// every driver of this module.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface of the wire client the adapter delegates to.
type Driver interface {
	ExecQuerier
	// Tables lists the tables of the configured schema.
	Tables(ctx context.Context) ([]string, error)
	// TableStructure returns the raw column paths and dialect type strings
	// of a table, in ordinal order.
	TableStructure(ctx context.Context, table string) ([]Field, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Field is a raw column description as reported by the database.
// Path may be a bracket path into an object column (e.g. meta['author']).
type Field struct {
	Path string
	Type string
}

// ResultSet is a fully read query result.
type ResultSet struct {
	Columns  []string
	Rows     [][]any
	RowCount int64
}

// Len returns the number of rows in the result.
func (r *ResultSet) Len() int {
	return len(r.Rows)
}

// Map returns the i-th row keyed by column name.
func (r *ResultSet) Map(i int) map[string]any {
	m := make(map[string]any, len(r.Columns))
	for j, c := range r.Columns {
		if j < len(r.Rows[i]) {
			m[c] = r.Rows[i][j]
		}
	}
	return m
}

// ErrWire is matched by every WireError.
var ErrWire = errors.New("crate: wire error")

// WireError is returned by the wire clients for connection and execution
// failures. The driver error is kept unchanged and reachable with
// errors.As.
type WireError struct {
	Op    string // exec, query, connect.
	Query string
	Err   error
}

// Error implements the error interface.
func (e *WireError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("crate: %s %q: %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("crate: %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *WireError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrWire.
func (e *WireError) Is(target error) bool {
	return target == ErrWire
}

// IsWireError returns true if the error is a WireError.
func IsWireError(err error) bool {
	if err == nil {
		return false
	}
	var e *WireError
	return errors.As(err, &e)
}
