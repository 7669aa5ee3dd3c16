// Package dialect defines the wire-client abstraction the Crate adapter
// delegates to, and the capabilities of the target dialects.
//
// # Dialects
//
//	dialect.Crate    = "crate"
//	dialect.Postgres = "postgres"
//
// Capabilities are modelled as flags rather than hard-coded in builders:
//
//	dialect.CapabilitiesOf(dialect.Crate).AutoIncrement // false
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tables(ctx context.Context) ([]string, error)
//	    TableStructure(ctx context.Context, table string) ([]Field, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Two drivers are provided:
//
//   - dialect/sql: PostgreSQL wire protocol through database/sql (pgx or lib/pq)
//   - dialect/rest: Crate's HTTP /_sql endpoint
//
// # Errors
//
// Drivers return *WireError for every failure of the underlying client. The
// original error stays reachable through errors.As, and the Is* helpers in
// this package classify common Crate failures (duplicate primary key,
// unknown table, ...).
package dialect
