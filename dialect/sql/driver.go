package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	// PostgreSQL wire drivers. Crate speaks the PostgreSQL protocol;
	// "pgx" and "postgres" are accepted driver names.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/syssam/crate/dialect"
)

// DefaultSchema is the schema Crate creates user tables in.
const DefaultSchema = "doc"

// Introspection queries.
const (
	tablesQuery  = "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name"
	columnsQuery = "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position"
)

// validIdentifierRe validates session setting names.
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Driver is a dialect.Driver implementation over the PostgreSQL wire
// protocol of Crate.
type Driver struct {
	Conn
	dialect string
	schema  string
}

// Option configures the Driver.
type Option func(*Driver)

// WithSchema sets the schema used by Tables and TableStructure.
func WithSchema(schema string) Option {
	return func(d *Driver) {
		d.schema = schema
	}
}

// WithDialect sets the dialect name reported by the driver. It defaults
// to dialect.Crate.
func WithDialect(name string) Option {
	return func(d *Driver) {
		d.dialect = name
	}
}

// WithPQArrays wraps slice arguments with pq.Array. It is set by Open for
// the "postgres" (lib/pq) driver.
func WithPQArrays() Option {
	return func(d *Driver) {
		d.pqArrays = true
	}
}

// NewDriver creates a new Driver with the given Conn.
func NewDriver(c Conn, opts ...Option) *Driver {
	d := &Driver{Conn: c, dialect: dialect.Crate, schema: DefaultSchema}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open opens a connection with the named database/sql driver ("pgx" or
// "postgres") and returns a Driver. The pool is limited to a single
// connection: one adapter talks over one wire connection.
//
//	drv, err := sql.Open("pgx", "postgres://crate@localhost:5432/doc")
func Open(driverName, source string, opts ...Option) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, &dialect.WireError{Op: "connect", Err: err}
	}
	if driverName == "postgres" {
		opts = append([]Option{WithPQArrays()}, opts...)
	}
	return OpenDB(db, opts...), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(db *sql.DB, opts ...Option) *Driver {
	db.SetMaxOpenConns(1)
	return NewDriver(Conn{ExecQuerier: db}, opts...)
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect implements the dialect.Driver interface.
func (d *Driver) Dialect() string {
	return d.dialect
}

// Schema returns the schema used for introspection.
func (d *Driver) Schema() string {
	return d.schema
}

// Ping verifies the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.DB().PingContext(ctx); err != nil {
		return &dialect.WireError{Op: "connect", Err: err}
	}
	return nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Tables implements the dialect.Driver interface.
func (d *Driver) Tables(ctx context.Context) ([]string, error) {
	var rs dialect.ResultSet
	if err := d.Query(ctx, tablesQuery, []any{d.schema}, &rs); err != nil {
		return nil, err
	}
	names := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		names = append(names, asString(row[0]))
	}
	return names, nil
}

// TableStructure implements the dialect.Driver interface.
func (d *Driver) TableStructure(ctx context.Context, table string) ([]dialect.Field, error) {
	var rs dialect.ResultSet
	if err := d.Query(ctx, columnsQuery, []any{d.schema, table}, &rs); err != nil {
		return nil, err
	}
	fields := make([]dialect.Field, 0, rs.Len())
	for _, row := range rs.Rows {
		fields = append(fields, dialect.Field{Path: asString(row[0]), Type: asString(row[1])})
	}
	return fields, nil
}

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds session settings to apply before every statement.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds a session setting applied with
// SET SESSION before the statement, and RESET after it.
//
//	ctx = sql.WithVar(ctx, "search_path", "blog")
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	vars := make([]struct{ k, v string }, len(sv.vars), len(sv.vars)+1)
	copy(vars, sv.vars)
	vars = append(vars, struct{ k, v string }{k: name, v: value})
	return context.WithValue(ctx, ctxVarsKey{}, sessionVars{vars: vars})
}

// VarFromContext returns the session setting value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for i := len(sv.vars) - 1; i >= 0; i-- {
		if sv.vars[i].k == name {
			return sv.vars[i].v, true
		}
	}
	return "", false
}

// WithIntVar calls WithVar with the string representation of the value.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier.
type Conn struct {
	ExecQuerier
	// pqArrays wraps slice arguments with pq.Array. lib/pq does not
	// encode Go slices as arrays.
	pqArrays bool
}

// Exec implements the dialect.Exec method. v may be nil, a *Result or a
// *dialect.ResultSet (only RowCount is set).
func (c Conn) Exec(ctx context.Context, query string, args, v any) (rerr error) {
	argv, err := c.argsOf(args)
	if err != nil {
		return err
	}
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return &dialect.WireError{Op: "exec", Query: query, Err: fmt.Errorf("set session vars: %w", err)}
	}
	if cf != nil {
		defer func() { rerr = errors.Join(rerr, cf()) }()
	}
	switch v := v.(type) {
	case nil, *Result, *dialect.ResultSet:
		res, err := ex.ExecContext(ctx, query, argv...)
		if err != nil {
			return &dialect.WireError{Op: "exec", Query: query, Err: err}
		}
		switch v := v.(type) {
		case *Result:
			*v = res
		case *dialect.ResultSet:
			n, err := res.RowsAffected()
			if err != nil {
				return &dialect.WireError{Op: "exec", Query: query, Err: err}
			}
			*v = dialect.ResultSet{RowCount: n}
		}
	default:
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result or *dialect.ResultSet", v)
	}
	return nil
}

// Query implements the dialect.Query method. v may be a *Rows, left open
// for the caller, or a *dialect.ResultSet that is filled with every row.
func (c Conn) Query(ctx context.Context, query string, args, v any) (rerr error) {
	switch v.(type) {
	case *Rows, *dialect.ResultSet:
	default:
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows or *dialect.ResultSet", v)
	}
	argv, err := c.argsOf(args)
	if err != nil {
		return err
	}
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return &dialect.WireError{Op: "query", Query: query, Err: fmt.Errorf("set session vars: %w", err)}
	}
	rows, err := ex.QueryContext(ctx, query, argv...)
	if err != nil {
		if cf != nil {
			err = errors.Join(err, cf())
		}
		return &dialect.WireError{Op: "query", Query: query, Err: err}
	}
	var scanner ColumnScanner = rows
	if cf != nil {
		scanner = rowsWithCloser{rows, cf}
	}
	switch v := v.(type) {
	case *Rows:
		*v = Rows{scanner}
	case *dialect.ResultSet:
		defer func() { rerr = errors.Join(rerr, scanner.Close()) }()
		if err := ScanResultSet(scanner, v); err != nil {
			return &dialect.WireError{Op: "query", Query: query, Err: err}
		}
	}
	return nil
}

func (c Conn) argsOf(args any) ([]any, error) {
	switch args := args.(type) {
	case nil:
		return nil, nil
	case []any:
		if c.pqArrays {
			return pqArrays(args), nil
		}
		return args, nil
	default:
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
}

// pqArrays returns a copy of args with the slices, other than []byte,
// wrapped with pq.Array.
func pqArrays(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
		if _, ok := a.([]byte); ok || a == nil {
			continue
		}
		if reflect.TypeOf(a).Kind() == reflect.Slice {
			out[i] = pq.Array(a)
		}
	}
	return out
}

// ScanResultSet reads every row of rows into rs.
func ScanResultSet(rows ColumnScanner, rs *dialect.ResultSet) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	out := dialect.ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	out.RowCount = int64(len(out.Rows))
	*rs = out
	return nil
}

// maySetVars applies the session settings before executing a statement.
// The settings are applied on a dedicated connection that is reset and
// released by the returned close function.
func (c Conn) maySetVars(ctx context.Context) (ExecQuerier, func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return c, nil, nil
	}
	var (
		ex    ExecQuerier  // Underlying ExecQuerier.
		cf    func() error // Close function.
		reset []string     // Reset settings.
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.Conn:
		ex = e
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, cf = conn, conn.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ExecQuerier type: %T", c.ExecQuerier)
	}
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			if cf != nil {
				_ = cf()
			}
			return nil, nil, fmt.Errorf("invalid session setting name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			reset = append(reset, "RESET "+s.k)
			seen[s.k] = struct{}{}
		}
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET SESSION %s = %s", s.k, quote(s.v))); err != nil {
			if cf != nil {
				err = errors.Join(err, cf())
			}
			return nil, nil, err
		}
	}
	// Reset with a fresh context so a canceled statement still restores
	// the connection before it returns to the pool.
	if cls := cf; cf != nil {
		cf = func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(cleanupCtx, q); err != nil {
					return errors.Join(err, cls())
				}
			}
			return cls()
		}
	}
	return ex, cf, nil
}

var _ dialect.Driver = (*Driver)(nil)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullString is an alias to sql.NullString.
	NullString = sql.NullString
	// NullTime is an alias to sql.NullTime.
	NullTime = sql.NullTime
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// rowsWithCloser wraps the ColumnScanner interface with a custom Close hook.
type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

// Close closes the underlying ColumnScanner and calls the custom closer.
func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}

// DriverName returns the database/sql driver registered for the given
// configuration name.
func DriverName(name string) string {
	switch strings.ToLower(name) {
	case "", "pgx", "pg":
		return "pgx"
	case "postgres", "pq", "lib/pq":
		return "postgres"
	default:
		return name
	}
}
