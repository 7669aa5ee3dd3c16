package crate

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/dialect/sql"
	"github.com/syssam/crate/dialect/sql/schema"
	"github.com/syssam/crate/schema/field"
)

// Adapter is the surface an ORM calls to talk to Crate. It interprets
// introspected column types with a TypeRegistry, renders DDL with a
// schema.Builder and queries with a sql.Visitor, and hands every
// statement to a single wire client.
//
// An Adapter owns one wire connection and is not safe for concurrent use.
// Statements are sent once: there is no retry and no transaction.
type Adapter struct {
	drv     dialect.Driver
	types   *schema.TypeRegistry
	builder schema.Builder
	visitor *sql.Visitor
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithTypes sets the type registry used for introspection and, unless a
// builder is set, for DDL rendering.
func WithTypes(types *schema.TypeRegistry) Option {
	return func(a *Adapter) {
		a.types = types
	}
}

// WithBuilder sets the DDL builder. Default is a schema.CrateBuilder for
// the dialect of the driver.
func WithBuilder(b schema.Builder) Option {
	return func(a *Adapter) {
		a.builder = b
	}
}

// WithVisitor sets the query visitor.
func WithVisitor(v *sql.Visitor) Option {
	return func(a *Adapter) {
		a.visitor = v
	}
}

// WithIDGenerator sets the generator of missing primary keys on Insert.
// Default is UUID().
func WithIDGenerator(gen IDGenerator) Option {
	return func(a *Adapter) {
		a.ids = gen
	}
}

// WithLogger sets the logger of the adapter and of the default builder.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New returns an Adapter sending statements to drv.
//
//	drv, err := rest.Connect([]string{"localhost:4200"})
//	a := crate.New(drv)
//	cols, err := a.Columns(ctx, "posts")
func New(drv dialect.Driver, opts ...Option) *Adapter {
	a := &Adapter{drv: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if a.types == nil {
		a.types = schema.CrateTypes()
	}
	if a.builder == nil {
		a.builder = schema.NewBuilder(
			schema.WithTypes(a.types),
			schema.WithDialect(drv.Dialect()),
			schema.WithLogger(a.logger),
		)
	}
	if a.visitor == nil {
		a.visitor = sql.NewVisitor()
	}
	if a.ids == nil {
		a.ids = UUID()
	}
	return a
}

// Driver returns the wire client of the adapter.
func (a *Adapter) Driver() dialect.Driver { return a.drv }

// Types returns the type registry of the adapter.
func (a *Adapter) Types() *schema.TypeRegistry { return a.types }

// Builder returns the DDL builder of the adapter.
func (a *Adapter) Builder() schema.Builder { return a.builder }

// Active always reports true. Liveness is not tracked.
func (a *Adapter) Active() bool { return true }

// ClearCache does nothing. Nothing is cached.
func (a *Adapter) ClearCache() {}

// Reset does nothing.
func (a *Adapter) Reset() {}

// Close closes the wire client.
func (a *Adapter) Close() error {
	return a.drv.Close()
}

// Ping sends "SELECT 1" to the database.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.Query(ctx, "SELECT 1")
	return err
}

// Tables lists the tables of the connection schema.
func (a *Adapter) Tables(ctx context.Context) ([]string, error) {
	return a.drv.Tables(ctx)
}

// Columns returns the columns of a table, in ordinal order. Sub-columns
// of object columns are returned with dotted names ("meta.author"), and
// array columns carry their element kind when it can be resolved. A type
// string the registry cannot resolve is logged and its column returned
// with TypeInvalid, the raw type kept in SchemaType.
func (a *Adapter) Columns(ctx context.Context, table string) ([]*schema.Column, error) {
	fields, err := a.drv.TableStructure(ctx, table)
	if err != nil {
		return nil, err
	}
	columns := make([]*schema.Column, 0, len(fields))
	for _, f := range fields {
		name := sql.DottedName(f.Path)
		kind, err := a.types.Kind(f.Type)
		if err != nil {
			a.logger.WarnContext(ctx, "unresolved column type", "table", table, "column", name, "type", f.Type, "error", err)
			columns = append(columns, &schema.Column{
				Name:       name,
				SchemaType: map[string]string{a.drv.Dialect(): f.Type},
			})
			continue
		}
		c := &schema.Column{Name: name, Type: kind}
		if kind == field.TypeArray {
			if elem, err := a.types.ElementKind(f.Type); err == nil {
				c.ElementType = elem
			}
		}
		columns = append(columns, c)
	}
	return columns, nil
}

// Table returns the introspected definition of a table. Sub-columns are
// nested into their object column. A table without columns does not
// exist and returns a NotFoundError.
func (a *Adapter) Table(ctx context.Context, name string) (*schema.Table, error) {
	columns, err := a.Columns(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, NewNotFoundError(name)
	}
	return schema.IntrospectedTable(name, columns), nil
}

// Exec sends a statement that returns no rows. The row count is set in
// the returned result.
func (a *Adapter) Exec(ctx context.Context, query string, args ...any) (*dialect.ResultSet, error) {
	var rs dialect.ResultSet
	if err := a.drv.Exec(ctx, query, args, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Query sends a statement and reads every returned row.
func (a *Adapter) Query(ctx context.Context, query string, args ...any) (*dialect.ResultSet, error) {
	var rs dialect.ResultSet
	if err := a.drv.Query(ctx, query, args, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Render renders a query node into statement text and bind arguments.
func (a *Adapter) Render(n sql.Node) (string, []any, error) {
	return a.visitor.Render(n)
}

// Select renders the node and sends it as a query.
//
//	rs, err := a.Select(ctx, sql.Select("id", "title").
//		From(sql.Table("posts")).
//		Where(sql.Any("tags", "fresh")))
func (a *Adapter) Select(ctx context.Context, n sql.Node) (*dialect.ResultSet, error) {
	query, args, err := a.Render(n)
	if err != nil {
		return nil, err
	}
	return a.Query(ctx, query, args...)
}

// ExecNode renders the node and sends it as a statement that returns no
// rows.
func (a *Adapter) ExecNode(ctx context.Context, n sql.Node) (*dialect.ResultSet, error) {
	query, args, err := a.Render(n)
	if err != nil {
		return nil, err
	}
	return a.Exec(ctx, query, args...)
}

// Insert inserts one row into the table and returns its primary key. A
// missing primary key value is generated. Columns are inserted in the
// order of the table definition, followed by the remaining keys of the
// row in lexical order. A duplicate key is reported as a ConstraintError.
func (a *Adapter) Insert(ctx context.Context, t *schema.Table, row map[string]any) (any, error) {
	row = maps.Clone(row)
	if row == nil {
		row = make(map[string]any)
	}
	var id any
	if pk := t.PrimaryKey(); pk != nil {
		if v, ok := row[pk.Name]; !ok || v == nil || v == "" {
			row[pk.Name] = a.ids()
		}
		id = row[pk.Name]
	}
	columns := make([]string, 0, len(row))
	values := make([]any, 0, len(row))
	seen := make(map[string]bool, len(row))
	for _, c := range t.Columns {
		if v, ok := row[c.Name]; ok {
			columns, values = append(columns, c.Name), append(values, v)
			seen[c.Name] = true
		}
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !seen[k] {
			columns, values = append(columns, k), append(values, row[k])
		}
	}
	_, err := a.ExecNode(ctx, sql.Insert(t.QualifiedName()).Columns(columns...).Values(values...))
	if dialect.IsDuplicateKeyError(err) {
		return nil, NewConstraintError(fmt.Sprintf("duplicate key %v in %q", id, t.QualifiedName()), err)
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}

// Refresh makes the rows written to the table visible to queries. It is a
// no-op on dialects with read-after-write consistency.
func (a *Adapter) Refresh(ctx context.Context, table string) error {
	if a.drv.Dialect() != dialect.Crate {
		return nil
	}
	_, err := a.Exec(ctx, "REFRESH TABLE "+table)
	return err
}

// CreateTable renders the CREATE TABLE statement of t and executes it.
// Definition errors are returned before any statement is sent.
func (a *Adapter) CreateTable(ctx context.Context, t *schema.Table) error {
	ddl, err := a.builder.CreateTable(t)
	if err != nil {
		return err
	}
	return a.ddl(ctx, ddl)
}

// DropTable drops the named table.
func (a *Adapter) DropTable(ctx context.Context, name string) error {
	return a.ddl(ctx, a.builder.DropTable(name))
}

// AddColumn adds a column to an existing table. Dotted names add
// sub-columns to object columns.
func (a *Adapter) AddColumn(ctx context.Context, table string, c *schema.Column) error {
	ddl, err := a.builder.AddColumn(table, c)
	if err != nil {
		return err
	}
	return a.ddl(ctx, ddl)
}

func (a *Adapter) ddl(ctx context.Context, stmt string) error {
	a.logger.DebugContext(ctx, "executing ddl", "statement", stmt)
	_, err := a.Exec(ctx, stmt)
	return err
}

// Planner is implemented by builders that compute the statements moving a
// schema to a desired state.
type Planner interface {
	Plan(current, desired []*schema.Table, opts ...schema.ValidateOption) (*schema.Plan, error)
}

// Plan introspects every table of the connection schema and returns the
// statements adding the desired tables and columns that do not exist. No
// statement is executed.
func (a *Adapter) Plan(ctx context.Context, desired []*schema.Table, opts ...schema.ValidateOption) (*schema.Plan, error) {
	p, ok := a.builder.(Planner)
	if !ok {
		return nil, fmt.Errorf("crate: builder %T does not plan changes", a.builder)
	}
	names, err := a.Tables(ctx)
	if err != nil {
		return nil, err
	}
	current := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := a.Table(ctx, name)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		current = append(current, t)
	}
	return p.Plan(current, desired, opts...)
}

// Apply executes the statements of the plan in order and stops at the
// first failure.
func (a *Adapter) Apply(ctx context.Context, p *schema.Plan) error {
	for _, c := range p.Changes {
		if err := a.ddl(ctx, c.Cmd); err != nil {
			return err
		}
	}
	return nil
}
