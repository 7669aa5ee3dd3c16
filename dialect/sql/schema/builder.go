package schema

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/dialect/sql"
	"github.com/syssam/crate/schema/field"
)

// Builder renders DDL statements of table and column definitions.
type Builder interface {
	// ColumnDDL renders the definition of one column.
	ColumnDDL(c *Column) (string, error)
	// CreateTable renders the CREATE TABLE statement of a table.
	CreateTable(t *Table) (string, error)
	// DropTable renders the DROP TABLE statement of a table.
	DropTable(name string) string
	// AddColumn renders the ALTER TABLE statement adding a column.
	AddColumn(table string, c *Column) (string, error)
}

// CrateBuilder is the Builder of Crate DDL.
//
// Crate has no auto-increment columns. Unless the capabilities say
// otherwise, primary keys are rendered as STRING PRIMARY KEY and the
// application supplies a unique value on insert. Column options the
// dialect does not accept (nullability, defaults) are dropped with a
// warning instead of failing the statement.
type CrateBuilder struct {
	types   *TypeRegistry
	dialect string
	caps    dialect.Capabilities
	logger  *slog.Logger
}

// BuilderOption configures the CrateBuilder.
type BuilderOption func(*CrateBuilder)

// WithTypes sets the type registry. Default is CrateTypes().
func WithTypes(types *TypeRegistry) BuilderOption {
	return func(b *CrateBuilder) {
		b.types = types
	}
}

// WithDialect sets the target dialect and its capabilities.
func WithDialect(name string) BuilderOption {
	return func(b *CrateBuilder) {
		b.dialect = name
		b.caps = dialect.CapabilitiesOf(name)
	}
}

// WithCapabilities overrides the capabilities of the target dialect.
func WithCapabilities(caps dialect.Capabilities) BuilderOption {
	return func(b *CrateBuilder) {
		b.caps = caps
	}
}

// WithLogger sets the logger warnings are written to.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *CrateBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder returns a CrateBuilder.
//
//	b := schema.NewBuilder()
//	ddl, err := b.CreateTable(posts)
//	// CREATE TABLE posts (id STRING PRIMARY KEY, title string, tags array(string))
func NewBuilder(opts ...BuilderOption) *CrateBuilder {
	b := &CrateBuilder{
		types:   CrateTypes(),
		dialect: dialect.Crate,
		caps:    dialect.CapabilitiesOf(dialect.Crate),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Types returns the type registry of the builder.
func (b *CrateBuilder) Types() *TypeRegistry {
	return b.types
}

// Capabilities returns the capabilities of the target dialect.
func (b *CrateBuilder) Capabilities() dialect.Capabilities {
	return b.caps
}

// ColumnDDL renders the definition of one column.
//
//	b.ColumnDDL(&Column{Name: "tags", Type: field.TypeArray, ElementType: field.TypeString})
//	// tags array(string)
func (b *CrateBuilder) ColumnDDL(c *Column) (string, error) {
	return b.column("", c)
}

// CreateTable validates the table and renders its CREATE TABLE statement.
// Errors of the validation are joined and returned before rendering.
func (b *CrateBuilder) CreateTable(t *Table) (string, error) {
	if err := ValidateTable(t).Err(); err != nil {
		return "", err
	}
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def, err := b.column(t.Name, c)
		if err != nil {
			return "", err
		}
		cols = append(cols, def)
	}
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(t.QualifiedName())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(")")
	b.tableOptions(&sb, t)
	return sb.String(), nil
}

// DropTable renders the DROP TABLE statement of a table.
func (b *CrateBuilder) DropTable(name string) string {
	return "DROP TABLE " + name
}

// AddColumn renders the ALTER TABLE statement adding a column. Dotted
// names add a sub-column to an object column:
//
//	ALTER TABLE posts ADD COLUMN meta['views'] integer
func (b *CrateBuilder) AddColumn(table string, c *Column) (string, error) {
	def, err := b.column(table, c)
	if err != nil {
		return "", err
	}
	if name, keys := sql.SplitPath(c.Name); len(keys) > 0 {
		path := name
		for _, k := range keys {
			path += "['" + strings.ReplaceAll(k, "'", "''") + "']"
		}
		def = path + strings.TrimPrefix(def, c.Name)
	}
	return "ALTER TABLE " + table + " ADD COLUMN " + def, nil
}

func (b *CrateBuilder) column(table string, c *Column) (string, error) {
	if c.Type == field.TypeArray && !c.ElementType.Valid() {
		return "", &MissingArrayTypeError{Column: c.Name}
	}
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	if c.PrimaryKey {
		typ := "STRING"
		if b.caps.AutoIncrement {
			t, err := b.columnType(table, c.Name, c)
			if err != nil {
				return "", err
			}
			typ = t
		}
		sb.WriteString(typ)
		sb.WriteString(" PRIMARY KEY")
	} else {
		typ, err := b.columnType(table, c.Name, c)
		if err != nil {
			return "", err
		}
		sb.WriteString(typ)
	}
	if c.Nullable != nil {
		switch {
		case !b.caps.NullConstraints:
			b.dropped(table, c.Name, "nullable")
		case !*c.Nullable && !c.PrimaryKey:
			sb.WriteString(" NOT NULL")
		}
	}
	if c.Default != nil {
		if !b.caps.ColumnDefaults {
			b.dropped(table, c.Name, "default")
		} else {
			v, _, err := sql.Render(sql.Lit(c.Default))
			if err != nil {
				return "", fmt.Errorf("crate: default of column %q: %w", c.Name, err)
			}
			sb.WriteString(" DEFAULT ")
			sb.WriteString(v)
		}
	}
	return sb.String(), nil
}

// columnType renders the type of a column, without constraints. The path
// names the column in warnings about dropped options of nested fields.
func (b *CrateBuilder) columnType(table, path string, c *Column) (string, error) {
	if t := c.SchemaType[b.dialect]; t != "" {
		return t, nil
	}
	switch c.Type {
	case field.TypeArray:
		if !c.ElementType.Valid() {
			return "", &MissingArrayTypeError{Column: c.Name}
		}
		elem, err := b.types.DialectName(c.ElementType)
		if err != nil {
			return "", err
		}
		return "array(" + elem + ")", nil
	case field.TypeObject:
		return b.objectType(table, path, c)
	default:
		return b.types.DialectName(c.Type)
	}
}

func (b *CrateBuilder) objectType(table, path string, c *Column) (string, error) {
	typ, err := b.types.DialectName(field.TypeObject)
	if err != nil {
		return "", err
	}
	if c.ObjectBehaviour != "" {
		typ += "(" + string(c.ObjectBehaviour) + ")"
	}
	if len(c.ObjectSchema) == 0 {
		return typ, nil
	}
	fields := make([]string, 0, len(c.ObjectSchema))
	for _, f := range c.ObjectSchema {
		name := path + "." + f.Name
		ft, err := b.columnType(table, name, f)
		if err != nil {
			return "", err
		}
		// Inline object schemas carry types only.
		if f.Nullable != nil {
			b.dropped(table, name, "nullable")
		}
		if f.Default != nil {
			b.dropped(table, name, "default")
		}
		fields = append(fields, f.Name+" "+ft)
	}
	return typ + " as (" + strings.Join(fields, ", ") + ")", nil
}

func (b *CrateBuilder) tableOptions(sb *strings.Builder, t *Table) {
	if b.dialect != dialect.Crate {
		if t.ClusteredBy != "" || t.Shards > 0 || t.Replicas != "" || len(t.PartitionedBy) > 0 {
			b.dropped(t.Name, "", "table settings")
		}
		return
	}
	switch {
	case t.ClusteredBy != "" && t.Shards > 0:
		fmt.Fprintf(sb, " CLUSTERED BY (%s) INTO %d SHARDS", t.ClusteredBy, t.Shards)
	case t.ClusteredBy != "":
		fmt.Fprintf(sb, " CLUSTERED BY (%s)", t.ClusteredBy)
	case t.Shards > 0:
		fmt.Fprintf(sb, " CLUSTERED INTO %d SHARDS", t.Shards)
	}
	if len(t.PartitionedBy) > 0 {
		sb.WriteString(" PARTITIONED BY (" + strings.Join(t.PartitionedBy, ", ") + ")")
	}
	if t.Replicas != "" {
		sb.WriteString(" WITH (number_of_replicas = '" + strings.ReplaceAll(t.Replicas, "'", "''") + "')")
	}
}

func (b *CrateBuilder) dropped(table, column, option string) {
	b.logger.Warn("dropping unsupported option", "dialect", b.dialect, "table", table, "column", column, "option", option)
}

var _ Builder = (*CrateBuilder)(nil)
