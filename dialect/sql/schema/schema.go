package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/dialect/sqlschema"
	entschema "github.com/syssam/crate/schema"
	"github.com/syssam/crate/schema/field"
)

// Column describes a table column.
type Column struct {
	Name            string            // column name, dotted for object sub-columns.
	Type            field.Type        // semantic kind.
	ElementType     field.Type        // element kind of array columns.
	ObjectBehaviour field.Behaviour   // column policy of object columns.
	ObjectSchema    []*Column         // inline schema of object columns, in order.
	PrimaryKey      bool              // primary key column.
	Nullable        *bool             // requested nullability, nil when unset.
	Default         any               // requested default value.
	SchemaType      map[string]string // per-dialect type override.
	Ref             string            // referenced table of reference columns.
}

// NewColumn returns the column of a field descriptor.
func NewColumn(d *field.Descriptor) (*Column, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	c := &Column{
		Name:            d.Name,
		Type:            d.Type,
		ElementType:     d.ElementType,
		ObjectBehaviour: d.Behaviour,
		PrimaryKey:      d.PrimaryKey,
		Nullable:        d.Nullable,
		Default:         d.Default,
		Ref:             d.Ref,
	}
	if len(d.SchemaType) > 0 {
		c.SchemaType = make(map[string]string, len(d.SchemaType))
		for k, v := range d.SchemaType {
			c.SchemaType[k] = v
		}
	}
	if ant, ok := sqlschema.Get(d.Annotations); ok && ant.ColumnType != "" {
		if c.SchemaType == nil {
			c.SchemaType = make(map[string]string)
		}
		if _, ok := c.SchemaType[dialect.Crate]; !ok {
			c.SchemaType[dialect.Crate] = ant.ColumnType
		}
	}
	for _, fd := range d.Fields {
		fc, err := NewColumn(fd)
		if err != nil {
			return nil, err
		}
		c.ObjectSchema = append(c.ObjectSchema, fc)
	}
	return c, nil
}

// Field returns the inline schema field of an object column.
func (c *Column) Field(name string) (*Column, bool) {
	for _, f := range c.ObjectSchema {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Table describes a table.
type Table struct {
	Name          string
	Schema        string
	Columns       []*Column
	Shards        int
	Replicas      string
	ClusteredBy   string
	PartitionedBy []string
}

// NewTable returns a table holding the columns of the given fields. The
// errors of all fields are joined.
//
//	t, err := schema.NewTable("posts",
//	    field.ID("id"),
//	    field.String("title"),
//	    field.Array("tags", field.TypeString),
//	)
func NewTable(name string, fields ...field.Fielder) (*Table, error) {
	t := &Table{Name: name}
	var errs []error
	for _, f := range fields {
		c, err := NewColumn(f.Descriptor())
		if err != nil {
			errs = append(errs, fmt.Errorf("table %q: %w", name, err))
			continue
		}
		t.Columns = append(t.Columns, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}

// Annotate applies the sqlschema annotations to the table.
func (t *Table) Annotate(ants ...entschema.Annotation) *Table {
	a, ok := sqlschema.Get(ants)
	if !ok {
		return t
	}
	if a.Table != "" {
		t.Name = a.Table
	}
	if a.Schema != "" {
		t.Schema = a.Schema
	}
	if a.Shards != 0 {
		t.Shards = a.Shards
	}
	if a.Replicas != "" {
		t.Replicas = a.Replicas
	}
	if a.ClusteredBy != "" {
		t.ClusteredBy = a.ClusteredBy
	}
	if len(a.PartitionedBy) > 0 {
		t.PartitionedBy = slices.Clone(a.PartitionedBy)
	}
	return t
}

// AddColumns appends columns to the table.
func (t *Table) AddColumns(columns ...*Column) *Table {
	t.Columns = append(t.Columns, columns...)
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary key column, or nil.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return nil
}

// QualifiedName returns the table name prefixed by its schema, if set.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// TableName returns the conventional table name of a type name.
//
//	TableName("BlogPost")	// blog_posts
func TableName(typeName string) string {
	return inflect.Pluralize(inflect.Underscore(typeName))
}

// IntrospectedTable builds a table from introspected columns. Columns
// with dotted names are nested into the inline schema of their object
// column when it is present.
func IntrospectedTable(name string, columns []*Column) *Table {
	t := &Table{Name: name}
	objects := make(map[string]*Column)
	for _, c := range columns {
		cc := *c
		cc.ObjectSchema = slices.Clone(c.ObjectSchema)
		var parent *Column
		if i := strings.LastIndexByte(c.Name, '.'); i != -1 {
			if p, ok := objects[c.Name[:i]]; ok {
				parent, cc.Name = p, c.Name[i+1:]
			}
		}
		if parent != nil {
			parent.ObjectSchema = append(parent.ObjectSchema, &cc)
		} else {
			t.Columns = append(t.Columns, &cc)
		}
		if cc.Type == field.TypeObject {
			objects[c.Name] = &cc
		}
	}
	return t
}
