package field

import (
	"errors"
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/syssam/crate/schema"
)

// A Descriptor for column configuration.
type Descriptor struct {
	Name        string              // column name.
	Type        Type                // semantic kind.
	ElementType Type                // element kind of array columns.
	PrimaryKey  bool                // primary key column.
	Nullable    *bool               // requested nullability, nil when unset.
	Default     any                 // requested default value, nil when unset.
	Behaviour   Behaviour           // column policy of object columns.
	Fields      []*Descriptor       // inline schema of object columns.
	Ref         string              // referenced table of reference columns.
	SchemaType  map[string]string   // per-dialect column type override.
	Annotations []schema.Annotation // dialect annotations.
	Err         error
}

// Fielder is implemented by the column builders.
type Fielder interface {
	Descriptor() *Descriptor
}

// Builder is the builder for all column kinds.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Bool returns a new boolean column builder.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// String returns a new string column builder.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Int returns a new integer column builder.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Float returns a new float column builder.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Bytes returns a new binary column builder.
func Bytes(name string) *Builder { return newBuilder(name, TypeBytes) }

// Time returns a new datetime column builder.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// IP returns a new ip column builder.
func IP(name string) *Builder { return newBuilder(name, TypeIP) }

// Inet is an alias of IP.
func Inet(name string) *Builder { return IP(name) }

// Array returns a new array column builder holding elements of the
// given kind. An unset (TypeInvalid) element kind is accepted here and
// rejected when the column DDL is built.
//
//	field.Array("tags", field.TypeString)
func Array(name string, elem Type) *Builder {
	b := newBuilder(name, TypeArray)
	b.desc.ElementType = elem
	if elem == TypeArray {
		b.desc.Err = fmt.Errorf("field: array %q cannot hold arrays", name)
	}
	return b
}

// Object returns a new object column builder.
//
//	field.Object("meta").Behaviour(field.Strict).Fields(
//	    field.String("author"),
//	)
func Object(name string) *Builder { return newBuilder(name, TypeObject) }

// Hstore returns an object column with the dynamic column policy.
func Hstore(name string) *Builder {
	return Object(name).Behaviour(Dynamic)
}

// ID returns the primary key column. Crate has no auto-increment, the
// application must supply a unique value on insert.
func ID(name string) *Builder {
	return String(name).PrimaryKey()
}

// References returns a string column holding the primary key of the
// referenced table. The column is named "<name>_id", and the referenced
// table is the plural of name.
//
//	field.References("author")	// author_id string, references authors.
func References(name string) *Builder {
	base := inflect.Underscore(name)
	b := String(base + "_id")
	b.desc.Ref = inflect.Pluralize(base)
	return b
}

// PrimaryKey marks the column as the table primary key.
func (b *Builder) PrimaryKey() *Builder {
	b.desc.PrimaryKey = true
	return b
}

// OfType overrides the kind of the column. It is mostly used on reference
// columns that should not be string typed.
func (b *Builder) OfType(t Type) *Builder {
	if !t.Valid() {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: invalid type %v for %q", t, b.desc.Name))
		return b
	}
	b.desc.Type = t
	return b
}

// Nullable records the requested nullability of the column.
func (b *Builder) Nullable(null bool) *Builder {
	b.desc.Nullable = &null
	return b
}

// Optional is a shorthand for Nullable(true).
func (b *Builder) Optional() *Builder {
	return b.Nullable(true)
}

// Required is a shorthand for Nullable(false).
func (b *Builder) Required() *Builder {
	return b.Nullable(false)
}

// Default records the requested default value of the column.
func (b *Builder) Default(v any) *Builder {
	b.desc.Default = v
	return b
}

// Behaviour sets the column policy of an object column.
func (b *Builder) Behaviour(p Behaviour) *Builder {
	switch {
	case b.desc.Type != TypeObject:
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: behaviour set on non-object column %q", b.desc.Name))
	case !p.Valid():
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: unknown object behaviour %q for %q", p, b.desc.Name))
	default:
		b.desc.Behaviour = p
	}
	return b
}

// Fields sets the inline schema of an object column. Nested fields may be
// scalars or arrays.
func (b *Builder) Fields(fields ...Fielder) *Builder {
	if b.desc.Type != TypeObject {
		b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: inline schema set on non-object column %q", b.desc.Name))
		return b
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			b.desc.Err = errors.Join(b.desc.Err, d.Err)
		}
		if d.Type == TypeObject {
			b.desc.Err = errors.Join(b.desc.Err, fmt.Errorf("field: nested object %q in %q is not supported", d.Name, b.desc.Name))
			continue
		}
		b.desc.Fields = append(b.desc.Fields, d)
	}
	return b
}

// SchemaType overrides the column type per dialect.
//
//	field.String("location").SchemaType(map[string]string{
//	    dialect.Crate: "geo_point",
//	})
func (b *Builder) SchemaType(types map[string]string) *Builder {
	b.desc.SchemaType = types
	return b
}

// Annotations adds dialect annotations to the column. Annotations with
// the same name are merged.
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = schema.Merge(append(b.desc.Annotations, annotations...)...)
	return b
}

// Descriptor implements the Fielder interface by returning the column descriptor.
func (b *Builder) Descriptor() *Descriptor {
	if b.desc.Name == "" && b.desc.Err == nil {
		b.desc.Err = errors.Join(b.desc.Err, errors.New("field: missing column name"))
	}
	return b.desc
}
