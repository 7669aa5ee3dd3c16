// Package mixin provides reusable sets of column declarations.
//
// A mixin is embedded in the field list of several tables:
//
//	posts, err := schema.NewTable("posts", mixin.Fields(
//	    []mixin.Mixin{mixin.ID{}, mixin.Time{}},
//	    field.String("title"),
//	)...)
//
// Crate has no column defaults, so the time columns of the built-in mixins
// are filled by the application on insert.
package mixin

import (
	"github.com/syssam/crate/schema/field"
)

// Mixin is a set of columns shared by several tables.
type Mixin interface {
	Fields() []field.Fielder
}

// Schema is the default implementation of Mixin. It should be embedded in
// custom mixins.
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []field.Fielder {
//	    return []field.Fielder{field.String("created_by")}
//	}
type Schema struct{}

// Fields returns the columns of the mixin.
func (Schema) Fields() []field.Fielder { return nil }

var _ Mixin = (*Schema)(nil)

// Fields returns the columns of the mixins, in order, followed by the
// given fields.
func Fields(mixins []Mixin, fields ...field.Fielder) []field.Fielder {
	var out []field.Fielder
	for _, m := range mixins {
		out = append(out, m.Fields()...)
	}
	return append(out, fields...)
}

// ID adds the "id" string primary key.
type ID struct {
	Schema
}

// Fields returns the id column.
func (ID) Fields() []field.Fielder {
	return []field.Fielder{field.ID("id")}
}

// Time adds the created_at and updated_at timestamp columns.
type Time struct {
	Schema
}

// Fields returns the time tracking columns.
func (Time) Fields() []field.Fielder {
	return []field.Fielder{
		field.Time("created_at"),
		field.Time("updated_at"),
	}
}

// CreateTime adds only the created_at column.
type CreateTime struct {
	Schema
}

// Fields returns the created_at column.
func (CreateTime) Fields() []field.Fielder {
	return []field.Fielder{field.Time("created_at")}
}

// SoftDelete adds the deleted_at column. Rows with a deleted_at value are
// considered deleted.
type SoftDelete struct {
	Schema
}

// Fields returns the deleted_at column.
func (SoftDelete) Fields() []field.Fielder {
	return []field.Fielder{field.Time("deleted_at").Optional()}
}
