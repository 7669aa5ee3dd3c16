// Package sqlschema provides Crate specific annotations for table and
// column declarations.
//
// Column annotations:
//
//	field.String("location").Annotations(sqlschema.ColumnType("geo_point"))
//
// Table annotations:
//
//	schema.NewTable("posts", fields...).Annotate(
//	    sqlschema.ClusteredBy("id", 6),
//	    sqlschema.Replicas("0-1"),
//	)
//
// Both styles of ent's entsql package are supported, functional
// constructors and struct literals:
//
//	sqlschema.Annotation{Shards: 6, Replicas: "1"}
package sqlschema

import (
	"slices"

	"github.com/syssam/crate/schema"
)

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// Annotation holds Crate settings of tables and columns.
type Annotation struct {
	// Table overrides the table name.
	Table string

	// Schema sets the schema the table lives in.
	Schema string

	// ColumnType sets a custom column type, rendered verbatim.
	ColumnType string

	// Shards sets the number of shards of the table.
	Shards int

	// Replicas sets the number_of_replicas table setting, e.g. "1" or "0-all".
	Replicas string

	// ClusteredBy sets the routing column of the table.
	ClusteredBy string

	// PartitionedBy sets the partition columns of the table.
	PartitionedBy []string
}

// Name implements schema.Annotation.
func (Annotation) Name() string {
	return AnnotationName
}

// Merge implements schema.Merger. Non-zero values of other override the
// values of a.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	var o Annotation
	switch v := other.(type) {
	case Annotation:
		o = v
	case *Annotation:
		if v == nil {
			return a
		}
		o = *v
	default:
		return a
	}
	if o.Table != "" {
		a.Table = o.Table
	}
	if o.Schema != "" {
		a.Schema = o.Schema
	}
	if o.ColumnType != "" {
		a.ColumnType = o.ColumnType
	}
	if o.Shards != 0 {
		a.Shards = o.Shards
	}
	if o.Replicas != "" {
		a.Replicas = o.Replicas
	}
	if o.ClusteredBy != "" {
		a.ClusteredBy = o.ClusteredBy
	}
	if len(o.PartitionedBy) > 0 {
		a.PartitionedBy = slices.Clone(o.PartitionedBy)
	}
	return a
}

var (
	_ schema.Annotation = (*Annotation)(nil)
	_ schema.Merger     = Annotation{}
)

// Table sets the table name.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// Schema sets the schema of the table.
func Schema(name string) Annotation {
	return Annotation{Schema: name}
}

// ColumnType sets a custom column type.
//
//	field.String("location").Annotations(sqlschema.ColumnType("geo_point"))
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// Shards sets the number of shards.
func Shards(n int) Annotation {
	return Annotation{Shards: n}
}

// Replicas sets the number of replicas.
func Replicas(r string) Annotation {
	return Annotation{Replicas: r}
}

// ClusteredBy sets the routing column and, when shards > 0, the number
// of shards.
func ClusteredBy(column string, shards int) Annotation {
	return Annotation{ClusteredBy: column, Shards: shards}
}

// PartitionedBy sets the partition columns.
func PartitionedBy(columns ...string) Annotation {
	return Annotation{PartitionedBy: columns}
}

// Get merges the SQL annotations found in ants. It returns false if
// there are none.
func Get(ants []schema.Annotation) (Annotation, bool) {
	var (
		a     Annotation
		found bool
	)
	for _, ant := range ants {
		if ant == nil || ant.Name() != AnnotationName {
			continue
		}
		if m, ok := a.Merge(ant).(Annotation); ok {
			a, found = m, true
		}
	}
	return a, found
}
