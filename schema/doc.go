// Package schema holds the pieces shared by column declarations and
// dialect specific options.
//
//   - [field]: column declaration builders and semantic kinds
//   - [github.com/syssam/crate/dialect/sqlschema]: Crate specific annotations
//
// # Declaring columns
//
//	fields := []field.Fielder{
//	    field.ID("id"),
//	    field.String("title").Optional(),
//	    field.Array("tags", field.TypeString),
//	    field.Object("meta").Behaviour(field.Strict).Fields(
//	        field.String("author"),
//	        field.Array("scores", field.TypeInt),
//	    ),
//	}
//
// The fields are turned into table definitions and DDL by the
// dialect/sql/schema package.
//
// # Annotations
//
// Annotations carry options the column model does not describe. Annotations
// sharing a name are merged by Merge; when the annotation implements Merger
// the values accumulate, otherwise the last one wins.
package schema
