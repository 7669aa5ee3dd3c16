// Package schema maps semantic column kinds to Crate types and renders
// table definitions into Crate DDL.
//
// # Types
//
// A TypeRegistry maps kinds to dialect type names and resolves the type
// strings reported by information_schema back to kinds:
//
//	r := schema.CrateTypes()
//	r.DialectName(field.TypeTime)   // "timestamp"
//	r.Kind("string_array")          // field.TypeArray
//	r.Kind("object")                // field.TypeObject
//	r.Kind("bigint")                // field.TypeInt
//
// Array and object types are recognized by substring, before primitive
// type names are matched.
//
// # DDL
//
// Tables are declared with the field builders, or loaded from YAML with
// LoadTables, and rendered by a Builder:
//
//	posts, err := schema.NewTable("posts",
//	    field.ID("id"),
//	    field.String("title"),
//	    field.Array("tags", field.TypeString),
//	    field.Object("meta").Behaviour(field.Strict).Fields(
//	        field.String("author"),
//	    ),
//	)
//	ddl, err := schema.NewBuilder().CreateTable(posts)
//	// CREATE TABLE posts (id STRING PRIMARY KEY, title string,
//	// tags array(string), meta object(strict) as (author string))
//
// Crate has no auto-increment, primary keys are always string columns
// the application fills. Nullability and default options are dropped
// with a warning.
//
// # Plans
//
// Plan compares introspected tables with desired ones and returns the
// statements adding what is missing. WritePlan stores them in an atlas
// migration directory.
package schema
