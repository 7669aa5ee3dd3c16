// Package field provides the semantic column kinds and fluent builders
// used to declare table columns.
//
// # Kinds
//
// A kind names what a column holds, independent of the dialect spelling:
//
//	field.TypeBool     // boolean
//	field.TypeString   // string
//	field.TypeInt      // integer
//	field.TypeFloat    // float
//	field.TypeBytes    // binary
//	field.TypeTime     // datetime
//	field.TypeObject   // object
//	field.TypeArray    // array
//	field.TypeIP       // ip
//
// # Builders
//
//	field.ID("id")                          // application supplied primary key
//	field.String("title")
//	field.Array("tags", field.TypeString)   // element kind is required
//	field.Object("meta").
//	    Behaviour(field.Strict).
//	    Fields(field.String("author"), field.Array("votes", field.TypeInt))
//	field.Hstore("attrs")                   // object(dynamic)
//	field.References("author")              // author_id string
//
// # Unsupported options
//
// Nullable and Default are recorded on the descriptor so that the schema
// builder can report them. Crate ignores both; the builder drops them
// with a warning.
package field
