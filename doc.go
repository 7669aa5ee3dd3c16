// Package crate adapts an ORM to the Crate database.
//
// The Adapter is built from three parts, each replaceable with an option:
//
//   - a schema.TypeRegistry mapping column kinds to Crate type names and
//     introspected type strings back to kinds;
//   - a schema.Builder rendering DDL (CREATE TABLE, ALTER TABLE ADD COLUMN);
//   - a sql.Visitor rendering query trees into statements with bound
//     arguments.
//
// Statements are sent to a dialect.Driver: the HTTP client of
// dialect/rest, or the PostgreSQL wire client of dialect/sql.
//
//	cfg, err := config.LoadFromPath("crate.yaml")
//	if err != nil {
//		return err
//	}
//	a, err := crate.Open(cfg)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	posts, err := schema.NewTable("posts",
//		field.ID("id"),
//		field.String("title"),
//		field.Array("tags", field.TypeString),
//	)
//	if err := a.CreateTable(ctx, posts); err != nil {
//		return err
//	}
//	// CREATE TABLE posts (id STRING PRIMARY KEY, title string, tags array(string))
//
//	id, err := a.Insert(ctx, posts, map[string]any{"title": "hello", "tags": []string{"fresh"}})
//	rs, err := a.Select(ctx, sql.Select("id").From(sql.Table("posts")).Where(sql.Any("tags", "fresh")))
//
// # Primary keys
//
// Crate has no auto-increment columns. Primary keys are string columns
// and Insert fills a missing key with the configured IDGenerator (UUID or
// ULID).
//
// # Limitations
//
// Active always reports true, and ClearCache and Reset do nothing. Column
// nullability and defaults are not supported by Crate: the builder drops
// them and logs a warning.
package crate
