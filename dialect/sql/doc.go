// Package sql provides the PostgreSQL wire client for Crate and the query
// visitor that renders query trees into Crate SQL.
//
// # Driver
//
// Driver implements dialect.Driver over database/sql. The "pgx" and
// "postgres" (lib/pq) drivers are registered by this package:
//
//	drv, err := sql.Open("pgx", "postgres://crate@localhost:5432/doc")
//	tables, err := drv.Tables(ctx)
//
// The connection pool is limited to one connection. Failures of the
// database are returned as *dialect.WireError.
//
// # Query trees
//
// Queries are trees of Node values rendered by a Visitor:
//
//	q := sql.Select("id", "title").
//	    From(sql.Table("posts")).
//	    Where(sql.EQ("author", "amy"), sql.Any("tags", "fresh")).
//	    OrderBy(sql.Desc("created_at")).
//	    Limit(10)
//	query, args, err := sql.Render(q)
//	// SELECT "id", "title" FROM "posts" WHERE ("author" = $1 AND $2 = ANY("tags"))
//	// ORDER BY "created_at" DESC LIMIT 10
//
// Identifiers are double-quoted and object paths use subscripts:
//
//	sql.C("meta.author")	// "meta"['author']
//
// Values are bound as parameters (Param) unless wrapped in a Literal,
// which is quoted inline. Nodes the Visitor does not know are rejected
// with an *UnsupportedExpressionError.
//
// # Predicates
//
//	sql.EQ("name", "john")          // "name" = $1
//	sql.InValues("id", "1", "2")    // "id" IN ($1, $2)
//	sql.Contains("title", "go")     // "title" LIKE $1 ('%go%')
//	sql.Any("tags", "fresh")        // $1 = ANY("tags")
//	sql.Or(sql.Null("a"), sql.NotNull("b"))
//
// Typed column helpers:
//
//	var Tags = sql.ArrayField[string]("tags")
//	Tags.Contains("fresh")
//
// # Statistics
//
// StatsDriver counts statements, errors and slow statements of any
// dialect.Driver, and Collector exports the counters to Prometheus.
// DebugDriver logs every statement with log/slog.
package sql
