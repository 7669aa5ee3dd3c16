package sql

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		node      Node
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "any_match",
			node:      Select().From(Table("posts")).Where(Any("tags", "fresh")),
			wantQuery: `SELECT * FROM "posts" WHERE $1 = ANY("tags")`,
			wantArgs:  []any{"fresh"},
		},
		{
			name:      "any_match_literal",
			node:      &AnyMatch{Value: Lit("fresh"), Column: C("tags")},
			wantQuery: `'fresh' = ANY("tags")`,
		},
		{
			name:      "columns_and_predicates",
			node:      Select("id", "title").From(Table("posts")).Where(EQ("author", "amy"), GT("votes", 10)),
			wantQuery: `SELECT "id", "title" FROM "posts" WHERE ("author" = $1 AND "votes" > $2)`,
			wantArgs:  []any{"amy", 10},
		},
		{
			name:      "object_path",
			node:      Select("meta.author", "meta['stats']['views']").From(Table("doc.posts")),
			wantQuery: `SELECT "meta"['author'], "meta"['stats']['views'] FROM "doc"."posts"`,
		},
		{
			name: "join_order_limit",
			node: func() Node {
				p, c := Table("posts").As("p"), Table("comments").As("c")
				return SelectExpr(p.C("id"), As(Fn("count", c.C("id")), "n")).
					From(p).
					LeftJoin(c, &BinaryOp{Op: "=", Left: c.C("post_id"), Right: p.C("id")}).
					GroupByExpr(p.C("id")).
					OrderBy(Desc("n"), &Order{Expr: C("id"), Nulls: "last"}).
					Limit(10).
					Offset(20)
			}(),
			wantQuery: `SELECT "p"."id", count("c"."id") AS "n" FROM "posts" AS "p" LEFT JOIN "comments" AS "c" ON "c"."post_id" = "p"."id" GROUP BY "p"."id" ORDER BY "n" DESC, "id" NULLS LAST LIMIT 10 OFFSET 20`,
		},
		{
			name:      "distinct_having",
			node:      SelectExpr(C("author"), Fn("count", Star())).Distinct().From(Table("posts")).GroupBy("author").Having(&BinaryOp{Op: ">", Left: Fn("count", Star()), Right: P(1)}),
			wantQuery: `SELECT DISTINCT "author", count(*) FROM "posts" GROUP BY "author" HAVING count(*) > $1`,
			wantArgs:  []any{1},
		},
		{
			name:      "in_not_null_or",
			node:      Or(InValues("id", "1", "2"), And(NotNull("title"), Negate(Null("body")))),
			wantQuery: `("id" IN ($1, $2) OR ("title" IS NOT NULL AND NOT ("body" IS NULL)))`,
			wantArgs:  []any{"1", "2"},
		},
		{
			name:      "empty_in",
			node:      And(InValues[string]("id"), NotInValues[int]("votes")),
			wantQuery: `(FALSE AND TRUE)`,
		},
		{
			name:      "raw",
			node:      Select().From(Table("posts")).Where(Expr("date_trunc('day', created_at) > ?", "2024-01-01"), EQ("id", "1")),
			wantQuery: `SELECT * FROM "posts" WHERE (date_trunc('day', created_at) > $1 AND "id" = $2)`,
			wantArgs:  []any{"2024-01-01", "1"},
		},
		{
			name:      "nested_binary",
			node:      &BinaryOp{Op: ">", Left: &BinaryOp{Op: "+", Left: C("a"), Right: Lit(1)}, Right: P(2)},
			wantQuery: `("a" + 1) > $1`,
			wantArgs:  []any{2},
		},
		{
			name:      "subquery",
			node:      Select("id").From(Table("posts")).Where(&In{Expr: C("author_id"), Values: []any{Select("id").From(Table("authors")).Where(EQ("name", "amy"))}}),
			wantQuery: `SELECT "id" FROM "posts" WHERE "author_id" IN ((SELECT "id" FROM "authors" WHERE "name" = $1))`,
			wantArgs:  []any{"amy"},
		},
		{
			name:      "insert",
			node:      Insert("posts").Columns("id", "title", "tags").Values("1", "hello", []string{"go"}).Values("2", Lit("world"), nil),
			wantQuery: `INSERT INTO "posts" ("id", "title", "tags") VALUES ($1, $2, $3), ($4, 'world', $5)`,
			wantArgs:  []any{"1", "hello", []string{"go"}, "2", nil},
		},
		{
			name:      "insert_on_conflict",
			node:      Insert("posts").Columns("id", "title").Values("1", "hello").OnConflictUpdate([]string{"id"}, "title").Returning("id"),
			wantQuery: `INSERT INTO "posts" ("id", "title") VALUES ($1, $2) ON CONFLICT ("id") DO UPDATE SET "title" = excluded."title" RETURNING "id"`,
			wantArgs:  []any{"1", "hello"},
		},
		{
			name:      "insert_do_nothing",
			node:      Insert("posts").Columns("id").Values("1").OnConflictDoNothing("id"),
			wantQuery: `INSERT INTO "posts" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`,
			wantArgs:  []any{"1"},
		},
		{
			name:      "update",
			node:      Update("posts").Set("title", "new").Set("meta['views']", Expr("meta['views'] + ?", 1)).Where(EQ("id", "1")),
			wantQuery: `UPDATE "posts" SET "title" = $1, "meta"['views'] = meta['views'] + $2 WHERE "id" = $3`,
			wantArgs:  []any{"new", 1, "1"},
		},
		{
			name:      "delete",
			node:      Delete("posts").Where(HasPrefix("title", "100%")),
			wantQuery: `DELETE FROM "posts" WHERE "title" LIKE $1`,
			wantArgs:  []any{`100\%%`},
		},
		{
			name:      "quoted_identifier",
			node:      C(`we"ird`),
			wantQuery: `"we""ird"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRenderQuestionPlaceholder(t *testing.T) {
	v := NewVisitor(WithPlaceholder(Question))
	query, args, err := v.Render(Select().From(Table("posts")).Where(Any("tags", "fresh"), EQ("id", "1")))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "posts" WHERE (? = ANY("tags") AND "id" = ?)`, query)
	assert.Equal(t, []any{"fresh", "1"}, args)
}

func TestRenderAnyMatchBindsFirst(t *testing.T) {
	query, args, err := Render(Any("tags", "fresh"))
	require.NoError(t, err)
	assert.Equal(t, `$1 = ANY("tags")`, query)
	require.Len(t, args, 1)
	assert.Equal(t, "fresh", args[0])
}

func TestRenderLiterals(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	type label string
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"it's", `'it''s'`},
		{true, "TRUE"},
		{false, "FALSE"},
		{42, "42"},
		{int64(-7), "-7"},
		{int32(3), "3"},
		{uint8(9), "9"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{ts, `'2024-05-01T12:30:00Z'`},
		{[]string{"a", "b'c"}, `['a', 'b''c']`},
		{[]any{1, nil, "x"}, `[1, NULL, 'x']`},
		{map[string]any{"b": 1, "a": "x"}, `{"a" = 'x', "b" = 1}`},
		{label("news"), `'news'`},
		{[]byte{0xca, 0xfe}, `'cafe'`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			query, args, err := Render(Lit(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Empty(t, args)
		})
	}
}

func TestRenderUnsupported(t *testing.T) {
	type custom struct{ X int }
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"unknown_node", custom{X: 1}, "sql.custom"},
		{"value_node", Literal{Value: 1}, "sql.Literal"},
		{"nested_unknown", Select().From(Table("posts")).Where(custom{}), "sql.custom"},
		{"bad_operator", &BinaryOp{Op: "; DROP", Left: C("a"), Right: P(1)}, "operator"},
		{"bad_function", Fn("count(*); --"), "function name"},
		{"bad_literal", Lit(struct{}{}), "literal of type"},
		{"raw_arity", Expr("a = ? AND b = ?", 1), "placeholders"},
		{"empty_insert", Insert("posts"), "no values"},
		{"insert_arity", Insert("posts").Columns("a", "b").Values(1), "row 0"},
		{"empty_update", Update("posts"), "no assignments"},
		{"empty_logical", And(), "no predicates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Render(tt.node)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedExpression))
			assert.True(t, IsUnsupportedExpression(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	_, _, err := Render(Select().From(Table("a")).Join(Table("b"), nil))
	require.NoError(t, err)
	s := Select().From(Table("a"))
	s.joins = append(s.joins, &Join{Kind: "SIDEWAYS", Table: Table("b")})
	_, _, err = Render(s)
	assert.ErrorContains(t, err, `join kind "SIDEWAYS"`)
}

func TestRenderIsStateless(t *testing.T) {
	v := NewVisitor()
	n := EQ("id", "1")
	q1, a1, err := v.Render(n)
	require.NoError(t, err)
	q2, a2, err := v.Render(n)
	require.NoError(t, err)
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
}
