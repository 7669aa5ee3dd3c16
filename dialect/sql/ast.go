package sql

import "strings"

// Node is an element of a query tree. The Visitor renders the node types
// declared in this file (as pointers) and rejects every other value with
// an UnsupportedExpressionError.
type Node any

type (
	// Literal is a value rendered inline into the statement text.
	Literal struct {
		Value any
	}

	// Param is a value sent to the database as a bind parameter.
	Param struct {
		Value any
	}

	// Column references a column, or a key path into an object column.
	//
	//	&Column{Name: "meta", Path: []string{"author"}}	// "meta"['author']
	Column struct {
		Table string // optional table name or alias qualifier.
		Name  string
		Path  []string
	}

	// BinaryOp is an infix operation: Left Op Right.
	BinaryOp struct {
		Op          string
		Left, Right Node
	}

	// Func is a scalar or aggregate function call.
	Func struct {
		Name string
		Args []Node
	}

	// AnyMatch tests a value against the elements of an array column:
	// Value Op ANY(Column).
	AnyMatch struct {
		Value  Node
		Op     string // defaults to "=".
		Column Node
	}

	// Logical joins predicates with AND or OR.
	Logical struct {
		Op    string
		Preds []Node
	}

	// Not negates a predicate.
	Not struct {
		Pred Node
	}

	// IsNull tests an expression for NULL.
	IsNull struct {
		Expr   Node
		Negate bool
	}

	// In tests an expression for membership in a list of values.
	In struct {
		Expr   Node
		Values []any
		Negate bool
	}

	// Raw is a statement fragment written as is. Every "?" in SQL is
	// replaced by a placeholder bound to the matching element of Args.
	Raw struct {
		SQL  string
		Args []any
	}

	// Alias names a selected expression: Expr AS Name.
	Alias struct {
		Expr Node
		Name string
	}

	// TableRef references a table in a FROM or JOIN clause.
	TableRef struct {
		Schema string
		Name   string
		Alias  string
	}

	// Join is a JOIN clause of a select statement.
	Join struct {
		Kind  string // "", LEFT, RIGHT, FULL or CROSS.
		Table *TableRef
		On    Node
	}

	// Order is an ORDER BY term.
	Order struct {
		Expr  Node
		Desc  bool
		Nulls string // "", FIRST or LAST.
	}

	// SelectStmt is a SELECT statement. An empty column list selects *.
	SelectStmt struct {
		distinct bool
		columns  []Node
		from     *TableRef
		joins    []*Join
		where    Node
		groupBy  []Node
		having   Node
		orderBy  []*Order
		limit    *int
		offset   *int
	}

	// InsertStmt is an INSERT statement. A value that is one of the node
	// types of this package is rendered as an expression, any other value
	// is bound as a parameter.
	InsertStmt struct {
		table      *TableRef
		columns    []string
		values     [][]any
		onConflict *OnConflict
		returning  []string
	}

	// OnConflict is the conflict clause of an insert. An empty Update list
	// renders DO NOTHING, otherwise the listed columns are overwritten with
	// the excluded values.
	OnConflict struct {
		Columns []string
		Update  []string
	}

	// Assignment is a SET term of an update statement.
	Assignment struct {
		Column string
		Value  any
	}

	// UpdateStmt is an UPDATE statement.
	UpdateStmt struct {
		table *TableRef
		set   []*Assignment
		where Node
	}

	// DeleteStmt is a DELETE statement.
	DeleteStmt struct {
		table *TableRef
		where Node
	}
)

// Lit returns a literal node.
func Lit(v any) *Literal { return &Literal{Value: v} }

// P returns a bind parameter node.
func P(v any) *Param { return &Param{Value: v} }

// C returns a column reference. Dotted and bracket paths address keys of
// object columns.
//
//	C("title")
//	C("meta.author")
//	C("meta['author']")
func C(path string) *Column {
	name, keys := SplitPath(path)
	return &Column{Name: name, Path: keys}
}

// Fn returns a function call node.
//
//	Fn("count", Star())
func Fn(name string, args ...Node) *Func { return &Func{Name: name, Args: args} }

// Star returns the * select expression.
func Star() *Raw { return &Raw{SQL: "*"} }

// Expr returns a raw expression with bound arguments.
//
//	Expr("date_trunc('day', created_at) > ?", since)
func Expr(sql string, args ...any) *Raw { return &Raw{SQL: sql, Args: args} }

// As returns an aliased expression.
func As(n Node, name string) *Alias { return &Alias{Expr: n, Name: name} }

// Table returns a reference to the named table. A "schema.name" form sets
// the schema qualifier.
func Table(name string) *TableRef {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return &TableRef{Schema: name[:i], Name: name[i+1:]}
	}
	return &TableRef{Name: name}
}

// As sets the alias of the table reference.
func (t *TableRef) As(alias string) *TableRef {
	t.Alias = alias
	return t
}

// C returns a column reference qualified by the table alias (or name).
func (t *TableRef) C(path string) *Column {
	c := C(path)
	c.Table = t.Name
	if t.Alias != "" {
		c.Table = t.Alias
	}
	return c
}

// Asc returns an ascending order term for the column path.
func Asc(path string) *Order { return &Order{Expr: C(path)} }

// Desc returns a descending order term for the column path.
func Desc(path string) *Order { return &Order{Expr: C(path), Desc: true} }

// Select returns a select statement over the given column paths.
//
//	Select("id", "title").From(Table("posts")).Where(EQ("author", "amy"))
func Select(columns ...string) *SelectStmt {
	s := &SelectStmt{}
	for _, c := range columns {
		s.columns = append(s.columns, C(c))
	}
	return s
}

// SelectExpr returns a select statement over the given expressions.
func SelectExpr(exprs ...Node) *SelectStmt {
	return &SelectStmt{columns: exprs}
}

// Distinct sets the DISTINCT modifier.
func (s *SelectStmt) Distinct() *SelectStmt {
	s.distinct = true
	return s
}

// From sets the table to select from.
func (s *SelectStmt) From(t *TableRef) *SelectStmt {
	s.from = t
	return s
}

// Join appends an inner join.
func (s *SelectStmt) Join(t *TableRef, on Node) *SelectStmt {
	s.joins = append(s.joins, &Join{Table: t, On: on})
	return s
}

// LeftJoin appends a left outer join.
func (s *SelectStmt) LeftJoin(t *TableRef, on Node) *SelectStmt {
	s.joins = append(s.joins, &Join{Kind: "LEFT", Table: t, On: on})
	return s
}

// Where appends predicates to the WHERE clause. Multiple predicates, and
// multiple calls, are joined with AND.
func (s *SelectStmt) Where(preds ...Node) *SelectStmt {
	s.where = andWhere(s.where, preds)
	return s
}

// GroupBy sets the GROUP BY column paths.
func (s *SelectStmt) GroupBy(columns ...string) *SelectStmt {
	for _, c := range columns {
		s.groupBy = append(s.groupBy, C(c))
	}
	return s
}

// GroupByExpr appends GROUP BY expressions.
func (s *SelectStmt) GroupByExpr(exprs ...Node) *SelectStmt {
	s.groupBy = append(s.groupBy, exprs...)
	return s
}

// Having sets the HAVING predicate.
func (s *SelectStmt) Having(pred Node) *SelectStmt {
	s.having = pred
	return s
}

// OrderBy appends order terms.
func (s *SelectStmt) OrderBy(terms ...*Order) *SelectStmt {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

// Limit sets the LIMIT clause.
func (s *SelectStmt) Limit(n int) *SelectStmt {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *SelectStmt) Offset(n int) *SelectStmt {
	s.offset = &n
	return s
}

// Insert returns an insert statement into the named table.
//
//	Insert("posts").Columns("id", "title").Values("1", "hello")
func Insert(table string) *InsertStmt {
	return &InsertStmt{table: Table(table)}
}

// Columns sets the inserted columns.
func (i *InsertStmt) Columns(columns ...string) *InsertStmt {
	i.columns = columns
	return i
}

// Values appends a row of values.
func (i *InsertStmt) Values(values ...any) *InsertStmt {
	i.values = append(i.values, values)
	return i
}

// OnConflictDoNothing ignores rows whose conflict columns already exist.
func (i *InsertStmt) OnConflictDoNothing(columns ...string) *InsertStmt {
	i.onConflict = &OnConflict{Columns: columns}
	return i
}

// OnConflictUpdate overwrites the given columns of existing rows.
func (i *InsertStmt) OnConflictUpdate(conflict []string, update ...string) *InsertStmt {
	i.onConflict = &OnConflict{Columns: conflict, Update: update}
	return i
}

// Returning sets the RETURNING columns.
func (i *InsertStmt) Returning(columns ...string) *InsertStmt {
	i.returning = columns
	return i
}

// Update returns an update statement of the named table.
func Update(table string) *UpdateStmt {
	return &UpdateStmt{table: Table(table)}
}

// Set appends an assignment.
func (u *UpdateStmt) Set(column string, v any) *UpdateStmt {
	u.set = append(u.set, &Assignment{Column: column, Value: v})
	return u
}

// Where appends predicates to the WHERE clause, joined with AND.
func (u *UpdateStmt) Where(preds ...Node) *UpdateStmt {
	u.where = andWhere(u.where, preds)
	return u
}

// Delete returns a delete statement of the named table.
func Delete(table string) *DeleteStmt {
	return &DeleteStmt{table: Table(table)}
}

// Where appends predicates to the WHERE clause, joined with AND.
func (d *DeleteStmt) Where(preds ...Node) *DeleteStmt {
	d.where = andWhere(d.where, preds)
	return d
}

func andWhere(cur Node, preds []Node) Node {
	all := make([]Node, 0, len(preds)+1)
	if cur != nil {
		all = append(all, cur)
	}
	all = append(all, preds...)
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return And(all...)
	}
}
