package sql

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Placeholder is the bind parameter style of a rendered statement.
type Placeholder int

// Placeholder styles.
const (
	// Dollar renders $1, $2, ... as used by the PostgreSQL wire protocol
	// and the HTTP endpoint.
	Dollar Placeholder = iota
	// Question renders ? for every parameter.
	Question
)

// Visitor renders query trees into statement text and bind arguments.
// A zero Visitor renders $n placeholders. A Visitor holds no state
// between calls.
type Visitor struct {
	placeholder Placeholder
}

// VisitorOption configures the Visitor.
type VisitorOption func(*Visitor)

// WithPlaceholder sets the placeholder style.
func WithPlaceholder(p Placeholder) VisitorOption {
	return func(v *Visitor) {
		v.placeholder = p
	}
}

// NewVisitor returns a Visitor configured with the given options.
func NewVisitor(opts ...VisitorOption) *Visitor {
	v := &Visitor{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render renders the node into statement text and the bind arguments in
// placeholder order.
//
//	query, args, err := sql.NewVisitor().Render(
//		sql.Select().From(sql.Table("posts")).Where(sql.Any("tags", "fresh")),
//	)
//	// SELECT * FROM "posts" WHERE $1 = ANY("tags"), ["fresh"]
func (v *Visitor) Render(n Node) (string, []any, error) {
	r := &renderer{placeholder: v.placeholder}
	if err := r.visit(n); err != nil {
		return "", nil, err
	}
	return r.b.String(), r.args, nil
}

// Render renders the node with a default Visitor.
func Render(n Node) (string, []any, error) {
	return (&Visitor{}).Render(n)
}

var (
	// binaryOps are the infix operators accepted by BinaryOp and AnyMatch.
	binaryOps = map[string]bool{
		"=": true, "<>": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
		"LIKE": true, "NOT LIKE": true, "ILIKE": true, "NOT ILIKE": true, "~": true, "~*": true,
		"+": true, "-": true, "*": true, "/": true, "%": true, "||": true,
	}
	joinKinds = map[string]bool{"": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "CROSS": true}
	// funcName validates function names, optionally schema qualified.
	funcName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)
)

// renderer holds the state of a single Render call.
type renderer struct {
	b           strings.Builder
	args        []any
	placeholder Placeholder
	depth       int // statement nesting.
}

func (r *renderer) visit(n Node) error {
	switch n := n.(type) {
	case *Literal:
		return r.literal(n, n.Value)
	case *Param:
		r.bind(n.Value)
	case *Column:
		r.column(n)
	case *BinaryOp:
		op := strings.ToUpper(n.Op)
		if !binaryOps[op] {
			return unsupported(n, "operator %q", n.Op)
		}
		if err := r.operand(n.Left); err != nil {
			return err
		}
		r.b.WriteString(" " + op + " ")
		return r.operand(n.Right)
	case *Func:
		if !funcName.MatchString(n.Name) {
			return unsupported(n, "function name %q", n.Name)
		}
		r.b.WriteString(n.Name)
		r.b.WriteByte('(')
		if err := r.list(n.Args); err != nil {
			return err
		}
		r.b.WriteByte(')')
	case *AnyMatch:
		op := "="
		if n.Op != "" {
			op = strings.ToUpper(n.Op)
		}
		if !binaryOps[op] {
			return unsupported(n, "operator %q", n.Op)
		}
		if err := r.operand(n.Value); err != nil {
			return err
		}
		r.b.WriteString(" " + op + " ANY(")
		if err := r.visit(n.Column); err != nil {
			return err
		}
		r.b.WriteByte(')')
	case *Logical:
		op := strings.ToUpper(n.Op)
		if op != "AND" && op != "OR" {
			return unsupported(n, "logical operator %q", n.Op)
		}
		if len(n.Preds) == 0 {
			return unsupported(n, "no predicates")
		}
		if len(n.Preds) == 1 {
			return r.visit(n.Preds[0])
		}
		r.b.WriteByte('(')
		for i, p := range n.Preds {
			if i > 0 {
				r.b.WriteString(" " + op + " ")
			}
			if err := r.visit(p); err != nil {
				return err
			}
		}
		r.b.WriteByte(')')
	case *Not:
		r.b.WriteString("NOT (")
		if err := r.visit(n.Pred); err != nil {
			return err
		}
		r.b.WriteByte(')')
	case *IsNull:
		if err := r.operand(n.Expr); err != nil {
			return err
		}
		if n.Negate {
			r.b.WriteString(" IS NOT NULL")
		} else {
			r.b.WriteString(" IS NULL")
		}
	case *In:
		if len(n.Values) == 0 {
			// x IN () is invalid, an empty list matches nothing.
			if n.Negate {
				r.b.WriteString("TRUE")
			} else {
				r.b.WriteString("FALSE")
			}
			return nil
		}
		if err := r.operand(n.Expr); err != nil {
			return err
		}
		if n.Negate {
			r.b.WriteString(" NOT")
		}
		r.b.WriteString(" IN (")
		for i, v := range n.Values {
			if i > 0 {
				r.b.WriteString(", ")
			}
			if err := r.value(v); err != nil {
				return err
			}
		}
		r.b.WriteByte(')')
	case *Raw:
		return r.raw(n)
	case *Alias:
		if err := r.visit(n.Expr); err != nil {
			return err
		}
		r.b.WriteString(" AS ")
		r.ident(n.Name)
	case *TableRef:
		r.table(n)
	case *SelectStmt:
		return r.nested(func() error { return r.selectStmt(n) })
	case *InsertStmt:
		return r.nested(func() error { return r.insertStmt(n) })
	case *UpdateStmt:
		return r.nested(func() error { return r.updateStmt(n) })
	case *DeleteStmt:
		return r.nested(func() error { return r.deleteStmt(n) })
	default:
		return &UnsupportedExpressionError{Node: n}
	}
	return nil
}

// nested wraps statements below the top level in parentheses.
func (r *renderer) nested(f func() error) error {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth == 1 {
		return f()
	}
	r.b.WriteByte('(')
	if err := f(); err != nil {
		return err
	}
	r.b.WriteByte(')')
	return nil
}

// operand renders an operand of an infix operation. Nested binary
// operations are parenthesized.
func (r *renderer) operand(n Node) error {
	if _, ok := n.(*BinaryOp); ok {
		r.b.WriteByte('(')
		if err := r.visit(n); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	}
	return r.visit(n)
}

func (r *renderer) list(nodes []Node) error {
	for i, n := range nodes {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if err := r.visit(n); err != nil {
			return err
		}
	}
	return nil
}

// value renders v as an expression when it is a node of this package, and
// binds it otherwise.
func (r *renderer) value(v any) error {
	if isNode(v) {
		return r.visit(v)
	}
	r.bind(v)
	return nil
}

func isNode(v any) bool {
	switch v.(type) {
	case *Literal, *Param, *Column, *BinaryOp, *Func, *AnyMatch, *Logical, *Not,
		*IsNull, *In, *Raw, *Alias, *SelectStmt:
		return true
	}
	return false
}

func (r *renderer) bind(v any) {
	r.args = append(r.args, v)
	switch r.placeholder {
	case Question:
		r.b.WriteByte('?')
	default:
		r.b.WriteByte('$')
		r.b.WriteString(strconv.Itoa(len(r.args)))
	}
}

func (r *renderer) raw(n *Raw) error {
	if strings.Count(n.SQL, "?") != len(n.Args) {
		return unsupported(n, "%d placeholders for %d args", strings.Count(n.SQL, "?"), len(n.Args))
	}
	s, i := n.SQL, 0
	for {
		j := strings.IndexByte(s, '?')
		if j < 0 {
			r.b.WriteString(s)
			return nil
		}
		r.b.WriteString(s[:j])
		if err := r.value(n.Args[i]); err != nil {
			return err
		}
		s, i = s[j+1:], i+1
	}
}

// ident writes a double-quoted identifier.
func (r *renderer) ident(s string) {
	r.b.WriteByte('"')
	r.b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	r.b.WriteByte('"')
}

func (r *renderer) column(c *Column) {
	if c.Table != "" {
		r.ident(c.Table)
		r.b.WriteByte('.')
	}
	if c.Name == "*" {
		r.b.WriteByte('*')
		return
	}
	r.ident(c.Name)
	for _, k := range c.Path {
		r.b.WriteByte('[')
		r.b.WriteString(quote(k))
		r.b.WriteByte(']')
	}
}

func (r *renderer) table(t *TableRef) {
	if t.Schema != "" {
		r.ident(t.Schema)
		r.b.WriteByte('.')
	}
	r.ident(t.Name)
	if t.Alias != "" {
		r.b.WriteString(" AS ")
		r.ident(t.Alias)
	}
}

func (r *renderer) selectStmt(s *SelectStmt) error {
	r.b.WriteString("SELECT ")
	if s.distinct {
		r.b.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		r.b.WriteByte('*')
	} else if err := r.list(s.columns); err != nil {
		return err
	}
	if s.from != nil {
		r.b.WriteString(" FROM ")
		r.table(s.from)
	}
	for _, j := range s.joins {
		kind := strings.ToUpper(j.Kind)
		if !joinKinds[kind] {
			return unsupported(j, "join kind %q", j.Kind)
		}
		if kind != "" {
			r.b.WriteString(" " + kind)
		}
		r.b.WriteString(" JOIN ")
		r.table(j.Table)
		if j.On != nil {
			r.b.WriteString(" ON ")
			if err := r.visit(j.On); err != nil {
				return err
			}
		}
	}
	if err := r.where(s.where); err != nil {
		return err
	}
	if len(s.groupBy) > 0 {
		r.b.WriteString(" GROUP BY ")
		if err := r.list(s.groupBy); err != nil {
			return err
		}
	}
	if s.having != nil {
		r.b.WriteString(" HAVING ")
		if err := r.visit(s.having); err != nil {
			return err
		}
	}
	for i, o := range s.orderBy {
		if i == 0 {
			r.b.WriteString(" ORDER BY ")
		} else {
			r.b.WriteString(", ")
		}
		if err := r.visit(o.Expr); err != nil {
			return err
		}
		if o.Desc {
			r.b.WriteString(" DESC")
		}
		switch strings.ToUpper(o.Nulls) {
		case "":
		case "FIRST", "LAST":
			r.b.WriteString(" NULLS " + strings.ToUpper(o.Nulls))
		default:
			return unsupported(o, "nulls order %q", o.Nulls)
		}
	}
	if s.limit != nil {
		r.b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		r.b.WriteString(" OFFSET " + strconv.Itoa(*s.offset))
	}
	return nil
}

func (r *renderer) insertStmt(s *InsertStmt) error {
	if len(s.values) == 0 {
		return unsupported(s, "no values")
	}
	r.b.WriteString("INSERT INTO ")
	r.table(s.table)
	if len(s.columns) > 0 {
		r.b.WriteString(" (")
		r.idents(s.columns)
		r.b.WriteByte(')')
	}
	r.b.WriteString(" VALUES ")
	for i, row := range s.values {
		if len(s.columns) > 0 && len(row) != len(s.columns) {
			return unsupported(s, "row %d has %d values for %d columns", i, len(row), len(s.columns))
		}
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				r.b.WriteString(", ")
			}
			if err := r.value(v); err != nil {
				return err
			}
		}
		r.b.WriteByte(')')
	}
	if c := s.onConflict; c != nil {
		r.b.WriteString(" ON CONFLICT")
		if len(c.Columns) > 0 {
			r.b.WriteString(" (")
			r.idents(c.Columns)
			r.b.WriteByte(')')
		}
		if len(c.Update) == 0 {
			r.b.WriteString(" DO NOTHING")
		} else {
			r.b.WriteString(" DO UPDATE SET ")
			for i, col := range c.Update {
				if i > 0 {
					r.b.WriteString(", ")
				}
				r.ident(col)
				r.b.WriteString(" = excluded.")
				r.ident(col)
			}
		}
	}
	if len(s.returning) > 0 {
		r.b.WriteString(" RETURNING ")
		r.idents(s.returning)
	}
	return nil
}

func (r *renderer) updateStmt(s *UpdateStmt) error {
	if len(s.set) == 0 {
		return unsupported(s, "no assignments")
	}
	r.b.WriteString("UPDATE ")
	r.table(s.table)
	r.b.WriteString(" SET ")
	for i, a := range s.set {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.column(C(a.Column))
		r.b.WriteString(" = ")
		if err := r.value(a.Value); err != nil {
			return err
		}
	}
	return r.where(s.where)
}

func (r *renderer) deleteStmt(s *DeleteStmt) error {
	r.b.WriteString("DELETE FROM ")
	r.table(s.table)
	return r.where(s.where)
}

func (r *renderer) where(n Node) error {
	if n == nil {
		return nil
	}
	r.b.WriteString(" WHERE ")
	return r.visit(n)
}

func (r *renderer) idents(names []string) {
	for i, n := range names {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.ident(n)
	}
}

// literal writes v inline. l is the node reported on failure.
func (r *renderer) literal(l *Literal, v any) error {
	switch v := v.(type) {
	case nil:
		r.b.WriteString("NULL")
	case string:
		r.b.WriteString(quote(v))
	case bool:
		r.b.WriteString(strings.ToUpper(strconv.FormatBool(v)))
	case int:
		r.b.WriteString(strconv.Itoa(v))
	case int64:
		r.b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		r.b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case []byte:
		r.b.WriteString(quote(hex.EncodeToString(v)))
	case time.Time:
		r.b.WriteString(quote(v.Format(time.RFC3339Nano)))
	case fmt.Stringer:
		r.b.WriteString(quote(v.String()))
	default:
		return r.reflectLiteral(l, reflect.ValueOf(v))
	}
	return nil
}

// reflectLiteral renders the remaining numeric kinds, arrays and objects.
func (r *renderer) reflectLiteral(l *Literal, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		r.b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		r.b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		r.b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 32))
	case reflect.String:
		r.b.WriteString(quote(rv.String()))
	case reflect.Bool:
		r.b.WriteString(strings.ToUpper(strconv.FormatBool(rv.Bool())))
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			r.b.WriteString("NULL")
			return nil
		}
		return r.literal(l, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		r.b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				r.b.WriteString(", ")
			}
			if err := r.literal(l, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		r.b.WriteByte(']')
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return unsupported(l, "object literal with %s keys", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		r.b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.ident(k)
			r.b.WriteString(" = ")
			if err := r.literal(l, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()); err != nil {
				return err
			}
		}
		r.b.WriteByte('}')
	default:
		return unsupported(l, "literal of type %T", rv.Interface())
	}
	return nil
}

// quote returns s as a single-quoted string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
