package sql

import (
	"strings"
	"time"
)

// EQ returns a predicate that checks if the column equals v.
func EQ(col string, v any) *BinaryOp { return cmp(col, "=", v) }

// NEQ returns a predicate that checks if the column does not equal v.
func NEQ(col string, v any) *BinaryOp { return cmp(col, "<>", v) }

// GT returns a predicate that checks if the column is greater than v.
func GT(col string, v any) *BinaryOp { return cmp(col, ">", v) }

// GTE returns a predicate that checks if the column is greater than or equal to v.
func GTE(col string, v any) *BinaryOp { return cmp(col, ">=", v) }

// LT returns a predicate that checks if the column is less than v.
func LT(col string, v any) *BinaryOp { return cmp(col, "<", v) }

// LTE returns a predicate that checks if the column is less than or equal to v.
func LTE(col string, v any) *BinaryOp { return cmp(col, "<=", v) }

// Like returns a LIKE predicate with the given pattern.
func Like(col, pattern string) *BinaryOp { return cmp(col, "LIKE", pattern) }

// ILike returns a case-insensitive LIKE predicate with the given pattern.
func ILike(col, pattern string) *BinaryOp { return cmp(col, "ILIKE", pattern) }

// Contains returns a predicate that checks if the column contains the substring.
func Contains(col, sub string) *BinaryOp { return Like(col, "%"+escapeLike(sub)+"%") }

// ContainsFold returns a predicate that checks if the column contains the substring (case-insensitive).
func ContainsFold(col, sub string) *BinaryOp { return ILike(col, "%"+escapeLike(sub)+"%") }

// HasPrefix returns a predicate that checks if the column starts with the prefix.
func HasPrefix(col, prefix string) *BinaryOp { return Like(col, escapeLike(prefix)+"%") }

// HasSuffix returns a predicate that checks if the column ends with the suffix.
func HasSuffix(col, suffix string) *BinaryOp { return Like(col, "%"+escapeLike(suffix)) }

// EqualFold returns a predicate that checks if the column equals v (case-insensitive).
func EqualFold(col, v string) *BinaryOp { return ILike(col, escapeLike(v)) }

// InValues returns a predicate that checks if the column value is in vs.
func InValues[T any](col string, vs ...T) *In {
	return &In{Expr: C(col), Values: anys(vs)}
}

// NotInValues returns a predicate that checks if the column value is not in vs.
func NotInValues[T any](col string, vs ...T) *In {
	return &In{Expr: C(col), Values: anys(vs), Negate: true}
}

// Null returns a predicate that checks if the column is NULL.
func Null(col string) *IsNull { return &IsNull{Expr: C(col)} }

// NotNull returns a predicate that checks if the column is not NULL.
func NotNull(col string) *IsNull { return &IsNull{Expr: C(col), Negate: true} }

// And joins the predicates with AND.
func And(preds ...Node) *Logical { return &Logical{Op: "AND", Preds: preds} }

// Or joins the predicates with OR.
func Or(preds ...Node) *Logical { return &Logical{Op: "OR", Preds: preds} }

// Negate negates the predicate.
func Negate(pred Node) *Not { return &Not{Pred: pred} }

// Any returns a predicate that checks if v equals any element of the
// array column. v is sent as a bind parameter.
//
//	Any("tags", "fresh")	// $1 = ANY("tags")
func Any(col string, v any) *AnyMatch {
	return &AnyMatch{Value: P(v), Op: "=", Column: C(col)}
}

// AnyOp is like Any with a custom comparison operator.
//
//	AnyOp("scores", "<", 10)	// $1 < ANY("scores")
func AnyOp(col, op string, v any) *AnyMatch {
	return &AnyMatch{Value: P(v), Op: op, Column: C(col)}
}

func cmp(col, op string, v any) *BinaryOp {
	var right Node = P(v)
	if isNode(v) {
		right = v
	}
	return &BinaryOp{Op: op, Left: C(col), Right: right}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i := range vs {
		out[i] = vs[i]
	}
	return out
}

// StringField is a string column that provides typed predicate methods.
//
//	var Title = sql.StringField("title")
//	sql.Select().From(sql.Table("posts")).Where(Title.HasPrefix("Go"))
type StringField string

// Name returns the column name.
func (f StringField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f StringField) EQ(v string) *BinaryOp { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f StringField) NEQ(v string) *BinaryOp { return NEQ(string(f), v) }

// In returns a predicate that checks if the column value is in vs.
func (f StringField) In(vs ...string) *In { return InValues(string(f), vs...) }

// NotIn returns a predicate that checks if the column value is not in vs.
func (f StringField) NotIn(vs ...string) *In { return NotInValues(string(f), vs...) }

// GT returns a predicate that checks if the column is greater than v.
func (f StringField) GT(v string) *BinaryOp { return GT(string(f), v) }

// LT returns a predicate that checks if the column is less than v.
func (f StringField) LT(v string) *BinaryOp { return LT(string(f), v) }

// Contains returns a predicate that checks if the column contains the substring.
func (f StringField) Contains(v string) *BinaryOp { return Contains(string(f), v) }

// ContainsFold returns a predicate that checks if the column contains the substring (case-insensitive).
func (f StringField) ContainsFold(v string) *BinaryOp { return ContainsFold(string(f), v) }

// HasPrefix returns a predicate that checks if the column has the prefix.
func (f StringField) HasPrefix(v string) *BinaryOp { return HasPrefix(string(f), v) }

// HasSuffix returns a predicate that checks if the column has the suffix.
func (f StringField) HasSuffix(v string) *BinaryOp { return HasSuffix(string(f), v) }

// EqualFold returns a predicate that checks if the column equals v (case-insensitive).
func (f StringField) EqualFold(v string) *BinaryOp { return EqualFold(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f StringField) IsNull() *IsNull { return Null(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f StringField) NotNull() *IsNull { return NotNull(string(f)) }

// NumberField is a numeric column that provides typed predicate methods.
//
//	var Votes = sql.NumberField[int]("votes")
type NumberField[T int | int32 | int64 | float32 | float64] string

// Name returns the column name.
func (f NumberField[T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f NumberField[T]) EQ(v T) *BinaryOp { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f NumberField[T]) NEQ(v T) *BinaryOp { return NEQ(string(f), v) }

// In returns a predicate that checks if the column value is in vs.
func (f NumberField[T]) In(vs ...T) *In { return InValues(string(f), vs...) }

// NotIn returns a predicate that checks if the column value is not in vs.
func (f NumberField[T]) NotIn(vs ...T) *In { return NotInValues(string(f), vs...) }

// GT returns a predicate that checks if the column is greater than v.
func (f NumberField[T]) GT(v T) *BinaryOp { return GT(string(f), v) }

// GTE returns a predicate that checks if the column is greater than or equal to v.
func (f NumberField[T]) GTE(v T) *BinaryOp { return GTE(string(f), v) }

// LT returns a predicate that checks if the column is less than v.
func (f NumberField[T]) LT(v T) *BinaryOp { return LT(string(f), v) }

// LTE returns a predicate that checks if the column is less than or equal to v.
func (f NumberField[T]) LTE(v T) *BinaryOp { return LTE(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f NumberField[T]) IsNull() *IsNull { return Null(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f NumberField[T]) NotNull() *IsNull { return NotNull(string(f)) }

// BoolField is a boolean column that provides typed predicate methods.
type BoolField string

// Name returns the column name.
func (f BoolField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f BoolField) EQ(v bool) *BinaryOp { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (f BoolField) NEQ(v bool) *BinaryOp { return NEQ(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f BoolField) IsNull() *IsNull { return Null(string(f)) }

// TimeField is a timestamp column that provides typed predicate methods.
type TimeField string

// Name returns the column name.
func (f TimeField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f TimeField) EQ(v time.Time) *BinaryOp { return EQ(string(f), v) }

// GT returns a predicate that checks if the column is after v.
func (f TimeField) GT(v time.Time) *BinaryOp { return GT(string(f), v) }

// GTE returns a predicate that checks if the column is v or after.
func (f TimeField) GTE(v time.Time) *BinaryOp { return GTE(string(f), v) }

// LT returns a predicate that checks if the column is before v.
func (f TimeField) LT(v time.Time) *BinaryOp { return LT(string(f), v) }

// LTE returns a predicate that checks if the column is v or before.
func (f TimeField) LTE(v time.Time) *BinaryOp { return LTE(string(f), v) }

// IsNull returns a predicate that checks if the column is NULL.
func (f TimeField) IsNull() *IsNull { return Null(string(f)) }

// NotNull returns a predicate that checks if the column is not NULL.
func (f TimeField) NotNull() *IsNull { return NotNull(string(f)) }

// ArrayField is an array column holding elements of type T.
//
//	var Tags = sql.ArrayField[string]("tags")
//	sql.Select().From(sql.Table("posts")).Where(Tags.Contains("fresh"))
type ArrayField[T any] string

// Name returns the column name.
func (f ArrayField[T]) Name() string { return string(f) }

// Contains returns a predicate that checks if any element equals v.
func (f ArrayField[T]) Contains(v T) *AnyMatch { return Any(string(f), v) }

// NotContains returns a predicate that checks if no element equals v.
func (f ArrayField[T]) NotContains(v T) *Not { return Negate(Any(string(f), v)) }

// AnyOp returns a predicate that compares v against the elements with op.
func (f ArrayField[T]) AnyOp(op string, v T) *AnyMatch { return AnyOp(string(f), op, v) }

// Len returns the array_length expression of the column.
func (f ArrayField[T]) Len() *Func { return Fn("array_length", C(string(f)), Lit(1)) }

// IsNull returns a predicate that checks if the column is NULL.
func (f ArrayField[T]) IsNull() *IsNull { return Null(string(f)) }

// ObjectField is an object column.
type ObjectField string

// Name returns the column name.
func (f ObjectField) Name() string { return string(f) }

// Key returns a reference to the nested key path of the object.
//
//	ObjectField("meta").Key("author", "name")	// "meta"['author']['name']
func (f ObjectField) Key(path ...string) *Column {
	c := C(string(f))
	c.Path = append(c.Path, path...)
	return c
}

// IsNull returns a predicate that checks if the column is NULL.
func (f ObjectField) IsNull() *IsNull { return Null(string(f)) }
