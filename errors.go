package crate

import (
	"errors"
	"fmt"

	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/dialect/sql"
	"github.com/syssam/crate/dialect/sql/schema"
)

// Errors of the adapter core. They are declared by the packages that
// return them and re-exported here.
type (
	// UnknownKindError is returned when a kind has no registered dialect
	// type, or a dialect type string cannot be resolved to a kind.
	UnknownKindError = schema.UnknownKindError
	// MissingArrayTypeError is returned when an array column has no
	// element kind. It is detected before any statement is sent.
	MissingArrayTypeError = schema.MissingArrayTypeError
	// UnsupportedExpressionError is returned for query nodes that have no
	// rendering rule.
	UnsupportedExpressionError = sql.UnsupportedExpressionError
	// WireError wraps the connection and execution failures of the wire
	// client.
	WireError = dialect.WireError
	// ValidationError is a single problem found in a table definition.
	ValidationError = schema.ValidationError
)

// Sentinel errors matched with errors.Is.
var (
	ErrUnknownKind           = schema.ErrUnknownKind
	ErrMissingArrayType      = schema.ErrMissingArrayType
	ErrUnsupportedExpression = sql.ErrUnsupportedExpression
	ErrWire                  = dialect.ErrWire

	// ErrNotFound is returned when a table does not exist.
	ErrNotFound = errors.New("crate: table not found")
)

// IsUnknownKind returns true if the error is an UnknownKindError.
func IsUnknownKind(err error) bool {
	return schema.IsUnknownKind(err)
}

// IsMissingArrayType returns true if the error is a MissingArrayTypeError.
func IsMissingArrayType(err error) bool {
	return schema.IsMissingArrayType(err)
}

// IsUnsupportedExpression returns true if the error is an
// UnsupportedExpressionError.
func IsUnsupportedExpression(err error) bool {
	return sql.IsUnsupportedExpression(err)
}

// IsWireError returns true if the error is a WireError.
func IsWireError(err error) bool {
	return dialect.IsWireError(err)
}

// NotFoundError is returned when a table does not exist in the schema of
// the connection.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("crate: table %q not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the name of the missing table.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns a boolean indicating whether the error is a not found error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError returns when trying to insert a row that violates a
// constraint of the table, like an existing primary key.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error implements the error interface.
func (e ConstraintError) Error() string {
	return "crate: constraint failed: " + e.msg
}

// Unwrap implements the errors.Wrapper interface.
func (e *ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError.
func NewConstraintError(msg string, wrap error) error {
	return &ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns a boolean indicating whether the error is a constraint failure.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstraintError
	return errors.As(err, &e)
}
