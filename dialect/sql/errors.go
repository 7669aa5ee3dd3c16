package sql

import (
	"errors"
	"fmt"
)

// ErrUnsupportedExpression is matched by every UnsupportedExpressionError.
var ErrUnsupportedExpression = errors.New("crate: unsupported expression")

// UnsupportedExpressionError is returned by the Visitor for query nodes it
// cannot render. No fallback rendering is attempted.
type UnsupportedExpressionError struct {
	Node   any
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedExpressionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("crate: unsupported expression %T: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("crate: unsupported expression %T", e.Node)
}

// Is reports whether target is ErrUnsupportedExpression.
func (e *UnsupportedExpressionError) Is(target error) bool {
	return target == ErrUnsupportedExpression
}

// IsUnsupportedExpression returns true if the error is an UnsupportedExpressionError.
func IsUnsupportedExpression(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedExpressionError
	return errors.As(err, &e)
}

func unsupported(n any, format string, args ...any) error {
	return &UnsupportedExpressionError{Node: n, Reason: fmt.Sprintf(format, args...)}
}
