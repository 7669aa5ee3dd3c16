package schema

import (
	"errors"
	"fmt"

	"github.com/syssam/crate/schema/field"
)

var (
	// ErrUnknownKind is matched by every UnknownKindError.
	ErrUnknownKind = errors.New("crate: unknown kind")
	// ErrMissingArrayType is matched by every MissingArrayTypeError.
	ErrMissingArrayType = errors.New("crate: missing array element type")
)

// UnknownKindError is returned when a kind has no registered dialect type,
// or when a dialect type string cannot be resolved to a kind.
type UnknownKindError struct {
	Kind        field.Type // set for forward lookups.
	DialectType string     // set for reverse lookups.
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	if e.DialectType != "" {
		return fmt.Sprintf("crate: unknown dialect type %q", e.DialectType)
	}
	return fmt.Sprintf("crate: no dialect type registered for kind %s", e.Kind)
}

// Is reports whether target is ErrUnknownKind.
func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// MissingArrayTypeError is returned when an array column is declared
// without an element kind.
type MissingArrayTypeError struct {
	Column string
}

// Error implements the error interface.
func (e *MissingArrayTypeError) Error() string {
	return fmt.Sprintf("crate: array column %q has no element type", e.Column)
}

// Is reports whether target is ErrMissingArrayType.
func (e *MissingArrayTypeError) Is(target error) bool {
	return target == ErrMissingArrayType
}

// IsUnknownKind returns true if the error is an UnknownKindError.
func IsUnknownKind(err error) bool {
	var e *UnknownKindError
	return errors.As(err, &e)
}

// IsMissingArrayType returns true if the error is a MissingArrayTypeError.
func IsMissingArrayType(err error) bool {
	var e *MissingArrayTypeError
	return errors.As(err, &e)
}
