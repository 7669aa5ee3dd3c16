package crate_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/crate"
	"github.com/syssam/crate/schema/field"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := crate.NewNotFoundError("posts")
		assert.Equal(t, `crate: table "posts" not found`, err.Error())
		assert.Equal(t, "posts", err.Table())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := crate.NewNotFoundError("posts")
		assert.True(t, errors.Is(err, crate.ErrNotFound))
		assert.True(t, crate.IsNotFound(err))

		// Wrapped error
		assert.True(t, crate.IsNotFound(fmt.Errorf("wrapper: %w", err)))

		// Sentinel error
		assert.True(t, crate.IsNotFound(crate.ErrNotFound))

		assert.False(t, crate.IsNotFound(errors.New("other error")))
		assert.False(t, crate.IsNotFound(nil))
	})
}

func TestConstraintError(t *testing.T) {
	cause := errors.New("DuplicateKeyException")
	err := crate.NewConstraintError(`duplicate key 1 in "posts"`, cause)
	assert.Equal(t, `crate: constraint failed: duplicate key 1 in "posts"`, err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, crate.IsConstraintError(err))
	assert.True(t, crate.IsConstraintError(fmt.Errorf("insert: %w", err)))
	assert.False(t, crate.IsConstraintError(cause))
	assert.False(t, crate.IsConstraintError(nil))
}

func TestReexportedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		is       func(error) bool
	}{
		{
			name:     "unknown kind",
			err:      &crate.UnknownKindError{DialectType: "interval"},
			sentinel: crate.ErrUnknownKind,
			is:       crate.IsUnknownKind,
		},
		{
			name:     "unknown kind forward",
			err:      &crate.UnknownKindError{Kind: field.TypeIP},
			sentinel: crate.ErrUnknownKind,
			is:       crate.IsUnknownKind,
		},
		{
			name:     "missing array type",
			err:      &crate.MissingArrayTypeError{Column: "tags"},
			sentinel: crate.ErrMissingArrayType,
			is:       crate.IsMissingArrayType,
		},
		{
			name:     "unsupported expression",
			err:      &crate.UnsupportedExpressionError{Node: 1, Reason: "not a node"},
			sentinel: crate.ErrUnsupportedExpression,
			is:       crate.IsUnsupportedExpression,
		},
		{
			name:     "wire",
			err:      &crate.WireError{Op: "query", Query: "SELECT 1", Err: io.ErrUnexpectedEOF},
			sentinel: crate.ErrWire,
			is:       crate.IsWireError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, tt.is(tt.err))
			assert.True(t, tt.is(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.is(errors.New("other")))
			assert.True(t, len(tt.err.Error()) > len("crate: "))
		})
	}
}

func TestWireErrorUnwrap(t *testing.T) {
	err := &crate.WireError{Op: "query", Query: "SELECT 1", Err: io.ErrUnexpectedEOF}
	assert.Equal(t, `crate: query "SELECT 1": unexpected EOF`, err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
