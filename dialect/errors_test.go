package dialect_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/crate/dialect"
)

type crateError struct {
	code int
	msg  string
}

func (e *crateError) Error() string  { return e.msg }
func (e *crateError) CrateCode() int { return e.code }

func TestErrorClassification(t *testing.T) {
	wire := func(err error) error {
		return &dialect.WireError{Op: "exec", Err: err}
	}
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"pg duplicate", wire(&pgconn.PgError{Code: "23505"}), dialect.IsDuplicateKeyError, true},
		{"http duplicate", wire(&crateError{code: 4091, msg: "dup"}), dialect.IsDuplicateKeyError, true},
		{"message duplicate", errors.New("DuplicateKeyException[A document with the same primary key exists already]"), dialect.IsDuplicateKeyError, true},
		{"pg unknown table", wire(&pgconn.PgError{Code: "42P01"}), dialect.IsUnknownRelationError, true},
		{"http unknown table", wire(&crateError{code: 4041, msg: "Relation 'doc.x' unknown"}), dialect.IsUnknownRelationError, true},
		{"http unknown schema", wire(&crateError{code: 4045}), dialect.IsUnknownRelationError, true},
		{"message unknown table", errors.New("RelationUnknown[Relation 'doc.x' unknown]"), dialect.IsUnknownRelationError, true},
		{"pg table exists", wire(&pgconn.PgError{Code: "42P07"}), dialect.IsRelationExistsError, true},
		{"http table exists", wire(&crateError{code: 4093}), dialect.IsRelationExistsError, true},
		{"pg unknown column", wire(&pgconn.PgError{Code: "42703"}), dialect.IsUnknownColumnError, true},
		{"http unknown column", wire(&crateError{code: 4043}), dialect.IsUnknownColumnError, true},
		{"http unsupported", wire(&crateError{code: 4004}), dialect.IsUnsupportedFeatureError, true},
		{"pg unsupported", wire(&pgconn.PgError{Code: "0A000"}), dialect.IsUnsupportedFeatureError, true},
		{"other code", wire(&pgconn.PgError{Code: "22000"}), dialect.IsDuplicateKeyError, false},
		{"nil", nil, dialect.IsDuplicateKeyError, false},
		{"plain", errors.New("boom"), dialect.IsUnknownRelationError, false},
		{"wrapped twice", fmt.Errorf("insert: %w", wire(&crateError{code: 4091})), dialect.IsDuplicateKeyError, true},
		{"joined with reset error", wire(errors.Join(&pgconn.PgError{Code: "23505"}, errors.New("reset session: conn closed"))), dialect.IsDuplicateKeyError, true},
		{"joined second branch", wire(errors.Join(errors.New("reset session"), &pgconn.PgError{Code: "42P01"})), dialect.IsUnknownRelationError, true},
		{"joined http", fmt.Errorf("apply: %w", errors.Join(errors.New("first"), &crateError{code: 4093})), dialect.IsRelationExistsError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}
