package dialect

import (
	"errors"
	"strings"
)

// sqlStateError is implemented by the errors of the PostgreSQL wire drivers
// (*pgconn.PgError, *pq.Error).
type sqlStateError interface {
	SQLState() string
}

// crateCoder is implemented by errors returned from Crate's HTTP endpoint,
// which carry a numeric Crate error code.
type crateCoder interface {
	CrateCode() int
}

// PostgreSQL SQLSTATE codes reported by Crate over the PG wire protocol.
const (
	pgUniqueViolation    = "23505"
	pgUndefinedTable     = "42P01"
	pgUndefinedColumn    = "42703"
	pgDuplicateTable     = "42P07"
	pgUndefinedSchema    = "3F000"
	pgFeatureUnsupported = "0A000"
)

// Crate HTTP error codes.
const (
	crateUnsupportedFeature = 4004
	crateUnknownRelation    = 4041
	crateUnknownColumn      = 4043
	crateUnknownSchema      = 4045
	crateDuplicateKey       = 4091
	crateRelationExists     = 4093
)

// IsDuplicateKeyError reports if the error resulted from inserting a row
// whose primary key already exists. Crate has no auto-increment, so this
// is how colliding application supplied ids surface.
func IsDuplicateKeyError(err error) bool {
	return matches(err, []string{pgUniqueViolation}, []int{crateDuplicateKey},
		"DuplicateKeyException",
		"A document with the same primary key exists already",
	)
}

// IsUnknownRelationError reports if the error resulted from referencing a
// table that does not exist.
func IsUnknownRelationError(err error) bool {
	return matches(err, []string{pgUndefinedTable, pgUndefinedSchema}, []int{crateUnknownRelation, crateUnknownSchema},
		"RelationUnknown",
		"SchemaUnknownException",
	)
}

// IsRelationExistsError reports if the error resulted from creating a table
// that already exists.
func IsRelationExistsError(err error) bool {
	return matches(err, []string{pgDuplicateTable}, []int{crateRelationExists},
		"RelationAlreadyExists",
	)
}

// IsUnknownColumnError reports if the error resulted from referencing a
// column that does not exist.
func IsUnknownColumnError(err error) bool {
	return matches(err, []string{pgUndefinedColumn}, []int{crateUnknownColumn},
		"ColumnUnknownException",
	)
}

// IsUnsupportedFeatureError reports if the statement used a feature Crate
// does not implement.
func IsUnsupportedFeatureError(err error) bool {
	return matches(err, []string{pgFeatureUnsupported}, []int{crateUnsupportedFeature},
		"UnsupportedFeatureException",
	)
}

func matches(err error, states []string, codes []int, fallbacks ...string) bool {
	if err == nil {
		return false
	}
	// Check for SQLSTATE code (pgx, lib/pq).
	if e, ok := asError[sqlStateError](err); ok {
		for _, s := range states {
			if e.SQLState() == s {
				return true
			}
		}
	}
	// Check for Crate HTTP error codes.
	if e, ok := asError[crateCoder](err); ok {
		for _, c := range codes {
			if e.CrateCode() == c {
				return true
			}
		}
	}
	// Fallback to string matching for drivers that don't implement interfaces.
	return containsAny(err.Error(), fallbacks...)
}

// asError finds the first error of the tree implementing interface T,
// including the branches of joined errors.
func asError[T any](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
