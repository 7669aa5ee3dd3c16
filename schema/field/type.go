package field

import (
	"fmt"
	"strings"
)

// Type is the semantic kind of a column, independent of how a dialect
// spells it.
type Type uint8

// Semantic kinds. The zero value means the kind was not set.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeString
	TypeInt
	TypeFloat
	TypeBytes
	TypeTime
	TypeObject
	TypeArray
	TypeIP
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "boolean",
	TypeString:  "string",
	TypeInt:     "integer",
	TypeFloat:   "float",
	TypeBytes:   "binary",
	TypeTime:    "datetime",
	TypeObject:  "object",
	TypeArray:   "array",
	TypeIP:      "ip",
}

// aliases maps the accepted spellings of a kind in declarations and
// configuration files.
var aliases = map[string]Type{
	"bool":      TypeBool,
	"boolean":   TypeBool,
	"string":    TypeString,
	"int":       TypeInt,
	"integer":   TypeInt,
	"float":     TypeFloat,
	"binary":    TypeBytes,
	"bytes":     TypeBytes,
	"datetime":  TypeTime,
	"timestamp": TypeTime,
	"time":      TypeTime,
	"object":    TypeObject,
	"array":     TypeArray,
	"ip":        TypeIP,
	"inet":      TypeIP,
}

// Types returns all valid kinds in declaration order.
func Types() []Type {
	ts := make([]Type, 0, endTypes-1)
	for t := TypeBool; t < endTypes; t++ {
		ts = append(ts, t)
	}
	return ts
}

// String returns the semantic name of the kind.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports if the kind is one of the known kinds.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Primitive reports if the kind is a scalar kind, that is, neither an
// array nor an object.
func (t Type) Primitive() bool {
	return t.Valid() && t != TypeObject && t != TypeArray
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("field: cannot marshal invalid type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType parses a kind name or one of its aliases (e.g. "boolean",
// "timestamp", "inet"). Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	if t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", s)
}

// Behaviour is the column policy of an object column.
type Behaviour string

// Object column policies understood by Crate.
const (
	Strict  Behaviour = "strict"
	Dynamic Behaviour = "dynamic"
	Ignored Behaviour = "ignored"
)

// Valid reports if the behaviour is one of the known policies.
func (b Behaviour) Valid() bool {
	switch b {
	case Strict, Dynamic, Ignored:
		return true
	}
	return false
}
