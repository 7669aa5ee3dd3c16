package schema

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/syssam/crate/schema/field"
)

// TypeRegistry maps semantic kinds to dialect type names and resolves
// dialect type strings reported by the database back to kinds.
//
// A registry is not safe for concurrent mutation. Adapters build one per
// connection and only read from it afterwards.
type TypeRegistry struct {
	forward map[field.Type]string
	reverse map[string]field.Type
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		forward: make(map[field.Type]string),
		reverse: make(map[string]field.Type),
	}
}

// CrateTypes returns a registry holding the Crate type names.
func CrateTypes() *TypeRegistry {
	return NewTypeRegistry().
		Register(field.TypeBool, "boolean").
		Register(field.TypeString, "string").
		Register(field.TypeInt, "integer").
		Register(field.TypeFloat, "float").
		Register(field.TypeBytes, "byte").
		Register(field.TypeTime, "timestamp").
		Register(field.TypeObject, "object").
		Register(field.TypeArray, "array").
		Register(field.TypeIP, "ip")
}

// Register maps kind to the dialect type name. A later registration of
// the same kind replaces the earlier one.
func (r *TypeRegistry) Register(kind field.Type, name string) *TypeRegistry {
	if old, ok := r.forward[kind]; ok && r.reverse[old] == kind {
		delete(r.reverse, old)
	}
	r.forward[kind] = name
	r.reverse[name] = kind
	return r
}

// Clone returns a copy of the registry.
func (r *TypeRegistry) Clone() *TypeRegistry {
	c := NewTypeRegistry()
	for k, v := range r.forward {
		c.forward[k] = v
	}
	for k, v := range r.reverse {
		c.reverse[k] = v
	}
	return c
}

// DialectName returns the dialect type name of kind.
func (r *TypeRegistry) DialectName(kind field.Type) (string, error) {
	name, ok := r.forward[kind]
	if !ok {
		return "", &UnknownKindError{Kind: kind}
	}
	return name, nil
}

// baseTypes resolves the primitive type names Crate reports in
// information_schema, keyed by their case-folded form.
var baseTypes = map[string]field.Type{
	"bool":                        field.TypeBool,
	"boolean":                     field.TypeBool,
	"text":                        field.TypeString,
	"string":                      field.TypeString,
	"varchar":                     field.TypeString,
	"character varying":           field.TypeString,
	"char":                        field.TypeString,
	"character":                   field.TypeString,
	"byte":                        field.TypeBytes,
	"tinyint":                     field.TypeBytes,
	"short":                       field.TypeInt,
	"smallint":                    field.TypeInt,
	"int":                         field.TypeInt,
	"integer":                     field.TypeInt,
	"long":                        field.TypeInt,
	"bigint":                      field.TypeInt,
	"float":                       field.TypeFloat,
	"real":                        field.TypeFloat,
	"double":                      field.TypeFloat,
	"double precision":            field.TypeFloat,
	"numeric":                     field.TypeFloat,
	"timestamp":                   field.TypeTime,
	"timestamptz":                 field.TypeTime,
	"timestamp with time zone":    field.TypeTime,
	"timestamp without time zone": field.TypeTime,
	"date":                        field.TypeTime,
	"time":                        field.TypeTime,
	"timetz":                      field.TypeTime,
	"time with time zone":         field.TypeTime,
	"time without time zone":      field.TypeTime,
	"decimal":                     field.TypeFloat,
	"bit":                         field.TypeBytes,
	"bit varying":                 field.TypeBytes,
	"oid":                         field.TypeInt,
	"regclass":                    field.TypeString,
	"regproc":                     field.TypeString,
	"json":                        field.TypeString,
	"float_vector":                field.TypeArray,
	"ip":                          field.TypeIP,
	"geo_point":                   field.TypeObject,
	"geo_shape":                   field.TypeObject,
}

// Kind resolves a dialect type string to a kind. The rules are applied
// in order:
//
//  1. an exact match of a registered dialect type name;
//  2. a case-insensitive "_array" substring resolves to TypeArray;
//  3. a case-insensitive "object" substring resolves to TypeObject;
//  4. a case-insensitive match of a primitive Crate type name, with or
//     without its length or precision modifier.
//
// Any other string returns an UnknownKindError.
func (r *TypeRegistry) Kind(dialectType string) (field.Type, error) {
	if k, ok := r.reverse[dialectType]; ok {
		return k, nil
	}
	folded := fold(dialectType)
	switch {
	case strings.Contains(folded, "_array"), strings.HasPrefix(folded, "array("):
		return field.TypeArray, nil
	case strings.Contains(folded, "object"):
		return field.TypeObject, nil
	}
	if k, ok := baseTypes[folded]; ok {
		return k, nil
	}
	// Length and precision modifiers: "varchar(255)", "bit(8)",
	// "timestamp(3) with time zone".
	if stripped := typeModifier.ReplaceAllString(folded, ""); stripped != folded {
		if k, ok := baseTypes[strings.TrimSpace(stripped)]; ok {
			return k, nil
		}
	}
	return field.TypeInvalid, &UnknownKindError{DialectType: dialectType}
}

var typeModifier = regexp.MustCompile(`\s*\(\s*\d+(\s*,\s*\d+)?\s*\)`)

// ElementKind resolves the element kind of an array type string, in the
// "<elem>_array" or "array(<elem>)" forms.
//
//	r.ElementKind("text_array")	// field.TypeString
func (r *TypeRegistry) ElementKind(dialectType string) (field.Type, error) {
	folded := fold(dialectType)
	var elem string
	switch {
	case strings.HasSuffix(folded, "_array"):
		elem = strings.TrimSuffix(folded, "_array")
	case strings.HasPrefix(folded, "array(") && strings.HasSuffix(folded, ")"):
		elem = folded[len("array(") : len(folded)-1]
	case strings.HasPrefix(folded, "float_vector"):
		return field.TypeFloat, nil
	default:
		return field.TypeInvalid, &UnknownKindError{DialectType: dialectType}
	}
	k, err := r.Kind(elem)
	if err != nil || k == field.TypeArray {
		return field.TypeInvalid, &UnknownKindError{DialectType: dialectType}
	}
	return k, nil
}

// fold returns the case-folded, trimmed form of s. A Caser holds state,
// one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
