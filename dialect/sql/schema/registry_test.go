package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crate/schema/field"
)

func TestCrateTypes(t *testing.T) {
	r := CrateTypes()
	want := map[field.Type]string{
		field.TypeBool:   "boolean",
		field.TypeString: "string",
		field.TypeInt:    "integer",
		field.TypeFloat:  "float",
		field.TypeBytes:  "byte",
		field.TypeTime:   "timestamp",
		field.TypeObject: "object",
		field.TypeArray:  "array",
		field.TypeIP:     "ip",
	}
	for k, name := range want {
		got, err := r.DialectName(k)
		require.NoError(t, err)
		assert.Equal(t, name, got, k.String())
	}
}

func TestTypeRegistryRoundTrip(t *testing.T) {
	r := CrateTypes()
	for _, k := range field.Types() {
		t.Run(k.String(), func(t *testing.T) {
			name, err := r.DialectName(k)
			require.NoError(t, err)
			got, err := r.Kind(name)
			require.NoError(t, err)
			assert.Equal(t, k, got)
		})
	}
}

func TestTypeRegistryKind(t *testing.T) {
	r := CrateTypes()
	tests := []struct {
		in   string
		want field.Type
	}{
		{"string_array", field.TypeArray},
		{"TEXT_ARRAY", field.TypeArray},
		{"object_array", field.TypeArray},
		{"array(integer)", field.TypeArray},
		{"object", field.TypeObject},
		{"OBJECT(DYNAMIC)", field.TypeObject},
		{"object(strict)", field.TypeObject},
		{"text", field.TypeString},
		{"character varying", field.TypeString},
		{"bigint", field.TypeInt},
		{"long", field.TypeInt},
		{"smallint", field.TypeInt},
		{"  Double  ", field.TypeFloat},
		{"real", field.TypeFloat},
		{"timestamp with time zone", field.TypeTime},
		{"geo_point", field.TypeObject},
		{"geo_shape", field.TypeObject},
		{"ip", field.TypeIP},
		{"boolean", field.TypeBool},
		{"time with time zone", field.TypeTime},
		{"timetz", field.TypeTime},
		{"timestamp(3) with time zone", field.TypeTime},
		{"varchar(255)", field.TypeString},
		{"numeric(10, 2)", field.TypeFloat},
		{"bit", field.TypeBytes},
		{"bit(8)", field.TypeBytes},
		{"float_vector(4)", field.TypeArray},
		{"regclass", field.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.Kind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeRegistryUnknown(t *testing.T) {
	r := CrateTypes()
	_, err := r.Kind("interval")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.True(t, IsUnknownKind(err))
	assert.EqualError(t, err, `crate: unknown dialect type "interval"`)

	_, err = NewTypeRegistry().DialectName(field.TypeBool)
	require.Error(t, err)
	var uerr *UnknownKindError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, field.TypeBool, uerr.Kind)
	assert.EqualError(t, err, "crate: no dialect type registered for kind boolean")
}

func TestTypeRegistryRegister(t *testing.T) {
	r := NewTypeRegistry().
		Register(field.TypeString, "keyword").
		Register(field.TypeString, "text")
	name, err := r.DialectName(field.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "text", name)

	_, err = r.Kind("keyword")
	assert.True(t, IsUnknownKind(err), "replaced names are not resolved")
	k, err := r.Kind("text")
	require.NoError(t, err)
	assert.Equal(t, field.TypeString, k)
}

func TestTypeRegistryClone(t *testing.T) {
	r := CrateTypes()
	c := r.Clone().Register(field.TypeString, "text")
	name, err := r.DialectName(field.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "string", name)
	name, err = c.DialectName(field.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "text", name)
}

func TestTypeRegistryElementKind(t *testing.T) {
	r := CrateTypes()
	tests := []struct {
		in   string
		want field.Type
	}{
		{"string_array", field.TypeString},
		{"text_array", field.TypeString},
		{"bigint_array", field.TypeInt},
		{"object_array", field.TypeObject},
		{"array(double)", field.TypeFloat},
		{"timestamp with time zone_array", field.TypeTime},
		{"float_vector(4)", field.TypeFloat},
		{"varchar(32)_array", field.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.ElementKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	for _, in := range []string{"string", "array_array", "foo_array"} {
		_, err := r.ElementKind(in)
		assert.True(t, IsUnknownKind(err), in)
	}
}
