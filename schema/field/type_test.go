package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImpGuard/instaparse/schema/field"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    field.TypeInfo
		wantErr bool
	}{
		{in: "int", want: field.TypeInfo{Type: field.TypeInt}},
		{in: "float", want: field.TypeInfo{Type: field.TypeFloat}},
		{in: "string", want: field.TypeInfo{Type: field.TypeString}},
		{in: " bool ", want: field.TypeInfo{Type: field.TypeBool}},
		{in: "list(int)", want: field.TypeInfo{Type: field.TypeInt, List: true}},
		{in: "list( string )", want: field.TypeInfo{Type: field.TypeString, List: true}},
		{in: "Point", want: field.TypeInfo{Record: "Point"}},
		{in: "list(Point)", wantErr: true},
		{in: "list(list(int))", wantErr: true},
		{in: "9lives", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := field.ParseType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestTypeInfoPredicates(t *testing.T) {
	t.Run("primitive", func(t *testing.T) {
		ti := field.TypeInfo{Type: field.TypeFloat}
		assert.True(t, ti.IsPrimitive())
		assert.False(t, ti.IsList())
		assert.False(t, ti.IsRecord())
		assert.Equal(t, "float", ti.String())
	})

	t.Run("list", func(t *testing.T) {
		ti := field.TypeInfo{Type: field.TypeBool, List: true}
		assert.False(t, ti.IsPrimitive())
		assert.True(t, ti.IsList())
		assert.Equal(t, "list(bool)", ti.String())
	})

	t.Run("record", func(t *testing.T) {
		ti := field.TypeInfo{Record: "Header"}
		assert.False(t, ti.IsPrimitive())
		assert.False(t, ti.IsList())
		assert.True(t, ti.IsRecord())
		assert.Equal(t, "Header", ti.String())
	})
}

func TestType(t *testing.T) {
	assert.Equal(t, []field.Type{field.TypeInt, field.TypeFloat, field.TypeString, field.TypeBool}, field.Types())
	assert.True(t, field.TypeInt.Numeric())
	assert.False(t, field.TypeBool.Numeric())
	assert.False(t, field.TypeInvalid.Valid())
	assert.Equal(t, "invalid", field.Type(42).String())
}
