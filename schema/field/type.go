package field

import (
	"fmt"
	"regexp"
	"strings"
)

// A Type represents a primitive field type.
type Type uint8

// List of primitive field types.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeBool:    "bool",
}

// String returns the format-file spelling of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a known primitive.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the type is numeric.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Types returns all primitive types in declaration order.
func Types() []Type {
	return []Type{TypeInt, TypeFloat, TypeString, TypeBool}
}

// TypeInfo describes the declared type of a field.
type TypeInfo struct {
	// Type is the primitive type. It is TypeInvalid for record references.
	Type Type
	// List marks a list of Type values consuming the remaining tokens of a line.
	List bool
	// Record is the name of the referenced record.
	Record string
}

// IsPrimitive reports if the field holds a single primitive value.
func (ti TypeInfo) IsPrimitive() bool { return ti.Type.Valid() && !ti.List }

// IsList reports if the field holds a list of primitive values.
func (ti TypeInfo) IsList() bool { return ti.Type.Valid() && ti.List }

// IsRecord reports if the field references another record.
func (ti TypeInfo) IsRecord() bool { return ti.Record != "" }

// String returns the format-file spelling of the type.
func (ti TypeInfo) String() string {
	switch {
	case ti.IsRecord():
		return ti.Record
	case ti.List:
		return "list(" + ti.Type.String() + ")"
	default:
		return ti.Type.String()
	}
}

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	listRe  = regexp.MustCompile(`^list\(\s*([a-z]+)\s*\)$`)
)

// ValidName reports if s can be used as a record or field name.
func ValidName(s string) bool {
	return identRe.MatchString(s)
}

// ParseType parses the format-file spelling of a field type. Names that
// are neither primitives nor lists are treated as record references.
func ParseType(s string) (*TypeInfo, error) {
	s = strings.TrimSpace(s)
	if m := listRe.FindStringSubmatch(s); m != nil {
		t, ok := lookup(m[1])
		if !ok {
			return nil, fmt.Errorf("field: invalid list element type %q", m[1])
		}
		return &TypeInfo{Type: t, List: true}, nil
	}
	if t, ok := lookup(s); ok {
		return &TypeInfo{Type: t}, nil
	}
	if !ValidName(s) {
		return nil, fmt.Errorf("field: invalid type name %q", s)
	}
	return &TypeInfo{Record: s}, nil
}

func lookup(s string) (Type, bool) {
	for _, t := range Types() {
		if typeNames[t] == s {
			return t, true
		}
	}
	return TypeInvalid, false
}
