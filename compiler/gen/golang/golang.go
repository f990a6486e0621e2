// Package golang generates parsers as Go programs.
//
// A generated program is one main package: a file per record holding
// its struct type, parser.go holding the helpers and every parse
// function, and the driver file holding main.
package golang

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
	"golang.org/x/tools/imports"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// UtilFile is the name of the utility unit.
const UtilFile = "parser.go"

// Backend generates Go code.
type Backend struct {
	mu       sync.Mutex
	routines map[*gen.Unit]*routine
}

var (
	_ gen.Backend   = (*Backend)(nil)
	_ gen.Formatter = (*Backend)(nil)
	_ gen.Checker   = (*Backend)(nil)
)

// New returns the Go backend.
func New() *Backend { return &Backend{} }

// Name implements gen.Backend.
func (*Backend) Name() string { return "go" }

// PrimitiveType implements gen.TypeMapper.
func (*Backend) PrimitiveType(t field.Type) string {
	switch t {
	case field.TypeInt:
		return "int"
	case field.TypeFloat:
		return "float64"
	case field.TypeString:
		return "string"
	case field.TypeBool:
		return "bool"
	default:
		panic(fmt.Sprintf("golang: unexpected type %v", t))
	}
}

// ListType implements gen.TypeMapper.
func (*Backend) ListType(elem string) string { return "[]" + elem }

// RecordType implements gen.TypeMapper.
func (*Backend) RecordType(name string) string { return "*" + typeName(name) }

// Ext implements gen.Layout.
func (*Backend) Ext() string { return ".go" }

// Comment implements gen.Layout.
func (*Backend) Comment() string { return "//" }

// Indent implements gen.Layout.
func (*Backend) Indent() string { return "\t" }

// FileName implements gen.Layout.
func (b *Backend) FileName(kind gen.UnitKind, name string) string {
	switch kind {
	case gen.UnitUtil:
		return UtilFile
	case gen.UnitDriver:
		return name + b.Ext()
	default:
		return fileName(name) + b.Ext()
	}
}

// Format implements gen.Formatter. It formats the unit and fixes its imports.
func (*Backend) Format(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, nil)
}

// reserved holds the type names whose parse functions would collide
// with package-level helpers.
var reserved = map[string]bool{
	"State": true,
	"Error": true,
	"Input": true,
	"List":  true,
}

// Check implements gen.Checker. It rejects names that map to the same
// Go identifier or collide with helpers.
func (*Backend) Check(s *gen.Schema) error {
	types := make(map[string]string)
	files := make(map[string]string)
	for _, r := range s.Records() {
		name := typeName(r.Name)
		if reserved[name] {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record name %q is reserved in Go", r.Name), nil)
		}
		if prev, ok := types[name]; ok {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record collides with %q as Go type %s", prev, name), nil)
		}
		types[name] = r.Name
		file := fileName(r.Name)
		if prev, ok := files[file]; ok {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record collides with %q as Go file %s.go", prev, file), nil)
		}
		if file+".go" == UtilFile || strings.HasSuffix(file, "_test") {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("Go file name %s.go is reserved", file), nil)
		}
		files[file] = r.Name
		fields := make(map[string]string)
		for _, f := range r.Fields() {
			sf := structField(f.Name)
			if prev, ok := fields[sf]; ok {
				return gen.NewSchemaError(r.Name, f.Name, fmt.Sprintf("field collides with %q as Go field %s", prev, sf), nil)
			}
			fields[sf] = f.Name
		}
	}
	return nil
}

// typeName returns the Go type name of a record.
func typeName(record string) string { return inflect.Camelize(record) }

// structField returns the Go struct field name of a record field.
func structField(name string) string { return inflect.Camelize(name) }

// parseFunc returns the name of the parse function of a record.
func parseFunc(record string) string { return "parse" + typeName(record) }

// fileName returns the base file name of a record declaration.
func fileName(record string) string { return strings.ToLower(inflect.Underscore(record)) }
