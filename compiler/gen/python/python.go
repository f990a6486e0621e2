// Package python generates parsers as Python 3 programs.
//
// A generated program is a set of modules: one per record holding its
// class, parser_util holding the parse state and every parse function,
// and the driver module.
package python

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// UtilModule is the module of the utility unit.
const UtilModule = "parser_util"

// Backend generates Python code.
type Backend struct{}

var (
	_ gen.Backend = (*Backend)(nil)
	_ gen.Checker = (*Backend)(nil)
)

// New returns the Python backend.
func New() *Backend { return &Backend{} }

// Name implements gen.Backend.
func (*Backend) Name() string { return "python" }

// PrimitiveType implements gen.TypeMapper. Types only appear in
// comments of the generated code.
func (*Backend) PrimitiveType(t field.Type) string {
	switch t {
	case field.TypeInt:
		return "int"
	case field.TypeFloat:
		return "float"
	case field.TypeString:
		return "str"
	case field.TypeBool:
		return "bool"
	default:
		panic(fmt.Sprintf("python: unexpected type %v", t))
	}
}

// ListType implements gen.TypeMapper.
func (*Backend) ListType(elem string) string { return "list[" + elem + "]" }

// RecordType implements gen.TypeMapper.
func (*Backend) RecordType(name string) string { return name }

// Ext implements gen.Layout.
func (*Backend) Ext() string { return ".py" }

// Comment implements gen.Layout.
func (*Backend) Comment() string { return "#" }

// Indent implements gen.Layout.
func (*Backend) Indent() string { return "    " }

// FileName implements gen.Layout.
func (b *Backend) FileName(kind gen.UnitKind, name string) string {
	switch kind {
	case gen.UnitUtil:
		return UtilModule + b.Ext()
	case gen.UnitDriver:
		return name + b.Ext()
	default:
		return moduleName(name) + b.Ext()
	}
}

var keywords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`False None True and as assert async await break class continue
		def del elif else except finally for from global if import in is lambda nonlocal not or
		pass raise return try while with yield`) {
		keywords[w] = true
	}
}

// names holds the names a record class must not shadow: the module-level
// names of the utility module, the builtins it calls and the locals of
// the parse functions.
var names = map[string]bool{}

// modules holds the module names a record module must not take: the
// modules imported by the generated code or loaded before it runs, and
// the modules whose parse function would collide with a conversion
// function.
var modules = map[string]bool{
	UtilModule: true,
}

func init() {
	for _, w := range strings.Fields(`DELIMITER FLOAT_SYNTAX INT_SYNTAX ParseError ParseState re
		Exception FileNotFoundError OSError ValueError bool float int len list open print range str
		elem fields i mark result state text`) {
		names[w] = true
	}
	for _, m := range strings.Fields(`abc builtins codecs encodings errno genericpath io marshal os
		posix posixpath re site stat sys time`) {
		modules[m] = true
	}
	for _, t := range field.Types() {
		modules[t.String()] = true
		modules[t.String()+"_list"] = true
	}
}

// Check implements gen.Checker. A record module named like the driver
// is rejected when the units are built.
func (*Backend) Check(s *gen.Schema) error {
	seen := make(map[string]string)
	for _, r := range s.Records() {
		if keywords[r.Name] || names[r.Name] || strings.HasPrefix(r.Name, "parse_") {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record name %q is reserved in Python", r.Name), nil)
		}
		mod := moduleName(r.Name)
		if modules[mod] {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("Python module name %s is reserved", mod), nil)
		}
		if prev, ok := seen[mod]; ok {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record collides with %q as Python module %s", prev, mod), nil)
		}
		seen[mod] = r.Name
		for _, f := range r.Fields() {
			if keywords[f.Name] {
				return gen.NewSchemaError(r.Name, f.Name, fmt.Sprintf("field name %q is a Python keyword", f.Name), nil)
			}
		}
	}
	return nil
}

// moduleName returns the module of a record declaration.
func moduleName(record string) string { return strings.ToLower(inflect.Underscore(record)) }

// parseFunc returns the name of the parse function of a record.
func parseFunc(record string) string { return "parse_" + moduleName(record) }
