// Package java generates parsers as Java programs.
//
// A generated program lives in the default package: a class per record
// with public fields, ParserUtil holding the parse state and every parse
// method, and the driver class holding main.
package java

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// UtilClass is the class of the utility unit.
const UtilClass = "ParserUtil"

// Backend generates Java code.
type Backend struct{}

var (
	_ gen.Backend = (*Backend)(nil)
	_ gen.Checker = (*Backend)(nil)
)

// New returns the Java backend.
func New() *Backend { return &Backend{} }

// Name implements gen.Backend.
func (*Backend) Name() string { return "java" }

// PrimitiveType implements gen.TypeMapper.
func (*Backend) PrimitiveType(t field.Type) string {
	switch t {
	case field.TypeInt:
		return "int"
	case field.TypeFloat:
		return "double"
	case field.TypeString:
		return "String"
	case field.TypeBool:
		return "boolean"
	default:
		panic(fmt.Sprintf("java: unexpected type %v", t))
	}
}

// boxed maps primitive types to their wrapper classes.
var boxed = map[string]string{
	"int":     "Integer",
	"double":  "Double",
	"boolean": "Boolean",
}

// ListType implements gen.TypeMapper. Primitive elements are boxed.
func (*Backend) ListType(elem string) string {
	if b, ok := boxed[elem]; ok {
		elem = b
	}
	return "ArrayList<" + elem + ">"
}

// RecordType implements gen.TypeMapper.
func (*Backend) RecordType(name string) string { return className(name) }

// Ext implements gen.Layout.
func (*Backend) Ext() string { return ".java" }

// Comment implements gen.Layout.
func (*Backend) Comment() string { return "//" }

// Indent implements gen.Layout.
func (*Backend) Indent() string { return "    " }

// FileName implements gen.Layout. Every file holds the public class of
// the same name.
func (b *Backend) FileName(kind gen.UnitKind, name string) string {
	if kind == gen.UnitUtil {
		return UtilClass + b.Ext()
	}
	return className(name) + b.Ext()
}

// keywords holds the Java reserved words and literals.
var keywords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`abstract assert boolean break byte case catch char class const
		continue default do double else enum extends final finally float for goto if implements
		import instanceof int interface long native new package private protected public return
		short static strictfp super switch synchronized this throw throws transient try void
		volatile while true false null var record yield`) {
		keywords[w] = true
	}
}

// classes holds the class names the generated code depends on.
var classes = map[string]bool{
	UtilClass:          true,
	"ParseState":       true,
	"ParseException":   true,
	"ArrayList":        true,
	"Pattern":          true,
	"IOException":      true,
	"RandomAccessFile": true,
	"String":           true,
	"Integer":          true,
	"Double":           true,
	"Boolean":          true,
	"Object":           true,
	"System":           true,
}

// Check implements gen.Checker.
func (*Backend) Check(s *gen.Schema) error {
	seen := make(map[string]string)
	for _, r := range s.Records() {
		name := className(r.Name)
		if keywords[r.Name] || classes[name] {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record name %q is reserved in Java", r.Name), nil)
		}
		if prev, ok := seen[name]; ok {
			return gen.NewSchemaError(r.Name, "", fmt.Sprintf("record collides with %q as Java class %s", prev, name), nil)
		}
		seen[name] = r.Name
		for _, f := range r.Fields() {
			if keywords[f.Name] {
				return gen.NewSchemaError(r.Name, f.Name, fmt.Sprintf("field name %q is a Java keyword", f.Name), nil)
			}
		}
	}
	return nil
}

// className returns the Java class name of a record.
func className(record string) string {
	return cases.Title(language.English, cases.NoLower).String(record)
}

// parseMethod returns the name of the parse method of a record.
func parseMethod(record string) string { return "parse" + className(record) }
