package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnitKind distinguishes the units produced by one generation run.
type UnitKind uint8

// Unit kinds.
const (
	// UnitDeclaration holds the declaration of one record.
	UnitDeclaration UnitKind = iota
	// UnitUtil holds the helpers and every parse routine.
	UnitUtil
	// UnitDriver holds the program entry point.
	UnitDriver
)

// String implements fmt.Stringer.
func (k UnitKind) String() string {
	switch k {
	case UnitDeclaration:
		return "declaration"
	case UnitUtil:
		return "util"
	case UnitDriver:
		return "driver"
	default:
		return fmt.Sprintf("UnitKind(%d)", k)
	}
}

// Unit is an indentation-aware text buffer holding one generated file.
type Unit struct {
	// Kind of the unit.
	Kind UnitKind
	// Path is the file name relative to the target directory.
	Path string

	comment string
	indent  string
	depth   int
	buf     bytes.Buffer
	flushed bool
}

// NewUnit returns an empty unit using the comment and indent
// conventions of l.
func NewUnit(kind UnitKind, path string, l Layout) *Unit {
	return &Unit{
		Kind:    kind,
		Path:    path,
		comment: l.Comment(),
		indent:  l.Indent(),
	}
}

// Line appends one line at the current indentation.
func (u *Unit) Line(s string) {
	if s == "" {
		u.buf.WriteByte('\n')
		return
	}
	for i := 0; i < u.depth; i++ {
		u.buf.WriteString(u.indent)
	}
	u.buf.WriteString(s)
	u.buf.WriteByte('\n')
}

// Linef appends one formatted line at the current indentation.
func (u *Unit) Linef(format string, args ...any) {
	u.Line(fmt.Sprintf(format, args...))
}

// Text appends multi-line text, indenting every line. A trailing
// newline in s is ignored.
func (u *Unit) Text(s string) {
	for _, l := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		u.Line(l)
	}
}

// Blank appends an empty line.
func (u *Unit) Blank() { u.Line("") }

// Comment appends s as line comments, one per line of s.
func (u *Unit) Comment(s string) {
	for _, l := range strings.Split(s, "\n") {
		u.Line(strings.TrimRight(u.comment+" "+l, " "))
	}
}

// Indent increases the indentation by one level.
func (u *Unit) Indent() { u.depth++ }

// Dedent decreases the indentation by one level.
func (u *Unit) Dedent() {
	if u.depth == 0 {
		panic("gen: unbalanced dedent")
	}
	u.depth--
}

// Scope appends open, body indented by one level, and close.
// An empty close line is omitted.
func (u *Unit) Scope(open, close string, body func()) {
	u.Line(open)
	u.Indent()
	body()
	u.Dedent()
	if close != "" {
		u.Line(close)
	}
}

// Bytes returns the content of the unit.
func (u *Unit) Bytes() []byte { return u.buf.Bytes() }

// Format replaces the content of the unit with the result of fn.
// It must be called before Flush.
func (u *Unit) Format(fn func(path string, src []byte) ([]byte, error)) error {
	if u.flushed {
		return NewGenerationError("format", u.Path, "unit already flushed", nil)
	}
	out, err := fn(u.Path, u.buf.Bytes())
	if err != nil {
		return err
	}
	u.buf.Reset()
	u.buf.Write(out)
	return nil
}

// Flush writes the unit to dir. A unit can be flushed only once.
func (u *Unit) Flush(dir string) error {
	if u.flushed {
		return NewGenerationError("write", u.Path, "unit already flushed", nil)
	}
	path := filepath.Join(dir, u.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError("write", u.Path, "create directory", err)
	}
	if err := os.WriteFile(path, u.buf.Bytes(), 0o644); err != nil {
		return NewGenerationError("write", u.Path, "write file", err)
	}
	u.flushed = true
	return nil
}
