package python

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// Declaration implements gen.UnitEmitter.
func (*Backend) Declaration(u *gen.Unit, r *gen.Record, members []gen.Member) {
	u.Blank()
	u.Scope(fmt.Sprintf("class %s:", r.Name), "", func() {
		u.Linef(`"""A parsed %s record."""`, r.Name)
		u.Blank()
		u.Scope("def __init__(self):", "", func() {
			if len(members) == 0 {
				u.Line("pass")
				return
			}
			for _, m := range members {
				u.Linef("self.%s = None  # %s", m.Field.Name, m.Type)
			}
		})
	})
}

// BeginUtil implements gen.UnitEmitter. It imports every record class.
func (*Backend) BeginUtil(u *gen.Unit, s *gen.Schema) {
	u.Line("import re")
	u.Blank()
	for _, r := range s.Records() {
		u.Linef("from %s import %s", moduleName(r.Name), r.Name)
	}
}

// Helpers implements gen.UnitEmitter.
func (*Backend) Helpers(u *gen.Unit, s *gen.Schema) {
	u.Blank()
	u.Linef("DELIMITER = %s", quote(s.Delimiter()))
	for _, h := range []string{stateClass, convFuncs} {
		u.Blank()
		u.Blank()
		u.Text(h)
	}
	for _, t := range field.Types() {
		conv := convFunc(t)
		u.Blank()
		u.Blank()
		u.Scope(fmt.Sprintf("def %s_list(state, record, tokens):", conv), "", func() {
			u.Linef("return [%s(state, record, t) for t in tokens]", conv)
		})
	}
}

// EndUtil implements gen.UnitEmitter.
func (*Backend) EndUtil(*gen.Unit, *gen.Schema) {}

// Driver implements gen.UnitEmitter.
func (*Backend) Driver(u *gen.Unit, d gen.Driver) {
	root := d.Root.Name
	u.Line("import sys")
	u.Blank()
	u.Linef("from %s import ParseError, ParseState, %s", UtilModule, parseFunc(root))
	u.Blank()
	u.Blank()
	u.Scope("def handle(input):", "", func() {
		u.Line(`"""Called with the parsed input."""`)
		if len(d.Hook) == 0 {
			u.Line("pass")
		}
		for _, l := range d.Hook {
			u.Line(l)
		}
	})
	u.Blank()
	u.Blank()
	u.Scope("def main():", "", func() {
		u.Scope("if len(sys.argv) != 2:", "", func() {
			u.Line(`sys.stderr.write("usage: %s FILE\n" % sys.argv[0])`)
			u.Line("sys.exit(1)")
		})
		u.Line("path = sys.argv[1]")
		u.Scope("try:", "", func() {
			u.Scope("with open(path) as f:", "", func() {
				u.Line("state = ParseState(f)")
				u.Linef("result = %s(state)", parseFunc(root))
				u.Linef("state.expect_eof(%s)", quote(root))
			})
		})
		except := func(clause, msg string) {
			u.Scope("except "+clause+":", "", func() {
				u.Line("sys.stderr.write(" + msg + ")")
				u.Line("sys.exit(1)")
			})
		}
		except("FileNotFoundError", `"Input file '%s' not found.\n" % path`)
		except("ParseError as e", `"%s\n" % e`)
		except("OSError as e", `"Could not read \"%s\": %s\n" % (path, e)`)
		except("Exception as e", `"Unknown error occurred: %s\n" % e`)
		u.Line("handle(result)")
	})
	u.Blank()
	u.Blank()
	u.Scope(`if __name__ == "__main__":`, "", func() {
		u.Line("main()")
	})
}

// BeginRoutine implements gen.RoutineEmitter.
func (*Backend) BeginRoutine(u *gen.Unit, r gen.Routine) {
	u.Blank()
	u.Blank()
	u.Linef("def %s(state):", parseFunc(r.Record.Name))
	u.Indent()
	u.Linef("result = %s()", r.Type)
}

// EndRoutine implements gen.RoutineEmitter.
func (*Backend) EndRoutine(u *gen.Unit, _ gen.Routine) {
	u.Line("return result")
	u.Dedent()
}

// ExpectBlank implements gen.RoutineEmitter.
func (*Backend) ExpectBlank(u *gen.Unit, site gen.Site) {
	u.Linef("state.expect_blank(%s)", quote(site.Record))
}

// ReadText implements gen.RoutineEmitter.
func (*Backend) ReadText(u *gen.Unit, site gen.Site) {
	u.Linef("text = state.read_line(%s)", quote(site.Record))
}

// ReadTokens implements gen.RoutineEmitter.
func (*Backend) ReadTokens(u *gen.Unit, site gen.Site) {
	u.Linef("fields = state.read_fields(%s)", quote(site.Record))
}

// CheckTokens implements gen.RoutineEmitter.
func (*Backend) CheckTokens(u *gen.Unit, site gen.Site, n int, atLeast bool, msg gen.Message) {
	op := "!="
	if atLeast {
		op = "<"
	}
	u.Scope(fmt.Sprintf("if len(fields) %s %d:", op, n), "", func() {
		u.Line(raise(site, msg))
	})
}

// Convert implements gen.RoutineEmitter.
func (*Backend) Convert(u *gen.Unit, site gen.Site, dst gen.Dest, kind field.Type, src gen.Source) {
	rec := quote(site.Record)
	switch src.Kind {
	case gen.SourceText:
		u.Linef("%s = %s(state, %s, text)", dest(dst), convFunc(kind), rec)
	case gen.SourceToken:
		u.Linef("%s = %s(state, %s, fields[%d])", dest(dst), convFunc(kind), rec, src.Index)
	case gen.SourceRest:
		u.Linef("%s = %s_list(state, %s, fields[%d:])", dest(dst), convFunc(kind), rec, src.Index)
	}
}

// CallRecord implements gen.RoutineEmitter.
func (*Backend) CallRecord(u *gen.Unit, _ gen.Site, dst gen.Dest, record string) {
	u.Linef("%s = %s(state)", dest(dst), parseFunc(record))
}

// AdvanceLine implements gen.RoutineEmitter.
func (*Backend) AdvanceLine(u *gen.Unit) { u.Line("state.line += 1") }

// InitCollection implements gen.RoutineEmitter.
func (*Backend) InitCollection(u *gen.Unit, f *gen.Field, _ string) {
	u.Linef("result.%s = []", f.Name)
}

// DeclareElement implements gen.RoutineEmitter.
func (*Backend) DeclareElement(u *gen.Unit, _ *gen.Field, _ string) {
	u.Line("elem = None")
}

// AppendElement implements gen.RoutineEmitter.
func (*Backend) AppendElement(u *gen.Unit, f *gen.Field) {
	u.Linef("result.%s.append(elem)", f.Name)
}

// RequireElements implements gen.RoutineEmitter.
func (*Backend) RequireElements(u *gen.Unit, site gen.Site, f *gen.Field, msg gen.Message) {
	u.Scope(fmt.Sprintf("if len(result.%s) == 0:", f.Name), "", func() {
		u.Line(raise(site, msg))
	})
}

// Block implements gen.ControlEmitter. Python has no block scope; the
// label is written as a comment.
func (*Backend) Block(u *gen.Unit, label string, body func()) {
	u.Comment(label)
	body()
}

// CountedLoop implements gen.ControlEmitter.
func (*Backend) CountedLoop(u *gen.Unit, n gen.Count, body func()) {
	u.Scope(fmt.Sprintf("for i in range(%s):", count(n)), "", body)
}

// UnboundedLoop implements gen.ControlEmitter.
func (*Backend) UnboundedLoop(u *gen.Unit, body func()) {
	u.Scope("while True:", "", body)
}

// Break implements gen.ControlEmitter.
func (*Backend) Break(u *gen.Unit) { u.Line("break") }

// If implements gen.ControlEmitter.
func (*Backend) If(u *gen.Unit, c gen.Cond, body func()) {
	var cond string
	switch c.Kind {
	case gen.CondNotLast:
		cond = fmt.Sprintf("i < %s - 1", count(c.Count))
	case gen.CondHasElements:
		cond = fmt.Sprintf("len(result.%s) > 0", c.Field.Name)
	}
	u.Scope("if "+cond+":", "", body)
}

// Guard implements gen.ControlEmitter.
func (*Backend) Guard(u *gen.Unit, site gen.Site, msg gen.Message, body func(gen.Site)) {
	u.Scope("try:", "", func() { body(site.Nested()) })
	u.Scope("except ParseError:", "", func() {
		u.Line(raise(site, msg))
	})
}

// Attempt implements gen.ControlEmitter.
func (*Backend) Attempt(u *gen.Unit, site gen.Site, body func(gen.Site), onRollback func()) {
	u.Line("mark = state.mark()")
	u.Scope("try:", "", func() { body(site.Nested()) })
	u.Scope("except ParseError:", "", func() {
		u.Line("state.reset(mark)")
		onRollback()
	})
}

func dest(d gen.Dest) string {
	if d.Elem {
		return "elem"
	}
	return "result." + d.Field.Name
}

func count(c gen.Count) string {
	if c.Field != nil {
		return "result." + c.Field.Name
	}
	return strconv.Itoa(c.N)
}

func raise(site gen.Site, msg gen.Message) string {
	return fmt.Sprintf("raise state.error(%s, %s)", quote(site.Record), message(msg))
}

// message renders msg as a string concatenation.
func message(msg gen.Message) string {
	parts := make([]string, 0, len(msg))
	for _, p := range msg {
		switch p.Kind {
		case gen.PartText:
			parts = append(parts, quote(p.Text))
		case gen.PartExpected:
			parts = append(parts, "str("+count(p.Count)+")")
		case gen.PartTokens:
			parts = append(parts, "str(len(fields))")
		case gen.PartIteration:
			parts = append(parts, "str(i)")
		}
	}
	return strings.Join(parts, " + ")
}

// quote returns s as a Python string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
