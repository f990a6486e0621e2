package java

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// Declaration implements gen.UnitEmitter.
func (*Backend) Declaration(u *gen.Unit, r *gen.Record, members []gen.Member) {
	for _, m := range members {
		if strings.HasPrefix(m.Type, "ArrayList<") {
			u.Line("import java.util.ArrayList;")
			u.Blank()
			break
		}
	}
	u.Linef("/** A parsed %s record. */", r.Name)
	u.Scope(fmt.Sprintf("public class %s {", className(r.Name)), "}", func() {
		for _, m := range members {
			u.Linef("public %s %s;", m.Type, m.Field.Name)
		}
	})
}

// BeginUtil implements gen.UnitEmitter.
func (*Backend) BeginUtil(u *gen.Unit, _ *gen.Schema) {
	for _, class := range []string{"java.io.IOException", "java.io.RandomAccessFile", "java.util.ArrayList", "java.util.regex.Pattern"} {
		u.Linef("import %s;", class)
	}
	u.Blank()
	u.Line("public class " + UtilClass + " {")
	u.Indent()
}

// Helpers implements gen.UnitEmitter.
func (*Backend) Helpers(u *gen.Unit, s *gen.Schema) {
	u.Linef("static final String DELIMITER = %s;", quote(s.Delimiter()))
	u.Blank()
	u.Text(stateClass)
	for _, t := range field.Types() {
		u.Blank()
		u.Text(convMethods[t])
	}
	for _, t := range field.Types() {
		typ, conv := New().PrimitiveType(t), convMethod(t)
		list := New().ListType(typ)
		u.Blank()
		u.Scope(fmt.Sprintf("static %s %sList(ParseState s, String record, String[] tokens, int from) {", list, conv), "}", func() {
			u.Linef("%s out = new ArrayList<>();", list)
			u.Scope("for (int i = from; i < tokens.length; i++) {", "}", func() {
				u.Linef("out.add(%s(s, record, tokens[i]));", conv)
			})
			u.Line("return out;")
		})
	}
}

// EndUtil implements gen.UnitEmitter.
func (*Backend) EndUtil(u *gen.Unit, _ *gen.Schema) {
	u.Dedent()
	u.Line("}")
}

// Driver implements gen.UnitEmitter.
func (*Backend) Driver(u *gen.Unit, d gen.Driver) {
	class := strings.TrimSuffix(u.Path, ".java")
	root := d.Root.Name
	for _, c := range []string{"java.io.FileNotFoundException", "java.io.IOException", "java.io.RandomAccessFile"} {
		u.Linef("import %s;", c)
	}
	u.Blank()
	u.Scope("public class "+class+" {", "}", func() {
		u.Scope("public static void main(String[] args) {", "}", func() {
			u.Scope("if (args.length != 1) {", "}", func() {
				u.Linef("System.err.println(%s);", quote("usage: java "+class+" FILE"))
				u.Line("System.exit(1);")
			})
			u.Linef("%s input = null;", d.RootType)
			u.Scope(`try (RandomAccessFile file = new RandomAccessFile(args[0], "r")) {`, "", func() {
				u.Linef("%s.ParseState s = new %s.ParseState(file);", UtilClass, UtilClass)
				u.Linef("input = %s.%s(s);", UtilClass, parseMethod(root))
				u.Linef("s.expectEOF(%s);", quote(root))
			})
			catch := func(exc, msg string) {
				u.Scope(fmt.Sprintf("} catch (%s e) {", exc), "", func() {
					u.Linef("System.err.println(%s);", msg)
					u.Line("System.exit(1);")
				})
			}
			catch("FileNotFoundException", `"Input file '" + args[0] + "' not found."`)
			catch(UtilClass+".ParseException", "e.getMessage()")
			catch("IOException", `"Could not read \"" + args[0] + "\": " + e.getMessage()`)
			catch("RuntimeException", `"Unknown error occurred: " + e`)
			u.Line("}")
			u.Line("handle(input);")
		})
		u.Blank()
		u.Line("/** Called with the parsed input. */")
		u.Scope(fmt.Sprintf("static void handle(%s input) {", d.RootType), "}", func() {
			for _, l := range d.Hook {
				u.Line(l)
			}
		})
	})
}

// BeginRoutine implements gen.RoutineEmitter.
func (*Backend) BeginRoutine(u *gen.Unit, r gen.Routine) {
	u.Blank()
	u.Linef("static %s %s(ParseState s) throws IOException {", r.Type, parseMethod(r.Record.Name))
	u.Indent()
	u.Linef("%s result = new %s();", r.Type, r.Type)
	if r.Locals.Text {
		u.Line("String text;")
	}
	if r.Locals.Tokens {
		u.Line("String[] fields;")
	}
}

// EndRoutine implements gen.RoutineEmitter.
func (*Backend) EndRoutine(u *gen.Unit, _ gen.Routine) {
	u.Line("return result;")
	u.Dedent()
	u.Line("}")
}

// ExpectBlank implements gen.RoutineEmitter.
func (*Backend) ExpectBlank(u *gen.Unit, site gen.Site) {
	u.Linef("s.expectBlank(%s);", quote(site.Record))
}

// ReadText implements gen.RoutineEmitter.
func (*Backend) ReadText(u *gen.Unit, site gen.Site) {
	u.Linef("text = s.readLine(%s);", quote(site.Record))
}

// ReadTokens implements gen.RoutineEmitter.
func (*Backend) ReadTokens(u *gen.Unit, site gen.Site) {
	u.Linef("fields = s.readFields(%s);", quote(site.Record))
}

// CheckTokens implements gen.RoutineEmitter.
func (*Backend) CheckTokens(u *gen.Unit, site gen.Site, n int, atLeast bool, msg gen.Message) {
	op := "!="
	if atLeast {
		op = "<"
	}
	u.Scope(fmt.Sprintf("if (fields.length %s %d) {", op, n), "}", func() {
		u.Line(throw(site, msg))
	})
}

// Convert implements gen.RoutineEmitter.
func (*Backend) Convert(u *gen.Unit, site gen.Site, dst gen.Dest, kind field.Type, src gen.Source) {
	rec := quote(site.Record)
	switch src.Kind {
	case gen.SourceText:
		u.Linef("%s = %s(s, %s, text);", dest(dst), convMethod(kind), rec)
	case gen.SourceToken:
		u.Linef("%s = %s(s, %s, fields[%d]);", dest(dst), convMethod(kind), rec, src.Index)
	case gen.SourceRest:
		u.Linef("%s = %sList(s, %s, fields, %d);", dest(dst), convMethod(kind), rec, src.Index)
	}
}

// CallRecord implements gen.RoutineEmitter.
func (*Backend) CallRecord(u *gen.Unit, _ gen.Site, dst gen.Dest, record string) {
	u.Linef("%s = %s(s);", dest(dst), parseMethod(record))
}

// AdvanceLine implements gen.RoutineEmitter.
func (*Backend) AdvanceLine(u *gen.Unit) { u.Line("s.line++;") }

// InitCollection implements gen.RoutineEmitter.
func (*Backend) InitCollection(u *gen.Unit, f *gen.Field, _ string) {
	u.Linef("result.%s = new ArrayList<>();", f.Name)
}

// DeclareElement implements gen.RoutineEmitter. The element starts at
// the zero value of its type.
func (*Backend) DeclareElement(u *gen.Unit, _ *gen.Field, typ string) {
	zero := "null"
	switch typ {
	case "int":
		zero = "0"
	case "double":
		zero = "0.0"
	case "boolean":
		zero = "false"
	}
	u.Linef("%s elem = %s;", typ, zero)
}

// AppendElement implements gen.RoutineEmitter.
func (*Backend) AppendElement(u *gen.Unit, f *gen.Field) {
	u.Linef("result.%s.add(elem);", f.Name)
}

// RequireElements implements gen.RoutineEmitter.
func (*Backend) RequireElements(u *gen.Unit, site gen.Site, f *gen.Field, msg gen.Message) {
	u.Scope(fmt.Sprintf("if (result.%s.isEmpty()) {", f.Name), "}", func() {
		u.Line(throw(site, msg))
	})
}

// Block implements gen.ControlEmitter.
func (*Backend) Block(u *gen.Unit, label string, body func()) {
	u.Comment(label)
	u.Scope("{", "}", body)
}

// CountedLoop implements gen.ControlEmitter.
func (*Backend) CountedLoop(u *gen.Unit, n gen.Count, body func()) {
	u.Scope(fmt.Sprintf("for (int i = 0; i < %s; i++) {", count(n)), "}", body)
}

// UnboundedLoop implements gen.ControlEmitter.
func (*Backend) UnboundedLoop(u *gen.Unit, body func()) {
	u.Scope("while (true) {", "}", body)
}

// Break implements gen.ControlEmitter.
func (*Backend) Break(u *gen.Unit) { u.Line("break;") }

// If implements gen.ControlEmitter.
func (*Backend) If(u *gen.Unit, c gen.Cond, body func()) {
	var cond string
	switch c.Kind {
	case gen.CondNotLast:
		cond = fmt.Sprintf("i < %s - 1", count(c.Count))
	case gen.CondHasElements:
		cond = fmt.Sprintf("!result.%s.isEmpty()", c.Field.Name)
	}
	u.Scope("if ("+cond+") {", "}", body)
}

// Guard implements gen.ControlEmitter.
func (*Backend) Guard(u *gen.Unit, site gen.Site, msg gen.Message, body func(gen.Site)) {
	u.Scope("try {", "", func() { body(site.Nested()) })
	u.Scope("} catch (ParseException e) {", "}", func() {
		u.Line(throw(site, msg))
	})
}

// Attempt implements gen.ControlEmitter.
func (*Backend) Attempt(u *gen.Unit, site gen.Site, body func(gen.Site), onRollback func()) {
	u.Line("long[] mark = s.mark();")
	u.Scope("try {", "", func() { body(site.Nested()) })
	u.Scope("} catch (ParseException e) {", "}", func() {
		u.Line("s.reset(mark);")
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

func throw(site gen.Site, msg gen.Message) string {
	return fmt.Sprintf("throw s.error(%s, %s);", quote(site.Record), message(msg))
}

// message renders msg as a string concatenation.
func message(msg gen.Message) string {
	parts := make([]string, 0, len(msg))
	for _, p := range msg {
		switch p.Kind {
		case gen.PartText:
			parts = append(parts, quote(p.Text))
		case gen.PartExpected:
			parts = append(parts, count(p.Count))
		case gen.PartTokens:
			parts = append(parts, "fields.length")
		case gen.PartIteration:
			parts = append(parts, "i")
		}
	}
	return strings.Join(parts, " + ")
}

// quote returns s as a Java string literal.
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
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
