package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// routine collects the statements of the parse function being emitted.
// Each level of the stack is an open block.
type routine struct {
	info  gen.Routine
	stack [][]jen.Code
}

func (r *routine) add(c ...jen.Code) {
	top := len(r.stack) - 1
	r.stack[top] = append(r.stack[top], c...)
}

// nest runs body and returns the statements it added.
func (r *routine) nest(body func()) []jen.Code {
	r.stack = append(r.stack, nil)
	body()
	top := len(r.stack) - 1
	block := r.stack[top]
	r.stack = r.stack[:top]
	return block
}

// routine returns the parse function open in u.
func (b *Backend) routine(u *gen.Unit) *routine {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.routines[u]
	if !ok {
		panic(fmt.Sprintf("golang: no routine open in %s", u.Path))
	}
	return r
}

// BeginRoutine implements gen.RoutineEmitter.
func (b *Backend) BeginRoutine(u *gen.Unit, r gen.Routine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.routines == nil {
		b.routines = make(map[*gen.Unit]*routine)
	}
	b.routines[u] = &routine{info: r, stack: [][]jen.Code{nil}}
}

// EndRoutine implements gen.RoutineEmitter. It renders the collected
// statements as one function declaration.
func (b *Backend) EndRoutine(u *gen.Unit, _ gen.Routine) {
	r := b.routine(u)
	b.mu.Lock()
	delete(b.routines, u)
	b.mu.Unlock()

	name := r.info.Record.Name
	vars := []jen.Code{jen.Id("result").Op("=").Op("&").Id(typeName(name)).Values()}
	if r.info.Locals.Text {
		vars = append(vars, jen.Id("text").String())
	}
	if r.info.Locals.Tokens {
		vars = append(vars, jen.Id("fields").Index().String())
	}
	vars = append(vars, jen.Err().Error())
	body := append([]jen.Code{jen.Var().Defs(vars...)}, r.stack[0]...)
	body = append(body, jen.Return(jen.Id("result"), jen.Nil()))
	emit(u, jen.Commentf("%s parses a %s record.", parseFunc(name), name).Line().
		Func().Id(parseFunc(name)).Params(state.Clone()).Params(jen.Id(r.info.Type), jen.Error()).Block(body...))
}

// ExpectBlank implements gen.RoutineEmitter.
func (b *Backend) ExpectBlank(u *gen.Unit, site gen.Site) {
	b.routine(u).add(check(site, jen.Err().Op("=").Add(call("expectBlank", site))))
}

// ReadText implements gen.RoutineEmitter.
func (b *Backend) ReadText(u *gen.Unit, site gen.Site) {
	b.routine(u).add(check(site, jen.List(jen.Id("text"), jen.Err()).Op("=").Add(call("readLine", site))))
}

// ReadTokens implements gen.RoutineEmitter.
func (b *Backend) ReadTokens(u *gen.Unit, site gen.Site) {
	b.routine(u).add(check(site, jen.List(jen.Id("fields"), jen.Err()).Op("=").Add(call("readFields", site))))
}

// CheckTokens implements gen.RoutineEmitter.
func (b *Backend) CheckTokens(u *gen.Unit, site gen.Site, n int, atLeast bool, msg gen.Message) {
	op := "!="
	if atLeast {
		op = "<"
	}
	b.routine(u).add(jen.If(jen.Len(jen.Id("fields")).Op(op).Lit(n)).Block(
		ret(site, call("errorf", site, message(msg)...)),
	))
}

// Convert implements gen.RoutineEmitter.
func (b *Backend) Convert(u *gen.Unit, site gen.Site, dst gen.Dest, kind field.Type, src gen.Source) {
	conv := convFunc(kind)
	var arg jen.Code
	switch src.Kind {
	case gen.SourceText:
		arg = jen.Id("text")
	case gen.SourceToken:
		arg = jen.Id("fields").Index(jen.Lit(src.Index))
	case gen.SourceRest:
		conv += "List"
		arg = jen.Id("fields")
		if src.Index > 0 {
			arg = jen.Id("fields").Index(jen.Lit(src.Index), jen.Empty())
		}
	}
	b.routine(u).add(check(site, jen.List(dest(dst), jen.Err()).Op("=").Add(call(conv, site, arg))))
}

// CallRecord implements gen.RoutineEmitter.
func (b *Backend) CallRecord(u *gen.Unit, site gen.Site, dst gen.Dest, record string) {
	b.routine(u).add(check(site, jen.List(dest(dst), jen.Err()).Op("=").Id(parseFunc(record)).Call(jen.Id("s"))))
}

// AdvanceLine implements gen.RoutineEmitter.
func (b *Backend) AdvanceLine(u *gen.Unit) {
	b.routine(u).add(jen.Id("s").Dot("line").Op("++"))
}

// InitCollection implements gen.RoutineEmitter.
func (b *Backend) InitCollection(u *gen.Unit, f *gen.Field, typ string) {
	b.routine(u).add(jen.Id("result").Dot(structField(f.Name)).Op("=").Id(typ).Values())
}

// DeclareElement implements gen.RoutineEmitter.
func (b *Backend) DeclareElement(u *gen.Unit, _ *gen.Field, typ string) {
	b.routine(u).add(jen.Var().Id("elem").Id(typ))
}

// AppendElement implements gen.RoutineEmitter.
func (b *Backend) AppendElement(u *gen.Unit, f *gen.Field) {
	list := jen.Id("result").Dot(structField(f.Name))
	b.routine(u).add(list.Clone().Op("=").Append(list, jen.Id("elem")))
}

// RequireElements implements gen.RoutineEmitter.
func (b *Backend) RequireElements(u *gen.Unit, site gen.Site, f *gen.Field, msg gen.Message) {
	b.routine(u).add(jen.If(jen.Len(jen.Id("result").Dot(structField(f.Name))).Op("==").Lit(0)).Block(
		ret(site, call("errorf", site, message(msg)...)),
	))
}

// Block implements gen.ControlEmitter. Go blocks are not scoped; the
// label is written as a comment.
func (b *Backend) Block(u *gen.Unit, label string, body func()) {
	b.routine(u).add(jen.Comment(label))
	body()
}

// CountedLoop implements gen.ControlEmitter.
func (b *Backend) CountedLoop(u *gen.Unit, n gen.Count, body func()) {
	r := b.routine(u)
	i := jen.Id("i")
	r.add(jen.For(i.Clone().Op(":=").Lit(0), i.Clone().Op("<").Add(count(n)), i.Clone().Op("++")).Block(r.nest(body)...))
}

// UnboundedLoop implements gen.ControlEmitter.
func (b *Backend) UnboundedLoop(u *gen.Unit, body func()) {
	r := b.routine(u)
	r.add(jen.For().Block(r.nest(body)...))
}

// Break implements gen.ControlEmitter.
func (b *Backend) Break(u *gen.Unit) { b.routine(u).add(jen.Break()) }

// If implements gen.ControlEmitter.
func (b *Backend) If(u *gen.Unit, c gen.Cond, body func()) {
	var cond *jen.Statement
	switch c.Kind {
	case gen.CondNotLast:
		cond = jen.Id("i").Op("<").Add(count(c.Count)).Op("-").Lit(1)
	case gen.CondHasElements:
		cond = jen.Len(jen.Id("result").Dot(structField(c.Field.Name))).Op(">").Lit(0)
	}
	r := b.routine(u)
	r.add(jen.If(cond).Block(r.nest(body)...))
}

// Guard implements gen.ControlEmitter. The body runs in a closure whose
// parse errors are replaced by msg.
func (b *Backend) Guard(u *gen.Unit, site gen.Site, msg gen.Message, body func(gen.Site)) {
	r := b.routine(u)
	inner := r.nest(func() { body(site.Nested()) })
	closure := jen.Func().Params().Error().Block(append(inner, jen.Return(jen.Nil()))...).Call()
	args := append([]jen.Code{jen.Err(), jen.Lit(site.Record)}, message(msg)...)
	r.add(jen.If(jen.Err().Op("=").Add(closure), jen.Err().Op("!=").Nil()).Block(
		ret(site, jen.Id("s").Dot("remap").Call(args...)),
	))
}

// Attempt implements gen.ControlEmitter. The body runs in a closure
// passed to parseState.attempt, which rolls back parse errors.
func (b *Backend) Attempt(u *gen.Unit, site gen.Site, body func(gen.Site), onRollback func()) {
	r := b.routine(u)
	inner := r.nest(func() { body(site.Nested()) })
	r.add(
		jen.List(jen.Id("status"), jen.Id("failure")).Op(":=").Id("s").Dot("attempt").Call(
			jen.Func().Params().Error().Block(append(inner, jen.Return(jen.Nil()))...),
		),
		jen.If(jen.Id("status").Op("==").Id("failed")).Block(ret(site, jen.Id("failure"))),
		jen.If(jen.Id("status").Op("==").Id("rolledBack")).Block(r.nest(onRollback)...),
	)
}

// check returns an if statement running assign and returning its error.
func check(site gen.Site, assign *jen.Statement) *jen.Statement {
	return jen.If(assign, jen.Err().Op("!=").Nil()).Block(ret(site, jen.Err()))
}

// ret returns a statement returning err. Inside closures only the
// error is returned.
func ret(site gen.Site, err jen.Code) *jen.Statement {
	if site.Depth > 0 {
		return jen.Return(err)
	}
	return jen.Return(jen.Nil(), err)
}

// call returns a call of the parseState method name with the record of
// site as the first argument.
func call(name string, site gen.Site, args ...jen.Code) *jen.Statement {
	return jen.Id("s").Dot(name).Call(append([]jen.Code{jen.Lit(site.Record)}, args...)...)
}

func dest(d gen.Dest) *jen.Statement {
	if d.Elem {
		return jen.Id("elem")
	}
	return jen.Id("result").Dot(structField(d.Field.Name))
}

func count(c gen.Count) *jen.Statement {
	if c.Field != nil {
		return jen.Id("result").Dot(structField(c.Field.Name))
	}
	return jen.Lit(c.N)
}

// convFunc returns the parseState method converting one value of t.
func convFunc(t field.Type) string { return "parse" + inflect.Camelize(t.String()) }

// message returns msg as a format string followed by its arguments.
func message(msg gen.Message) []jen.Code {
	var args []jen.Code
	format := msg.Render(func(s string) string {
		return strings.ReplaceAll(s, "%", "%%")
	}, func(p gen.Part) string {
		switch p.Kind {
		case gen.PartExpected:
			args = append(args, count(p.Count))
		case gen.PartTokens:
			args = append(args, jen.Len(jen.Id("fields")))
		case gen.PartIteration:
			args = append(args, jen.Id("i"))
		}
		return "%d"
	})
	return append([]jen.Code{jen.Lit(format)}, args...)
}
