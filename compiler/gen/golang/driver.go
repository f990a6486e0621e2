package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/ImpGuard/instaparse/compiler/gen"
)

// Declaration implements gen.UnitEmitter.
func (*Backend) Declaration(u *gen.Unit, r *gen.Record, members []gen.Member) {
	f := jen.NewFile("main")
	fields := make([]jen.Code, len(members))
	for i, m := range members {
		fields[i] = jen.Id(structField(m.Field.Name)).Id(m.Type)
	}
	name := typeName(r.Name)
	f.Commentf("%s is a parsed %s record.", name, r.Name)
	f.Type().Id(name).Struct(fields...)
	u.Text(fmt.Sprintf("%#v", f))
}

// Driver implements gen.UnitEmitter. The hook lines are written as they
// are and checked only when the unit is formatted.
func (*Backend) Driver(u *gen.Unit, d gen.Driver) {
	u.Line("package main")
	u.Blank()
	u.Scope("import (", ")", func() {
		for _, pkg := range []string{"errors", "fmt", "io/fs", "os"} {
			u.Linef("%q", pkg)
		}
	})
	emit(u, mainFunc(), parseInputFunc(d))
	u.Blank()
	u.Line("// handle is called with the parsed input.")
	u.Scope(fmt.Sprintf("func handle(input %s) {", d.RootType), "}", func() {
		if len(d.Hook) == 0 {
			u.Line("_ = input")
			return
		}
		for _, l := range d.Hook {
			u.Line(l)
		}
	})
}

func mainFunc() *jen.Statement {
	exit := jen.Qual("os", "Exit").Call(jen.Lit(1))
	return jen.Func().Id("main").Params().Block(
		jen.If(jen.Len(jen.Qual("os", "Args")).Op("!=").Lit(2)).Block(
			jen.Qual("fmt", "Fprintf").Call(jen.Qual("os", "Stderr"), jen.Lit("usage: %s FILE\n"), jen.Qual("os", "Args").Index(jen.Lit(0))),
			exit.Clone(),
		),
		jen.List(jen.Id("input"), jen.Err()).Op(":=").Id("parseInput").Call(jen.Qual("os", "Args").Index(jen.Lit(1))),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Qual("fmt", "Fprintln").Call(jen.Qual("os", "Stderr"), jen.Err()),
			exit.Clone(),
		),
		jen.Id("handle").Call(jen.Id("input")),
	)
}

func parseInputFunc(d gen.Driver) *jen.Statement {
	path := jen.Id("path")
	return jen.Comment("parseInput parses the file at path and requires the rest of it to be blank.").Line().
		Func().Id("parseInput").Params(path.Clone().String()).Params(jen.Id("input").Id(d.RootType), jen.Err().Error()).Block(
		jen.Defer().Func().Params().Block(
			jen.If(jen.Id("r").Op(":=").Recover(), jen.Id("r").Op("!=").Nil()).Block(
				jen.List(jen.Id("input"), jen.Err()).Op("=").List(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("Unknown error occurred: %v"), jen.Id("r"))),
			),
		).Call(),
		jen.List(jen.Id("f"), jen.Err()).Op(":=").Qual("os", "Open").Call(path.Clone()),
		jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual("io/fs", "ErrNotExist"))).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("Input file '%s' not found."), path.Clone())),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("Could not open %q."), path.Clone())),
		),
		jen.Defer().Id("f").Dot("Close").Call(),
		jen.Id("s").Op(":=").Id("newParseState").Call(jen.Id("f")),
		jen.If(
			jen.List(jen.Id("input"), jen.Err()).Op("=").Id(parseFunc(d.Root.Name)).Call(jen.Id("s")),
			jen.Err().Op("==").Nil(),
		).Block(
			jen.Err().Op("=").Id("s").Dot("expectEOF").Call(jen.Lit(d.Root.Name)),
		),
		jen.Var().Id("perr").Op("*").Id("parseError"),
		jen.If(jen.Err().Op("!=").Nil().Op("&&").Op("!").Qual("errors", "As").Call(jen.Err(), jen.Op("&").Id("perr"))).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("Could not read %q: %v"), path.Clone(), jen.Err())),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("input"), jen.Nil()),
	)
}
