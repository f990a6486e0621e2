package golang

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/schema/field"
)

// BeginUtil implements gen.UnitEmitter.
func (*Backend) BeginUtil(u *gen.Unit, _ *gen.Schema) {
	u.Line("package main")
	u.Blank()
	u.Scope("import (", ")", func() {
		for _, pkg := range []string{"bufio", "errors", "fmt", "io", "regexp", "strconv", "strings"} {
			u.Linef("%q", pkg)
		}
	})
}

// Helpers implements gen.UnitEmitter.
func (*Backend) Helpers(u *gen.Unit, s *gen.Schema) {
	emit(u, jen.Const().Id("delimiter").Op("=").Lit(s.Delimiter()))
	emit(u, stateHelpers()...)
	emit(u, errorHelpers()...)
	emit(u, cursorHelpers()...)
	emit(u, attemptHelpers()...)
	emit(u, convHelpers()...)
}

// EndUtil implements gen.UnitEmitter.
func (*Backend) EndUtil(*gen.Unit, *gen.Schema) {}

// emit renders each statement as a top-level declaration of u.
func emit(u *gen.Unit, decls ...*jen.Statement) {
	for _, d := range decls {
		u.Blank()
		u.Text(fmt.Sprintf("%#v", d))
	}
}

var state = jen.Id("s").Op("*").Id("parseState")

// ifErr returns an if statement running body when err is set.
func ifErr(body ...jen.Code) *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(body...)
}

func ifErrRet(results ...jen.Code) *jen.Statement { return ifErr(jen.Return(results...)) }

func method(name string) *jen.Statement {
	return jen.Func().Params(state.Clone()).Id(name)
}

func stateHelpers() []*jen.Statement {
	return []*jen.Statement{
		jen.Comment("parseState is the read cursor and the line counter shared by all parse functions.").Line().
			Type().Id("parseState").Struct(
			jen.Id("src").Qual("io", "ReadSeeker"),
			jen.Id("r").Op("*").Qual("bufio", "Reader"),
			jen.Id("pos").Int64(),
			jen.Id("line").Int(),
		),
		jen.Func().Id("newParseState").Params(jen.Id("src").Qual("io", "ReadSeeker")).Op("*").Id("parseState").Block(
			jen.Return(jen.Op("&").Id("parseState").Values(jen.Dict{
				jen.Id("src"):  jen.Id("src"),
				jen.Id("r"):    jen.Qual("bufio", "NewReader").Call(jen.Id("src")),
				jen.Id("line"): jen.Lit(1),
			})),
		),
	}
}

func errorHelpers() []*jen.Statement {
	return []*jen.Statement{
		jen.Comment("parseError is a failure caused by malformed input.").Line().
			Type().Id("parseError").Struct(
			jen.Id("line").Int(),
			jen.Id("record").String(),
			jen.Id("msg").String(),
		),
		jen.Func().Params(jen.Id("e").Op("*").Id("parseError")).Id("Error").Params().String().Block(
			jen.Return(jen.Qual("fmt", "Sprintf").Call(
				jen.Lit("Parser Error on line %d in %q: %s"),
				jen.Id("e").Dot("line"), jen.Id("e").Dot("record"), jen.Id("e").Dot("msg"),
			)),
		),
		method("errorf").Params(
			jen.List(jen.Id("record"), jen.Id("format")).String(),
			jen.Id("args").Op("...").Any(),
		).Error().Block(
			jen.Return(jen.Op("&").Id("parseError").Values(jen.Dict{
				jen.Id("line"):   jen.Id("s").Dot("line"),
				jen.Id("record"): jen.Id("record"),
				jen.Id("msg"):    jen.Qual("fmt", "Sprintf").Call(jen.Id("format"), jen.Id("args").Op("...")),
			})),
		),
		jen.Comment("remap replaces a parse error by a new one. Other errors are returned unchanged.").Line().
			Add(method("remap")).Params(
			jen.Err().Error(),
			jen.List(jen.Id("record"), jen.Id("format")).String(),
			jen.Id("args").Op("...").Any(),
		).Error().Block(
			jen.Var().Id("perr").Op("*").Id("parseError"),
			jen.If(jen.Op("!").Qual("errors", "As").Call(jen.Err(), jen.Op("&").Id("perr"))).Block(
				jen.Return(jen.Err()),
			),
			jen.Return(jen.Id("s").Dot("errorf").Call(jen.Id("record"), jen.Id("format"), jen.Id("args").Op("..."))),
		),
	}
}

func cursorHelpers() []*jen.Statement {
	readString := jen.List(jen.Id("text"), jen.Err()).Op(":=").Id("s").Dot("r").Dot("ReadString").Call(jen.LitRune('\n'))
	advancePos := jen.Id("s").Dot("pos").Op("+=").Int64().Call(jen.Len(jen.Id("text")))
	isEOF := jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual("io", "EOF"))
	blank := jen.Qual("strings", "TrimSpace").Call(jen.Id("text")).Op("==").Lit("")
	return []*jen.Statement{
		method("tell").Params().Params(jen.Int64(), jen.Int()).Block(
			jen.Return(jen.Id("s").Dot("pos"), jen.Id("s").Dot("line")),
		),
		method("seek").Params(jen.Id("pos").Int64(), jen.Id("line").Int()).Error().Block(
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("s").Dot("src").Dot("Seek").Call(jen.Id("pos"), jen.Qual("io", "SeekStart")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Id("s").Dot("r").Dot("Reset").Call(jen.Id("s").Dot("src")),
			jen.List(jen.Id("s").Dot("pos"), jen.Id("s").Dot("line")).Op("=").List(jen.Id("pos"), jen.Id("line")),
			jen.Return(jen.Nil()),
		),
		jen.Comment("readLine reads one line without its line terminator.").Line().
			Add(method("readLine")).Params(jen.Id("record").String()).Params(jen.String(), jen.Error()).Block(
			readString.Clone(),
			advancePos.Clone(),
			jen.If(jen.Err().Op("!=").Nil().Op("&&").Op("!").Add(isEOF.Clone())).Block(
				jen.Return(jen.Lit(""), jen.Err()),
			),
			jen.If(jen.Err().Op("!=").Nil().Op("&&").Id("text").Op("==").Lit("")).Block(
				jen.Return(jen.Lit(""), jen.Id("s").Dot("errorf").Call(jen.Id("record"), jen.Lit("Unexpected end of file."))),
			),
			jen.Return(jen.Qual("strings", "TrimRight").Call(jen.Id("text"), jen.Lit("\r\n")), jen.Nil()),
		),
		jen.Comment("readFields reads one line and splits it on the delimiter.").Line().
			Add(method("readFields")).Params(jen.Id("record").String()).Params(jen.Index().String(), jen.Error()).Block(
			jen.List(jen.Id("text"), jen.Err()).Op(":=").Id("s").Dot("readLine").Call(jen.Id("record")),
			ifErrRet(jen.Nil(), jen.Err()),
			jen.Return(jen.Qual("strings", "Split").Call(jen.Id("text"), jen.Id("delimiter")), jen.Nil()),
		),
		jen.Comment("expectBlank reads one line that must be blank.").Line().
			Add(method("expectBlank")).Params(jen.Id("record").String()).Error().Block(
			jen.List(jen.Id("text"), jen.Err()).Op(":=").Id("s").Dot("readLine").Call(jen.Id("record")),
			ifErrRet(jen.Err()),
			jen.If(jen.Qual("strings", "TrimSpace").Call(jen.Id("text")).Op("!=").Lit("")).Block(
				jen.Return(jen.Id("s").Dot("errorf").Call(jen.Id("record"), jen.Lit("Expecting an empty line (found %q)."), jen.Id("text"))),
			),
			jen.Id("s").Dot("line").Op("++"),
			jen.Return(jen.Nil()),
		),
		jen.Comment("expectEOF fails unless every remaining line is blank.").Line().
			Add(method("expectEOF")).Params(jen.Id("record").String()).Error().Block(
			jen.For().Block(
				readString.Clone(),
				advancePos.Clone(),
				jen.If(jen.Op("!").Parens(blank.Clone())).Block(
					jen.Return(jen.Id("s").Dot("errorf").Call(jen.Id("record"), jen.Lit("Finished parsing but did not reach end of file."))),
				),
				jen.If(isEOF.Clone()).Block(jen.Return(jen.Nil())),
				ifErrRet(jen.Err()),
				jen.Id("s").Dot("line").Op("++"),
			),
		),
	}
}

func attemptHelpers() []*jen.Statement {
	return []*jen.Statement{
		jen.Comment("outcome is the result of a speculative attempt.").Line().
			Type().Id("outcome").Int(),
		jen.Const().Defs(
			jen.Id("matched").Id("outcome").Op("=").Iota(),
			jen.Id("rolledBack"),
			jen.Id("failed"),
		),
		jen.Comment("attempt runs fn. A parse error restores the read position and the").Line().
			Comment("line counter saved before fn ran; other errors are failures.").Line().
			Add(method("attempt")).Params(jen.Id("fn").Func().Params().Error()).Params(jen.Id("outcome"), jen.Error()).Block(
			jen.List(jen.Id("pos"), jen.Id("line")).Op(":=").Id("s").Dot("tell").Call(),
			jen.Err().Op(":=").Id("fn").Call(),
			jen.If(jen.Err().Op("==").Nil()).Block(jen.Return(jen.Id("matched"), jen.Nil())),
			jen.Var().Id("perr").Op("*").Id("parseError"),
			jen.If(jen.Op("!").Qual("errors", "As").Call(jen.Err(), jen.Op("&").Id("perr"))).Block(
				jen.Return(jen.Id("failed"), jen.Err()),
			),
			jen.If(
				jen.Err().Op(":=").Id("s").Dot("seek").Call(jen.Id("pos"), jen.Id("line")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Id("failed"), jen.Err())),
			jen.Return(jen.Id("rolledBack"), jen.Nil()),
		),
	}
}

// convHelpers returns one conversion method per primitive and one per
// primitive list.
func convHelpers() []*jen.Statement {
	trimmed := jen.Qual("strings", "TrimSpace").Call(jen.Id("text"))
	fail := func(zero jen.Code, what string) *jen.Statement {
		return jen.Return(zero, jen.Id("s").Dot("errorf").Call(
			jen.Id("record"), jen.Lit(fmt.Sprintf("Expecting %s (found %%q).", what)), jen.Id("text"),
		))
	}
	params := jen.List(jen.Id("record"), jen.Id("text")).String()
	decls := []*jen.Statement{
		method(convFunc(field.TypeInt)).Params(params.Clone()).Params(jen.Int(), jen.Error()).Block(
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "Atoi").Call(trimmed.Clone()),
			ifErr(fail(jen.Lit(0), "an int")),
			jen.Return(jen.Id("v"), jen.Nil()),
		),
		jen.Comment("floatSyntax is the accepted spelling of a float: decimal digits with an optional").Line().
			Comment("fraction and exponent.").Line().
			Var().Id("floatSyntax").Op("=").Qual("regexp", "MustCompile").Call(jen.Lit(gen.FloatSyntax)),
		method(convFunc(field.TypeFloat)).Params(params.Clone()).Params(jen.Float64(), jen.Error()).Block(
			jen.Id("t").Op(":=").Add(trimmed.Clone()),
			jen.If(jen.Op("!").Id("floatSyntax").Dot("MatchString").Call(jen.Id("t"))).Block(fail(jen.Lit(0), "a float")),
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "ParseFloat").Call(jen.Id("t"), jen.Lit(64)),
			ifErr(fail(jen.Lit(0), "a float")),
			jen.Return(jen.Id("v"), jen.Nil()),
		),
		method(convFunc(field.TypeString)).Params(jen.List(jen.Id("_"), jen.Id("text")).String()).Params(jen.String(), jen.Error()).Block(
			jen.Return(jen.Id("text"), jen.Nil()),
		),
		method(convFunc(field.TypeBool)).Params(params.Clone()).Params(jen.Bool(), jen.Error()).Block(
			jen.Switch(jen.Qual("strings", "ToLower").Call(trimmed.Clone())).Block(
				jen.Case(jen.Lit("true")).Block(jen.Return(jen.True(), jen.Nil())),
				jen.Case(jen.Lit("false")).Block(jen.Return(jen.False(), jen.Nil())),
			),
			fail(jen.False(), "a bool"),
		),
		jen.Comment("parseList converts every token with conv.").Line().
			Func().Id("parseList").Types(jen.Id("T").Any()).Params(
			jen.List(jen.Id("record")).String(),
			jen.Id("tokens").Index().String(),
			jen.Id("conv").Func().Params(jen.String(), jen.String()).Params(jen.Id("T"), jen.Error()),
		).Params(jen.Index().Id("T"), jen.Error()).Block(
			jen.Id("out").Op(":=").Make(jen.Index().Id("T"), jen.Lit(0), jen.Len(jen.Id("tokens"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("tok")).Op(":=").Range().Id("tokens")).Block(
				jen.List(jen.Id("v"), jen.Err()).Op(":=").Id("conv").Call(jen.Id("record"), jen.Id("tok")),
				ifErrRet(jen.Nil(), jen.Err()),
				jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("v")),
			),
			jen.Return(jen.Id("out"), jen.Nil()),
		),
	}
	for _, t := range field.Types() {
		name := convFunc(t)
		decls = append(decls, method(name+"List").Params(
			jen.Id("record").String(),
			jen.Id("tokens").Index().String(),
		).Params(jen.Index().Id(New().PrimitiveType(t)), jen.Error()).Block(
			jen.Return(jen.Id("parseList").Call(jen.Id("record"), jen.Id("tokens"), jen.Id("s").Dot(name))),
		))
	}
	return decls
}
