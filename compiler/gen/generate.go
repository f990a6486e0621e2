package gen

import (
	"context"
	"fmt"
	"strings"
)

// Generate builds the units of s and writes them to the target
// directory of cfg. Nothing is written if building fails.
func Generate(ctx context.Context, s *Schema, cfg *Config) error {
	units, err := Build(s, cfg)
	if err != nil {
		return err
	}
	return Write(ctx, units, cfg)
}

// Build generates every unit of s in memory: one declaration unit per
// record in declaration order, the utility unit, and the driver unit.
// The result depends only on s and cfg.
func Build(s *Schema, cfg *Config) ([]*Unit, error) {
	if s == nil {
		return nil, NewSchemaError("", "", "missing schema", nil)
	}
	if cfg == nil || cfg.Backend == nil {
		return nil, NewConfigError("Backend", nil, "missing backend in config")
	}
	c := *cfg
	c.fill()
	if ch, ok := c.Backend.(Checker); ok {
		if err := ch.Check(s); err != nil {
			return nil, err
		}
	}
	g := &generator{Backend: c.Backend, cfg: &c, schema: s}
	units := make([]*Unit, 0, len(s.records)+2)
	for _, r := range s.records {
		units = append(units, g.declaration(r))
	}
	units = append(units, g.util(), g.driver())
	paths := make(map[string]bool, len(units))
	for _, u := range units {
		if paths[u.Path] {
			return nil, NewSchemaError("", "", fmt.Sprintf("file %s is generated twice", u.Path), nil)
		}
		paths[u.Path] = true
	}
	c.Logger.Debug("built units", "backend", c.Backend.Name(), "records", len(s.records), "units", len(units))
	return units, nil
}

// generator walks the schema and drives the backend emitters.
type generator struct {
	Backend
	cfg    *Config
	schema *Schema
}

func (g *generator) unit(kind UnitKind, name string) *Unit {
	u := NewUnit(kind, g.FileName(kind, name), g)
	if g.cfg.Header != "" {
		u.Comment(g.cfg.Header)
		u.Blank()
	}
	return u
}

func (g *generator) declaration(r *Record) *Unit {
	u := g.unit(UnitDeclaration, r.Name)
	fields := r.Fields()
	members := make([]Member, len(fields))
	for i, f := range fields {
		members[i] = Member{Field: f, Type: g.typeOf(f)}
	}
	g.Declaration(u, r, members)
	return u
}

func (g *generator) util() *Unit {
	u := g.unit(UnitUtil, "")
	g.BeginUtil(u, g.schema)
	g.Helpers(u, g.schema)
	for _, r := range g.schema.Order() {
		g.cfg.Logger.Debug("generate routine", "record", r.Name)
		g.routine(u, r)
	}
	g.EndUtil(u, g.schema)
	return u
}

func (g *generator) driver() *Unit {
	u := g.unit(UnitDriver, g.cfg.MainName)
	root := g.schema.Root()
	d := Driver{Root: root, RootType: g.RecordType(root.Name)}
	if g.cfg.Hook != "" {
		d.Hook = strings.Split(g.cfg.Hook, "\n")
	}
	g.Driver(u, d)
	return u
}

// elemType returns the native type of one value of f, ignoring the
// repetition of its line.
func (g *generator) elemType(f *Field) string {
	switch {
	case f.IsRecord():
		return g.RecordType(f.Type.Record)
	case f.IsList():
		return g.ListType(g.PrimitiveType(f.Kind()))
	default:
		return g.PrimitiveType(f.Kind())
	}
}

// typeOf returns the native type f is stored in.
func (g *generator) typeOf(f *Field) string {
	if f.Repeated {
		return g.ListType(g.elemType(f))
	}
	return g.elemType(f)
}

// locals returns the locals the routine of r reads lines into.
func locals(r *Record) Locals {
	var ls Locals
	for _, l := range r.lines {
		switch {
		case l.IsEmpty():
		case l.IsSimple() && l.NumFields() > 1:
			ls.Tokens = true
		default:
			switch f := l.Field(0); {
			case f.IsList():
				ls.Tokens = true
			case f.IsPrimitive():
				ls.Text = true
			}
		}
	}
	return ls
}

func (g *generator) routine(u *Unit, r *Record) {
	rt := Routine{Record: r, Type: g.RecordType(r.Name), Locals: locals(r)}
	site := Site{Record: r.Name}
	g.BeginRoutine(u, rt)
	for i, l := range r.lines {
		g.Block(u, label(i, l), func() {
			g.line(u, site, l)
		})
	}
	g.EndRoutine(u, rt)
}

// label describes a line for the block comment of its code.
func label(i int, l *Line) string {
	switch {
	case l.IsEmpty():
		return fmt.Sprintf("Line %d: blank.", i+1)
	case l.IsRepeating():
		f, rep := l.Field(0), l.Repetition()
		switch rep.Kind {
		case RepeatExact:
			return fmt.Sprintf("Line %d: %d x %s.", i+1, rep.N, f.Name)
		case RepeatFromField:
			return fmt.Sprintf("Line %d: %s x %s.", i+1, rep.Field.Name, f.Name)
		default:
			return fmt.Sprintf("Line %d: %s (%s).", i+1, f.Name, rep.Kind)
		}
	default:
		names := make([]string, l.NumFields())
		for j := range names {
			names[j] = l.Field(j).Name
		}
		return fmt.Sprintf("Line %d: %s.", i+1, strings.Join(names, ", "))
	}
}

func (g *generator) line(u *Unit, site Site, l *Line) {
	switch l.kind {
	case LineEmpty:
		g.ExpectBlank(u, site)
	case LineSimple:
		if l.NumFields() == 1 {
			f := l.Field(0)
			g.single(u, site, f, Dest{Field: f})
			return
		}
		g.multi(u, site, l)
	case LineRepeating:
		if l.rep.Speculative() {
			g.speculative(u, site, l)
			return
		}
		g.counted(u, site, l)
	default:
		panic(fmt.Sprintf("gen: unknown line kind %d", l.kind))
	}
}

// single emits the handling of one occurrence of a single-field line.
func (g *generator) single(u *Unit, site Site, f *Field, dst Dest) {
	switch {
	case f.IsRecord():
		g.CallRecord(u, site, dst, f.Type.Record)
	case f.IsList():
		g.ReadTokens(u, site)
		g.Convert(u, site, dst, f.Kind(), Source{Kind: SourceRest})
		g.AdvanceLine(u)
	default:
		g.ReadText(u, site)
		g.Convert(u, site, dst, f.Kind(), Source{Kind: SourceText})
		g.AdvanceLine(u)
	}
}

func (g *generator) multi(u *Unit, site Site, l *Line) {
	n := l.NumFields()
	atLeast := l.LastIsList()
	expect := "Expecting %d fields ("
	if atLeast {
		expect = "Expecting at least %d fields ("
	}
	g.ReadTokens(u, site)
	g.CheckTokens(u, site, n, atLeast, Message{
		Text(fmt.Sprintf(expect, n)), TokenCount(), Text(" found)."),
	})
	for i := 0; i < n; i++ {
		f := l.Field(i)
		src := Source{Kind: SourceToken, Index: i}
		if f.IsList() {
			src.Kind = SourceRest
		}
		g.Convert(u, site, Dest{Field: f}, f.Kind(), src)
	}
	g.AdvanceLine(u)
}

// counted emits a repetition with a count known before the loop starts.
// Every failure inside an iteration is reported against the whole line.
func (g *generator) counted(u *Unit, site Site, l *Line) {
	f := l.Field(0)
	count := Count{N: l.rep.N, Field: l.rep.Field}
	msg := Message{
		Text("Expecting exactly "), Expected(count),
		Text(fmt.Sprintf(" %q when parsing \"%s.%s\" (", f.Type.String(), site.Record, f.Name)),
		Iteration(), Text(" found)."),
	}
	g.InitCollection(u, f, g.typeOf(f))
	g.CountedLoop(u, count, func() {
		g.DeclareElement(u, f, g.elemType(f))
		g.Guard(u, site, msg, func(inner Site) {
			g.single(u, inner, f, Dest{Field: f, Elem: true})
			if l.split {
				g.If(u, Cond{Kind: CondNotLast, Count: count}, func() {
					g.ExpectBlank(u, inner)
				})
			}
		})
		g.AppendElement(u, f)
	})
}

// speculative emits a repetition without a known count. Each occurrence
// is attempted; the first attempt that fails to parse is rolled back
// and ends the loop. The element is appended only after its attempt
// matched.
func (g *generator) speculative(u *Unit, site Site, l *Line) {
	f := l.Field(0)
	g.InitCollection(u, f, g.typeOf(f))
	g.UnboundedLoop(u, func() {
		g.DeclareElement(u, f, g.elemType(f))
		g.Attempt(u, site, func(inner Site) {
			if l.split {
				g.If(u, Cond{Kind: CondHasElements, Field: f}, func() {
					g.ExpectBlank(u, inner)
				})
			}
			g.single(u, inner, f, Dest{Field: f, Elem: true})
		}, func() {
			g.Break(u)
		})
		g.AppendElement(u, f)
	})
	if l.rep.Kind == RepeatOneOrMore {
		g.RequireElements(u, site, f, Message{
			Text(fmt.Sprintf("Expecting at least 1 %q when parsing \"%s.%s\" (0 found).", f.Type.String(), site.Record, f.Name)),
		})
	}
}
