package gen

import (
	"fmt"
	"strconv"

	"github.com/ImpGuard/instaparse/compiler/load"
	"github.com/ImpGuard/instaparse/schema/field"
)

type (
	// Schema is the validated, immutable description of one format.
	Schema struct {
		root      string
		delimiter string
		records   []*Record
		index     map[string]*Record
	}

	// Record is one record type: an ordered sequence of lines.
	Record struct {
		// Name of the record as written in the descriptor.
		Name  string
		lines []*Line
	}

	// Line maps to one physical input line, or to one repeated block of lines.
	Line struct {
		kind   LineKind
		fields []*Field
		rep    Repetition
		split  bool
	}

	// Field is a named, typed value of a record.
	Field struct {
		Name string
		Type *field.TypeInfo
		// Repeated is set for the field of a repeating line.
		Repeated bool
	}

	// Repetition describes how many times a repeating line occurs.
	Repetition struct {
		Kind RepetitionKind
		// N is the count of an exact repetition.
		N int
		// Field is the count field of a repetition sized by an earlier field.
		Field *Field
	}
)

// LineKind distinguishes the three kinds of lines.
type LineKind uint8

// Line kinds.
const (
	LineEmpty LineKind = iota + 1
	LineSimple
	LineRepeating
)

// RepetitionKind is the policy of a repeating line.
type RepetitionKind uint8

// Repetition kinds.
const (
	RepeatNone RepetitionKind = iota
	RepeatExact
	RepeatFromField
	RepeatZeroOrMore
	RepeatOneOrMore
)

// String implements fmt.Stringer.
func (k RepetitionKind) String() string {
	switch k {
	case RepeatExact:
		return "exact"
	case RepeatFromField:
		return "from-field"
	case RepeatZeroOrMore:
		return "zero-or-more"
	case RepeatOneOrMore:
		return "one-or-more"
	default:
		return "none"
	}
}

// count returns the descriptor spelling of a speculative count.
func (k RepetitionKind) count() string {
	if k == RepeatOneOrMore {
		return string(load.OneOrMore)
	}
	return string(load.ZeroOrMore)
}

// Speculative reports if the repetition has no known count and must be
// parsed by attempting each occurrence.
func (r Repetition) Speculative() bool {
	return r.Kind == RepeatZeroOrMore || r.Kind == RepeatOneOrMore
}

// Root returns the root record.
func (s *Schema) Root() *Record { return s.index[s.root] }

// Delimiter returns the token separator.
func (s *Schema) Delimiter() string { return s.delimiter }

// Records returns all records in declaration order.
func (s *Schema) Records() []*Record {
	return append([]*Record(nil), s.records...)
}

// Record returns the record with the given name.
func (s *Schema) Record(name string) (*Record, bool) {
	r, ok := s.index[name]
	return r, ok
}

// Order returns the records in first-reference order: a depth-first
// preorder walk from the root following record references in line
// order, followed by unreachable records in declaration order.
func (s *Schema) Order() []*Record {
	var (
		order   = make([]*Record, 0, len(s.records))
		visited = make(map[string]bool, len(s.records))
		walk    func(*Record)
	)
	walk = func(r *Record) {
		if visited[r.Name] {
			return
		}
		visited[r.Name] = true
		order = append(order, r)
		for _, f := range r.Fields() {
			if f.IsRecord() {
				walk(s.index[f.Type.Record])
			}
		}
	}
	walk(s.Root())
	for _, r := range s.records {
		walk(r)
	}
	return order
}

// Lines returns the lines of the record.
func (r *Record) Lines() []*Line { return r.lines }

// Fields returns every field of the record in line order.
func (r *Record) Fields() []*Field {
	var fields []*Field
	for _, l := range r.lines {
		fields = append(fields, l.fields...)
	}
	return fields
}

// Kind returns the line kind.
func (l *Line) Kind() LineKind { return l.kind }

// IsEmpty reports if the line expects a blank physical line.
func (l *Line) IsEmpty() bool { return l.kind == LineEmpty }

// IsSimple reports if the line is one physical line of fields.
func (l *Line) IsSimple() bool { return l.kind == LineSimple }

// IsRepeating reports if the line is a repeated block.
func (l *Line) IsRepeating() bool { return l.kind == LineRepeating }

// Repetition returns the repetition policy of a repeating line.
func (l *Line) Repetition() Repetition { return l.rep }

// SplitByNewline reports if repetitions are separated by blank lines.
func (l *Line) SplitByNewline() bool { return l.split }

// NumFields returns the number of fields of the line.
func (l *Line) NumFields() int { return len(l.fields) }

// Field returns the i-th field of the line. It panics if i is out of range
// or if a non-empty line has no fields.
func (l *Line) Field(i int) *Field {
	if l.kind != LineEmpty && len(l.fields) == 0 {
		panic("gen: line without fields")
	}
	if i < 0 || i >= len(l.fields) {
		panic(fmt.Sprintf("gen: field index %d out of range [0, %d)", i, len(l.fields)))
	}
	return l.fields[i]
}

// LastIsList reports if the last field consumes the remaining tokens.
func (l *Line) LastIsList() bool {
	return len(l.fields) > 0 && l.fields[len(l.fields)-1].IsList()
}

// IsPrimitive reports if the field holds a single primitive value.
func (f *Field) IsPrimitive() bool { return f.Type.IsPrimitive() }

// IsList reports if the field holds a list of primitive values.
func (f *Field) IsList() bool { return f.Type.IsList() }

// IsRecord reports if the field references another record.
func (f *Field) IsRecord() bool { return f.Type.IsRecord() }

// Kind returns the primitive type of the field, or its list elements.
func (f *Field) Kind() field.Type { return f.Type.Type }

// Collection reports if the field is stored as a collection.
func (f *Field) Collection() bool { return f.Repeated || f.IsList() }

// NewSchema validates the descriptor and builds the schema from it.
// All validation errors are reported as *SchemaError.
func NewSchema(d *load.Schema) (*Schema, error) {
	if d == nil {
		return nil, NewSchemaError("", "", "missing descriptor", nil)
	}
	if d.Delimiter == "" {
		return nil, NewSchemaError("", "", "delimiter must not be empty", nil)
	}
	if d.Root == "" {
		return nil, NewSchemaError("", "", "root record is not set", nil)
	}
	s := &Schema{
		root:      d.Root,
		delimiter: d.Delimiter,
		index:     make(map[string]*Record, len(d.Records)),
	}
	for _, dr := range d.Records {
		if dr == nil {
			return nil, NewSchemaError("", "", "missing record", nil)
		}
		if !field.ValidName(dr.Name) {
			return nil, NewSchemaError(dr.Name, "", "invalid record name", nil)
		}
		if _, ok := s.index[dr.Name]; ok {
			return nil, NewSchemaError(dr.Name, "", "record declared twice", nil)
		}
		r, err := newRecord(dr)
		if err != nil {
			return nil, err
		}
		s.records = append(s.records, r)
		s.index[r.Name] = r
	}
	for _, r := range s.records {
		for _, f := range r.Fields() {
			if f.IsRecord() {
				if _, ok := s.index[f.Type.Record]; !ok {
					return nil, NewSchemaError(r.Name, f.Name, fmt.Sprintf("unknown record %q", f.Type.Record), nil)
				}
			}
		}
	}
	if _, ok := s.index[s.root]; !ok {
		return nil, NewSchemaError(s.root, "", "root record is not defined", nil)
	}
	nullable := s.nullable()
	for _, r := range s.records {
		for _, l := range r.lines {
			if !l.IsRepeating() || !l.rep.Speculative() || l.split {
				continue
			}
			if f := l.fields[0]; f.IsRecord() && nullable[f.Type.Record] {
				return nil, NewSchemaError(r.Name, f.Name, fmt.Sprintf("record %q can match no lines and cannot be repeated with count %q", f.Type.Record, l.rep.Kind.count()), nil)
			}
		}
	}
	return s, nil
}

// nullable returns the records that can be parsed without consuming a
// line. A speculative loop over such a record would never advance.
func (s *Schema) nullable() map[string]bool {
	nullable := make(map[string]bool, len(s.records))
	elem := func(f *Field) bool {
		return f.IsRecord() && nullable[f.Type.Record]
	}
	line := func(l *Line) bool {
		switch l.kind {
		case LineSimple:
			return len(l.fields) == 1 && elem(l.fields[0])
		case LineRepeating:
			switch l.rep.Kind {
			case RepeatZeroOrMore, RepeatFromField:
				return true
			case RepeatExact:
				return l.rep.N == 0 || (l.rep.N == 1 || !l.split) && elem(l.fields[0])
			default:
				return elem(l.fields[0])
			}
		default:
			return false
		}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range s.records {
			if nullable[r.Name] {
				continue
			}
			all := true
			for _, l := range r.lines {
				if !line(l) {
					all = false
					break
				}
			}
			if all {
				nullable[r.Name] = true
				changed = true
			}
		}
	}
	return nullable
}

func newRecord(dr *load.Record) (*Record, error) {
	if len(dr.Lines) == 0 {
		return nil, NewSchemaError(dr.Name, "", "record must have at least one line", nil)
	}
	r := &Record{Name: dr.Name}
	seen := make(map[string]*Field)
	add := func(name, typ string, repeated bool) (*Field, error) {
		if !field.ValidName(name) {
			return nil, NewSchemaError(r.Name, name, "invalid field name", nil)
		}
		if _, ok := seen[name]; ok {
			return nil, NewSchemaError(r.Name, name, "field declared twice", nil)
		}
		ti, err := field.ParseType(typ)
		if err != nil {
			return nil, NewSchemaError(r.Name, name, "invalid field type", err)
		}
		f := &Field{Name: name, Type: ti, Repeated: repeated}
		seen[name] = f
		return f, nil
	}
	for i, dl := range dr.Lines {
		if dl == nil {
			return nil, NewSchemaError(r.Name, "", fmt.Sprintf("line %d is missing", i+1), nil)
		}
		n := 0
		if dl.Empty {
			n++
		}
		if len(dl.Fields) > 0 {
			n++
		}
		if dl.Repeat != nil {
			n++
		}
		if n != 1 {
			return nil, NewSchemaError(r.Name, "", fmt.Sprintf("line %d must set exactly one of empty, fields or repeat", i+1), nil)
		}
		l := &Line{}
		switch {
		case dl.Empty:
			l.kind = LineEmpty
		case dl.Repeat != nil:
			l.kind = LineRepeating
			l.split = dl.Repeat.Split
			rep, err := repetition(r.Name, dl.Repeat, seen)
			if err != nil {
				return nil, err
			}
			f, err := add(dl.Repeat.Name, dl.Repeat.Type, true)
			if err != nil {
				return nil, err
			}
			l.rep = rep
			l.fields = []*Field{f}
		default:
			l.kind = LineSimple
			for j, df := range dl.Fields {
				f, err := add(df.Name, df.Type, false)
				if err != nil {
					return nil, err
				}
				if len(dl.Fields) > 1 {
					switch {
					case f.IsRecord():
						return nil, NewSchemaError(r.Name, f.Name, "record reference must be the only field of its line", nil)
					case f.IsList() && j < len(dl.Fields)-1:
						return nil, NewSchemaError(r.Name, f.Name, "list field must be the last field of its line", nil)
					}
				}
				l.fields = append(l.fields, f)
			}
		}
		r.lines = append(r.lines, l)
	}
	return r, nil
}

// repetition parses the count of a repeating line. Fields referenced by
// the count must already be in seen, i.e. declared on an earlier line.
func repetition(record string, dr *load.Repeat, seen map[string]*Field) (Repetition, error) {
	switch c := string(dr.Count); {
	case c == "":
		return Repetition{}, NewSchemaError(record, dr.Name, "missing repetition count", nil)
	case dr.Count == load.ZeroOrMore:
		return Repetition{Kind: RepeatZeroOrMore}, nil
	case dr.Count == load.OneOrMore:
		return Repetition{Kind: RepeatOneOrMore}, nil
	case field.ValidName(c):
		f, ok := seen[c]
		if !ok || f.Repeated || !f.IsPrimitive() || f.Kind() != field.TypeInt {
			return Repetition{}, NewSchemaError(record, dr.Name, fmt.Sprintf("count %q must name an int field declared on an earlier line", c), nil)
		}
		return Repetition{Kind: RepeatFromField, Field: f}, nil
	default:
		n, err := strconv.Atoi(c)
		if err != nil {
			return Repetition{}, NewSchemaError(record, dr.Name, fmt.Sprintf("invalid repetition count %q", c), nil)
		}
		if n < 0 {
			return Repetition{}, NewSchemaError(record, dr.Name, fmt.Sprintf("repetition count %d is negative", n), nil)
		}
		return Repetition{Kind: RepeatExact, N: n}, nil
	}
}
