package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImpGuard/instaparse/compiler/load"
	"github.com/ImpGuard/instaparse/schema/field"
)

// mustSchema builds a schema from a YAML descriptor.
func mustSchema(t *testing.T, doc string) *Schema {
	t.Helper()
	d, err := load.ParseYAML([]byte(doc))
	require.NoError(t, err)
	s, err := NewSchema(d)
	require.NoError(t, err)
	return s
}

func TestNewSchema(t *testing.T) {
	t.Run("builds lines and fields", func(t *testing.T) {
		s := mustSchema(t, `
root: Grid
delimiter: " "
records:
  - name: Grid
    lines:
      - fields: [{name: rows, type: int}, {name: cols, type: int}, {name: tags, type: "list(string)"}]
      - empty: true
      - repeat: {name: cells, type: "list(float)", count: rows, split: true}
      - repeat: {name: notes, type: Note, count: "*"}
  - name: Note
    lines:
      - fields: [{name: text, type: string}]
`)
		assert.Equal(t, " ", s.Delimiter())
		assert.Equal(t, "Grid", s.Root().Name)

		grid, ok := s.Record("Grid")
		require.True(t, ok)
		lines := grid.Lines()
		require.Len(t, lines, 4)

		assert.True(t, lines[0].IsSimple())
		assert.Equal(t, 3, lines[0].NumFields())
		assert.True(t, lines[0].LastIsList())
		assert.Equal(t, field.TypeString, lines[0].Field(2).Kind())

		assert.True(t, lines[1].IsEmpty())
		assert.Zero(t, lines[1].NumFields())

		cells := lines[2]
		assert.True(t, cells.IsRepeating())
		assert.True(t, cells.SplitByNewline())
		assert.Equal(t, RepeatFromField, cells.Repetition().Kind)
		assert.Same(t, lines[0].Field(0), cells.Repetition().Field)
		assert.True(t, cells.Field(0).Repeated)
		assert.True(t, cells.Field(0).Collection())

		notes := lines[3]
		assert.Equal(t, RepeatZeroOrMore, notes.Repetition().Kind)
		assert.True(t, notes.Repetition().Speculative())
		assert.True(t, notes.Field(0).IsRecord())

		names := make([]string, 0)
		for _, f := range grid.Fields() {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"rows", "cols", "tags", "cells", "notes"}, names)
	})

	t.Run("allows recursion and zero counts", func(t *testing.T) {
		s := mustSchema(t, `
root: Node
delimiter: ","
records:
  - name: Node
    lines:
      - fields: [{name: value, type: int}]
      - repeat: {name: children, type: Node, count: "+"}
      - repeat: {name: none, type: int, count: 0}
`)
		node, _ := s.Record("Node")
		assert.Equal(t, RepeatOneOrMore, node.Lines()[1].Repetition().Kind)
		assert.Equal(t, Repetition{Kind: RepeatExact}, node.Lines()[2].Repetition())
	})

	t.Run("nil descriptor", func(t *testing.T) {
		_, err := NewSchema(nil)
		require.True(t, IsSchemaError(err))
	})
}

func TestNewSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		record  string
		field   string
		message string
	}{
		{
			name:    "empty delimiter",
			doc:     `{root: A, records: [{name: A, lines: [{fields: [{name: x, type: int}]}]}]}`,
			message: "delimiter must not be empty",
		},
		{
			name:    "missing root",
			doc:     `{delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: int}]}]}]}`,
			message: "root record is not set",
		},
		{
			name:    "undefined root",
			doc:     `{root: B, delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: int}]}]}]}`,
			record:  "B",
			message: "root record is not defined",
		},
		{
			name:    "duplicate record",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{empty: true}]}, {name: A, lines: [{empty: true}]}]}`,
			record:  "A",
			message: "record declared twice",
		},
		{
			name:    "invalid record name",
			doc:     `{root: A, delimiter: ",", records: [{name: 9a, lines: [{empty: true}]}]}`,
			record:  "9a",
			message: "invalid record name",
		},
		{
			name:    "record without lines",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: []}]}`,
			record:  "A",
			message: "record must have at least one line",
		},
		{
			name:    "line with two kinds",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{empty: true, fields: [{name: x, type: int}]}]}]}`,
			record:  "A",
			message: "line 1 must set exactly one of empty, fields or repeat",
		},
		{
			name:    "line without kind",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{empty: true}, {}]}]}`,
			record:  "A",
			message: "line 2 must set exactly one of empty, fields or repeat",
		},
		{
			name:    "duplicate field",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: int}]}, {fields: [{name: x, type: float}]}]}]}`,
			record:  "A",
			field:   "x",
			message: "field declared twice",
		},
		{
			name:    "invalid field type",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: "list(list(int))"}]}]}]}`,
			record:  "A",
			field:   "x",
			message: "invalid field type",
		},
		{
			name:    "unknown record reference",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: Missing}]}]}]}`,
			record:  "A",
			field:   "x",
			message: `unknown record "Missing"`,
		},
		{
			name:    "record reference shares its line",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: x, type: int}, {name: b, type: A}]}]}]}`,
			record:  "A",
			field:   "b",
			message: "record reference must be the only field of its line",
		},
		{
			name:    "list before last field",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: xs, type: "list(int)"}, {name: y, type: int}]}]}]}`,
			record:  "A",
			field:   "xs",
			message: "list field must be the last field of its line",
		},
		{
			name:    "missing count",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: xs, type: int}}]}]}`,
			record:  "A",
			field:   "xs",
			message: "missing repetition count",
		},
		{
			name:    "negative count",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: xs, type: int, count: -1}}]}]}`,
			record:  "A",
			field:   "xs",
			message: "repetition count -1 is negative",
		},
		{
			name:    "malformed count",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: xs, type: int, count: "1.5"}}]}]}`,
			record:  "A",
			field:   "xs",
			message: `invalid repetition count "1.5"`,
		},
		{
			name:    "count field declared later",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: xs, type: int, count: n}}, {fields: [{name: n, type: int}]}]}]}`,
			record:  "A",
			field:   "xs",
			message: `count "n" must name an int field declared on an earlier line`,
		},
		{
			name:    "count field is not an int",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: n, type: float}]}, {repeat: {name: xs, type: int, count: n}}]}]}`,
			record:  "A",
			field:   "xs",
			message: `count "n" must name an int field declared on an earlier line`,
		},
		{
			name:    "count field is a list",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{fields: [{name: n, type: "list(int)"}]}, {repeat: {name: xs, type: int, count: n}}]}]}`,
			record:  "A",
			field:   "xs",
			message: `count "n" must name an int field declared on an earlier line`,
		},
		{
			name:    "repeated record matches no lines",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: bs, type: B, count: "*"}}, {fields: [{name: tail, type: string}]}]}, {name: B, lines: [{repeat: {name: xs, type: int, count: "*"}}]}]}`,
			record:  "A",
			field:   "bs",
			message: `record "B" can match no lines and cannot be repeated with count "*"`,
		},
		{
			name:    "repeated record matches no lines through a reference",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: bs, type: B, count: "+"}}]}, {name: B, lines: [{fields: [{name: c, type: C}]}]}, {name: C, lines: [{repeat: {name: xs, type: int, count: 0}}]}]}`,
			record:  "A",
			field:   "bs",
			message: `record "B" can match no lines and cannot be repeated with count "+"`,
		},
		{
			name:    "count field is repeated",
			doc:     `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: n, type: int, count: 2}}, {repeat: {name: xs, type: int, count: n}}]}]}`,
			record:  "A",
			field:   "xs",
			message: `count "n" must name an int field declared on an earlier line`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := load.ParseYAML([]byte(tt.doc))
			require.NoError(t, err)
			_, err = NewSchema(d)
			require.ErrorIs(t, err, ErrInvalidSchema)

			var serr *SchemaError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.record, serr.Record)
			assert.Equal(t, tt.field, serr.Field)
			assert.Equal(t, tt.message, serr.Message)
		})
	}
}

func TestNewSchemaSpeculativeProgress(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "element consumes a line",
			doc:  `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: bs, type: B, count: "*"}}]}, {name: B, lines: [{repeat: {name: xs, type: int, count: "*"}}, {empty: true}]}]}`,
		},
		{
			name: "split repetition consumes separators",
			doc:  `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: bs, type: B, count: "*", split: true}}]}, {name: B, lines: [{repeat: {name: xs, type: int, count: "*"}}]}]}`,
		},
		{
			name: "exact split repetition consumes separators",
			doc:  `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: bs, type: B, count: "+"}}]}, {name: B, lines: [{repeat: {name: cs, type: C, count: 2, split: true}}]}, {name: C, lines: [{repeat: {name: xs, type: int, count: "*"}}]}]}`,
		},
		{
			name: "self reference",
			doc:  `{root: A, delimiter: ",", records: [{name: A, lines: [{repeat: {name: as, type: A, count: "*"}}, {fields: [{name: x, type: int}]}]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := load.ParseYAML([]byte(tt.doc))
			require.NoError(t, err)
			_, err = NewSchema(d)
			require.NoError(t, err)
		})
	}
}

func TestSchemaOrder(t *testing.T) {
	s := mustSchema(t, `
root: A
delimiter: ","
records:
  - name: Z
    lines: [{fields: [{name: z, type: int}]}]
  - name: C
    lines: [{fields: [{name: c, type: int}]}]
  - name: B
    lines: [{fields: [{name: a, type: A}]}]
  - name: A
    lines:
      - fields: [{name: b, type: B}]
      - repeat: {name: cs, type: C, count: "*"}
`)
	names := func(rs []*Record) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Name
		}
		return out
	}
	assert.Equal(t, []string{"Z", "C", "B", "A"}, names(s.Records()))
	assert.Equal(t, []string{"A", "B", "C", "Z"}, names(s.Order()))
}

func TestLineFieldPanics(t *testing.T) {
	s := mustSchema(t, `
root: A
delimiter: ","
records:
  - name: A
    lines: [{fields: [{name: x, type: int}]}, {empty: true}]
`)
	a := s.Root()
	assert.NotPanics(t, func() { a.Lines()[0].Field(0) })
	assert.Panics(t, func() { a.Lines()[0].Field(1) })
	assert.Panics(t, func() { a.Lines()[0].Field(-1) })
	assert.Panics(t, func() { a.Lines()[1].Field(0) })
	assert.Panics(t, func() { (&Line{kind: LineSimple}).Field(0) })
}
