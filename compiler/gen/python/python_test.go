package python

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/compiler/load"
)

const gridSchema = `
root: Grid
delimiter: " "
records:
  - name: Grid
    lines:
      - fields: [{name: num_rows, type: int}, {name: title, type: string}]
      - repeat: {name: rows, type: GridRow, count: num_rows, split: true}
      - empty: true
      - repeat: {name: notes, type: "list(float)", count: "+"}
  - name: GridRow
    lines:
      - fields: [{name: cells, type: "list(bool)"}]
      - repeat: {name: tags, type: string, count: 2}
`

const docSchema = `
root: Doc
delimiter: ","
records:
  - name: Doc
    lines:
      - fields: [{name: x, type: int}, {name: y, type: int}]
      - repeat: {name: nums, type: int, count: "*"}
      - fields: [{name: end, type: string}]
`

func mustSchema(t *testing.T, doc string) *gen.Schema {
	t.Helper()
	d, err := load.ParseYAML([]byte(doc))
	require.NoError(t, err)
	s, err := gen.NewSchema(d)
	require.NoError(t, err)
	return s
}

func build(t *testing.T, doc string, opts ...gen.Option) map[string]string {
	t.Helper()
	cfg, err := gen.NewConfig(append([]gen.Option{gen.WithBackend(New())}, opts...)...)
	require.NoError(t, err)
	units, err := gen.Build(mustSchema(t, doc), cfg)
	require.NoError(t, err)
	files := make(map[string]string, len(units))
	for _, u := range units {
		files[u.Path] = string(u.Bytes())
	}
	return files
}

func TestBuild(t *testing.T) {
	files := build(t, gridSchema)
	require.Len(t, files, 4)
	for _, name := range []string{"grid.py", "grid_row.py", "parser_util.py", "main.py"} {
		require.Contains(t, files, name)
		assert.True(t, strings.HasPrefix(files[name], "# Code generated by instaparse. DO NOT EDIT.\n"))
		assert.NotContains(t, files[name], "\t")
	}

	t.Run("declarations", func(t *testing.T) {
		assert.Contains(t, files["grid.py"], "class Grid:\n")
		assert.Contains(t, files["grid.py"], "        self.num_rows = None  # int\n")
		assert.Contains(t, files["grid.py"], "        self.rows = None  # list[GridRow]\n")
		assert.Contains(t, files["grid.py"], "        self.notes = None  # list[list[float]]\n")
	})

	t.Run("routines", func(t *testing.T) {
		src := files["parser_util.py"]
		assert.Contains(t, src, "import re\n\nfrom grid import Grid\nfrom grid_row import GridRow\n")
		assert.Contains(t, src, "    if not FLOAT_SYNTAX.match(value):\n")
		assert.Contains(t, src, `DELIMITER = " "`)
		assert.Contains(t, src, "def parse_grid(state):\n    result = Grid()\n    # Line 1: num_rows, title.\n")
		assert.Contains(t, src, "def parse_grid_row(state):")
		assert.Contains(t, src, "def parse_float_list(state, record, tokens):")
		assert.Contains(t, src, "    for i in range(result.num_rows):\n")
		assert.Contains(t, src, "            if i < result.num_rows - 1:\n")
		assert.Contains(t, src, `raise state.error("Grid", "Expecting exactly " + str(result.num_rows) + " \"GridRow\" when parsing \"Grid.rows\" (" + str(i) + " found).")`)
		assert.Contains(t, src, "        except ParseError:\n            state.reset(mark)\n            break\n        result.notes.append(elem)\n")
		assert.Contains(t, src, `elem = parse_float_list(state, "Grid", fields[0:])`)
		assert.Contains(t, src, "    if len(result.notes) == 0:\n")
	})

	t.Run("driver", func(t *testing.T) {
		src := files["main.py"]
		assert.Contains(t, src, "from parser_util import ParseError, ParseState, parse_grid\n")
		assert.Contains(t, src, "            result = parse_grid(state)\n")
		assert.Contains(t, src, `            state.expect_eof("Grid")`)
		assert.Contains(t, src, "def handle(input):\n    \"\"\"Called with the parsed input.\"\"\"\n    pass\n")
	})
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "keyword record",
			doc:     "root: None\ndelimiter: \",\"\nrecords:\n  - name: None\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: "reserved in Python",
		},
		{
			name:    "utility module",
			doc:     "root: ParserUtil\ndelimiter: \",\"\nrecords:\n  - name: ParserUtil\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: "parser_util is reserved",
		},
		{
			name:    "module collision",
			doc:     "root: my_item\ndelimiter: \",\"\nrecords:\n  - name: my_item\n    lines: [{fields: [{name: a, type: int}]}]\n  - name: MyItem\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: "as Python module my_item",
		},
		{
			name:    "builtin record",
			doc:     "root: len\ndelimiter: \",\"\nrecords:\n  - name: len\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: `record name "len" is reserved in Python`,
		},
		{
			name:    "parse function local",
			doc:     "root: result\ndelimiter: \",\"\nrecords:\n  - name: result\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: `record name "result" is reserved in Python`,
		},
		{
			name:    "parse function prefix",
			doc:     "root: parse_item\ndelimiter: \",\"\nrecords:\n  - name: parse_item\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: `record name "parse_item" is reserved in Python`,
		},
		{
			name:    "stdlib module",
			doc:     "root: Sys\ndelimiter: \",\"\nrecords:\n  - name: Sys\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: "Python module name sys is reserved",
		},
		{
			name:    "conversion function",
			doc:     "root: IntList\ndelimiter: \",\"\nrecords:\n  - name: IntList\n    lines: [{fields: [{name: a, type: int}]}]\n",
			wantErr: "Python module name int_list is reserved",
		},
		{
			name:    "keyword field",
			doc:     "root: Item\ndelimiter: \",\"\nrecords:\n  - name: Item\n    lines: [{fields: [{name: lambda, type: int}]}]\n",
			wantErr: "is a Python keyword",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Check(mustSchema(t, tt.doc))
			require.Error(t, err)
			assert.True(t, gen.IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDriverModuleCollision(t *testing.T) {
	const doc = "root: Main\ndelimiter: \",\"\nrecords:\n  - name: Main\n    lines: [{fields: [{name: a, type: int}]}]\n"
	_, err := gen.Build(mustSchema(t, doc), gen.MustNewConfig(gen.WithBackend(New())))
	require.ErrorIs(t, err, gen.ErrInvalidSchema)
	assert.Contains(t, err.Error(), "main.py is generated twice")

	_, err = gen.Build(mustSchema(t, doc), gen.MustNewConfig(gen.WithBackend(New()), gen.WithMainName("run")))
	require.NoError(t, err)
}

// TestGeneratedProgram runs generated parsers.
func TestGeneratedProgram(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not found")
	}
	generate := func(t *testing.T, doc, hook string) string {
		t.Helper()
		dir := t.TempDir()
		cfg, err := gen.NewConfig(gen.WithBackend(New()), gen.WithTarget(dir), gen.WithHook(hook))
		require.NoError(t, err)
		require.NoError(t, gen.Generate(context.Background(), mustSchema(t, doc), cfg))
		return dir
	}
	run := func(t *testing.T, dir, input string) (string, error) {
		t.Helper()
		path := filepath.Join(dir, "input.txt")
		require.NoError(t, os.WriteFile(path, []byte(input), 0o644))
		cmd := exec.Command(python, "main.py", path)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		return strings.TrimSpace(string(out)), err
	}

	t.Run("zero or more", func(t *testing.T) {
		dir := generate(t, docSchema, "print(input.x, input.y, input.nums, input.end)")
		out, err := run(t, dir, "3,4\n1\n2\nEND\n\n")
		require.NoError(t, err, out)
		assert.Equal(t, "3 4 [1, 2] END", out)

		out, err = run(t, dir, "3,4\nEND")
		require.NoError(t, err, out)
		assert.Equal(t, "3 4 [] END", out)
	})

	t.Run("errors", func(t *testing.T) {
		dir := generate(t, docSchema, "")
		out, err := run(t, dir, "3\nEND\n")
		require.Error(t, err)
		assert.Equal(t, `Parser Error on line 1 in "Doc": Expecting 2 fields (1 found).`, out)

		out, err = run(t, dir, "3,4\nEND\nmore\n")
		require.Error(t, err)
		assert.Equal(t, `Parser Error on line 3 in "Doc": Finished parsing but did not reach end of file.`, out)

		out, err = run(t, dir, "1_000,4\nEND\n")
		require.Error(t, err)
		assert.Equal(t, `Parser Error on line 1 in "Doc": Expecting an int (found "1_000").`, out)

		cmd := exec.Command(python, "main.py", filepath.Join(dir, "missing.txt"))
		cmd.Dir = dir
		b, err := cmd.CombinedOutput()
		require.Error(t, err)
		assert.Contains(t, string(b), "not found.")
	})

	t.Run("grid", func(t *testing.T) {
		dir := generate(t, gridSchema, "print(input.num_rows, input.title, len(input.rows), input.rows[0].cells, input.rows[1].tags, input.notes)")
		out, err := run(t, dir, "2 Title\ntrue false\na\nb\n\nfalse\nc\nd\n\n1.5 2\n3\n")
		require.NoError(t, err, out)
		assert.Equal(t, "2 Title 2 [True, False] ['c', 'd'] [[1.5, 2.0], [3.0]]", out)

		out, err = run(t, dir, "2 Title\ntrue false\na\nb\n\nfalse\nc\nd\n\ninf\n")
		require.Error(t, err)
		assert.Equal(t, `Parser Error on line 10 in "Grid": Expecting at least 1 "list(float)" when parsing "Grid.notes" (0 found).`, out)

		out, err = run(t, dir, "2 Title\ntrue\na\nb\n\nnope\nc\nd\n\n1\n")
		require.Error(t, err)
		assert.Equal(t, `Parser Error on line 6 in "Grid": Expecting exactly 2 "GridRow" when parsing "Grid.rows" (1 found).`, out)
	})
}
