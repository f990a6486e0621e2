package gen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit(t *testing.T) {
	t.Run("indents scopes", func(t *testing.T) {
		u := NewUnit(UnitUtil, "util.trace", traceBackend{})
		u.Comment("header\nsecond")
		u.Blank()
		u.Scope("outer {", "}", func() {
			u.Linef("x = %d", 1)
			u.Scope("inner:", "", func() {
				u.Text("a\n\nb\n")
			})
		})
		assert.Equal(t, "# header\n# second\n\nouter {\n  x = 1\n  inner:\n    a\n\n    b\n}\n", string(u.Bytes()))
	})

	t.Run("empty comment lines carry no trailing space", func(t *testing.T) {
		u := NewUnit(UnitUtil, "util.trace", traceBackend{})
		u.Comment("a\n\nb")
		assert.Equal(t, "# a\n#\n# b\n", string(u.Bytes()))
	})

	t.Run("unbalanced dedent panics", func(t *testing.T) {
		u := NewUnit(UnitUtil, "util.trace", traceBackend{})
		assert.Panics(t, u.Dedent)
	})

	t.Run("flushes once", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested")
		u := NewUnit(UnitDeclaration, "point.trace", traceBackend{})
		u.Line("record Point")

		require.NoError(t, u.Flush(dir))
		data, err := os.ReadFile(filepath.Join(dir, "point.trace"))
		require.NoError(t, err)
		assert.Equal(t, "record Point\n", string(data))

		err = u.Flush(dir)
		require.ErrorIs(t, err, ErrGenerationFailed)
		assert.Error(t, u.Format(func(_ string, src []byte) ([]byte, error) { return src, nil }))
	})

	t.Run("format replaces content", func(t *testing.T) {
		u := NewUnit(UnitDeclaration, "point.trace", traceBackend{})
		u.Line("x")
		require.NoError(t, u.Format(func(path string, src []byte) ([]byte, error) {
			assert.Equal(t, "point.trace", path)
			return append([]byte("formatted "), src...), nil
		}))
		assert.Equal(t, "formatted x\n", string(u.Bytes()))

		cause := errors.New("syntax error")
		err := u.Format(func(string, []byte) ([]byte, error) { return nil, cause })
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "formatted x\n", string(u.Bytes()))
	})

	t.Run("kind names", func(t *testing.T) {
		assert.Equal(t, "declaration", UnitDeclaration.String())
		assert.Equal(t, "util", UnitUtil.String())
		assert.Equal(t, "driver", UnitDriver.String())
	})
}
