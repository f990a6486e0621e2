package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	t.Run("message names record and field", func(t *testing.T) {
		cause := errors.New(`field: invalid type name "9x"`)
		err := NewSchemaError("Point", "x", "bad type", cause)

		assert.Equal(t, `instaparse: schema error on record Point field x: bad type: field: invalid type name "9x"`, err.Error())
	})

	t.Run("message without record", func(t *testing.T) {
		err := &SchemaError{Message: "delimiter must not be empty"}
		assert.Equal(t, "instaparse: schema error: delimiter must not be empty", err.Error())
	})

	t.Run("unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Point", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := fmt.Errorf("compile: %w", NewSchemaError("Point", "x", "dup", nil))
		assert.True(t, IsSchemaError(err))
		assert.False(t, IsSchemaError(errors.New("other")))

		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "Point", serr.Record)
		assert.Equal(t, "x", serr.Field)
	})
}

func TestConfigError(t *testing.T) {
	t.Run("message with value", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "must be positive")
		assert.Equal(t, `instaparse: config error for "Workers" (value: -1): must be positive`, err.Error())
	})

	t.Run("message without value", func(t *testing.T) {
		err := NewConfigError("Backend", nil, "missing backend")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("matches sentinel", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.ErrorIs(t, err, ErrMissingConfig)
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("message with all fields", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewGenerationError("write", "point.go", "cannot write file", cause)

		assert.Contains(t, err.Error(), "instaparse: generation error")
		assert.Contains(t, err.Error(), "phase write")
		assert.Contains(t, err.Error(), "file: point.go")
		assert.Contains(t, err.Error(), "cannot write file")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("unwrap and sentinel", func(t *testing.T) {
		cause := errors.New("io error")
		err := NewGenerationError("format", "", "", cause)

		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.True(t, IsGenerationError(err))
	})
}

func TestErrorTypeChecking(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isSchema bool
		isConfig bool
		isGen    bool
	}{
		{name: "SchemaError", err: NewSchemaError("Point", "", "", nil), isSchema: true},
		{name: "ConfigError", err: NewConfigError("Target", nil, ""), isConfig: true},
		{name: "GenerationError", err: NewGenerationError("write", "", "", nil), isGen: true},
		{name: "Other error", err: errors.New("other")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isSchema, IsSchemaError(tt.err))
			assert.Equal(t, tt.isConfig, IsConfigError(tt.err))
			assert.Equal(t, tt.isGen, IsGenerationError(tt.err))
		})
	}
}
