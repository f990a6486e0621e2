// Package compiler loads format descriptions and generates parsers for
// them with a backend selected by name.
package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ImpGuard/instaparse/compiler/gen"
	"github.com/ImpGuard/instaparse/compiler/gen/golang"
	"github.com/ImpGuard/instaparse/compiler/gen/java"
	"github.com/ImpGuard/instaparse/compiler/gen/python"
	"github.com/ImpGuard/instaparse/compiler/load"
)

// backends holds the shipped backends in lookup order.
var backends = []struct {
	name string
	new  func() gen.Backend
}{
	{"go", func() gen.Backend { return golang.New() }},
	{"java", func() gen.Backend { return java.New() }},
	{"python", func() gen.Backend { return python.New() }},
}

// Backends returns the names of the shipped backends.
func Backends() []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.name
	}
	return names
}

// Backend returns the backend with the given name. It fails with a
// *gen.ConfigError if there is no such backend.
func Backend(name string) (gen.Backend, error) {
	for _, b := range backends {
		if b.name == name {
			return b.new(), nil
		}
	}
	return nil, gen.NewConfigError("Backend", name, fmt.Sprintf("unknown backend, expected one of: %s", strings.Join(Backends(), ", ")))
}

// LoadSchema reads the descriptor at path and validates it. Read and
// decode failures are wrapped in a *gen.SchemaError.
func LoadSchema(path string) (*gen.Schema, error) {
	d, err := load.ReadFile(path)
	if err != nil {
		return nil, gen.NewSchemaError("", "", "load "+path, err)
	}
	return gen.NewSchema(d)
}

// Generate loads the descriptor at path and generates its parser as
// configured by cfg.
func Generate(ctx context.Context, path string, cfg *gen.Config) error {
	s, err := LoadSchema(path)
	if err != nil {
		return err
	}
	return gen.Generate(ctx, s, cfg)
}
