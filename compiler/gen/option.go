package gen

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"

	"github.com/ImpGuard/instaparse/schema/field"
)

// DefaultHeader is the comment written at the top of every generated unit.
const DefaultHeader = "Code generated by instaparse. DO NOT EDIT."

// DefaultMainName is the base name of the driver unit.
const DefaultMainName = "main"

// Config holds the configuration of one generation run.
type Config struct {
	// Target is the directory generated units are written to.
	Target string
	// Backend selects the target language.
	Backend Backend
	// Header is the comment placed at the top of every unit.
	Header string
	// MainName is the base name of the driver unit, without extension.
	MainName string
	// Hook is the body of the user hook invoked with the parsed root.
	// It is inserted verbatim, one statement per line.
	Hook string
	// Workers bounds the number of units flushed in parallel.
	Workers int
	// Logger receives debug and info events.
	Logger *slog.Logger
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithBackend sets the target language backend.
func WithBackend(b Backend) Option {
	return func(c *Config) error {
		if b == nil {
			return NewConfigError("Backend", nil, "backend cannot be nil")
		}
		c.Backend = b
		return nil
	}
}

// WithHeader sets the file header comment.
// An empty header omits the comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithMainName sets the base name of the driver unit.
func WithMainName(name string) Option {
	return func(c *Config) error {
		if !field.ValidName(name) {
			return NewConfigError("MainName", name, "main name must be a plain identifier")
		}
		c.MainName = name
		return nil
	}
}

// WithHook sets the body of the generated user hook.
func WithHook(body string) Option {
	return func(c *Config) error {
		c.Hook = strings.TrimRight(body, "\n")
		return nil
	}
}

// WithWorkers sets the number of units written in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger used during generation.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:   DefaultHeader,
		MainName: DefaultMainName,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	c.fill()
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// fill sets defaults for zero values, for configs built as literals.
func (c *Config) fill() {
	if c.MainName == "" {
		c.MainName = DefaultMainName
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
