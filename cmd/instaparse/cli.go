package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ImpGuard/instaparse/compiler"
	"github.com/ImpGuard/instaparse/compiler/gen"
)

// ExitError is an error carrying the exit code of the process.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// options holds the parsed command line.
type options struct {
	schema    string
	backend   string
	out       string
	mainName  string
	hookFile  string
	workers   int
	logLevel  slog.Level
	logFormat string
	watch     bool
}

// parseArgs processes command-line arguments. It reports if the program
// should exit cleanly, e.g. after printing the usage.
func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("instaparse", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, `
instaparse - generate parsers for line-oriented record formats.

Usage:
  instaparse [options] SCHEMA

Arguments:
  SCHEMA
    Path to the format description (.yaml, .yml or .json).

Options:
`)
		fs.PrintDefaults()
	}

	var o options
	fs.StringVar(&o.backend, "backend", "go", "Target language. Options: "+strings.Join(compiler.Backends(), ", ")+".")
	fs.StringVar(&o.out, "out", ".", "Directory the parser is written to.")
	fs.StringVar(&o.mainName, "main", gen.DefaultMainName, "Base name of the driver file.")
	fs.StringVar(&o.hookFile, "hook", "", "File holding the body of the hook called with the parsed input.")
	fs.IntVar(&o.workers, "workers", 0, "Number of files written in parallel. 0 uses GOMAXPROCS.")
	level := fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.StringVar(&o.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	fs.BoolVar(&o.watch, "watch", false, "Regenerate whenever the schema file changes.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	switch fs.NArg() {
	case 0:
		fs.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing schema path"}
	case 1:
		o.schema = fs.Arg(0)
	default:
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one schema path"}
	}

	o.logFormat = strings.ToLower(o.logFormat)
	if o.logFormat != "text" && o.logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch strings.ToLower(*level) {
	case "debug", "info", "warn", "error":
		if err := o.logLevel.UnmarshalText([]byte(*level)); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return &o, false, nil
}

// newLogger returns a logger writing to w in the format of o.
func (o *options) newLogger(w io.Writer) *slog.Logger {
	ho := &slog.HandlerOptions{Level: o.logLevel}
	if o.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// config returns the generator configuration of o.
func (o *options) config(logger *slog.Logger) (*gen.Config, error) {
	b, err := compiler.Backend(o.backend)
	if err != nil {
		return nil, err
	}
	opts := []gen.Option{
		gen.WithBackend(b),
		gen.WithTarget(o.out),
		gen.WithMainName(o.mainName),
		gen.WithLogger(logger),
	}
	if o.workers != 0 {
		opts = append(opts, gen.WithWorkers(o.workers))
	}
	if o.hookFile != "" {
		hook, err := os.ReadFile(o.hookFile)
		if err != nil {
			return nil, fmt.Errorf("read hook: %w", err)
		}
		opts = append(opts, gen.WithHook(string(hook)))
	}
	return gen.NewConfig(opts...)
}
