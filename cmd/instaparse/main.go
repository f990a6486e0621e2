// Command instaparse generates a parser for a line-oriented record
// format described in a YAML or JSON file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ImpGuard/instaparse/compiler"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, generates the parser and, in watch mode, keeps
// regenerating it until ctx is done.
func run(ctx context.Context, out io.Writer, args []string) error {
	opts, exit, err := parseArgs(args, out)
	if err != nil {
		return err
	}
	if exit {
		return nil
	}
	logger := opts.newLogger(out)
	cfg, err := opts.config(logger)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	generate := func() error {
		if err := compiler.Generate(ctx, opts.schema, cfg); err != nil {
			return err
		}
		logger.Info("generated parser", "schema", opts.schema, "backend", opts.backend, "out", opts.out)
		return nil
	}
	if err := generate(); err != nil {
		if !opts.watch {
			return &ExitError{Code: 1, Message: err.Error()}
		}
		logger.Error("generation failed", "error", err)
	}
	if !opts.watch {
		return nil
	}
	return watch(ctx, opts.schema, logger, generate)
}
