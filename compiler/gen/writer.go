package gen

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Write formats and writes units to the target directory of cfg.
// Units are processed in parallel. No unit is written unless every
// unit was formatted successfully.
func Write(ctx context.Context, units []*Unit, cfg *Config) error {
	if cfg == nil || cfg.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	c := *cfg
	c.fill()
	if err := os.MkdirAll(c.Target, 0o755); err != nil {
		return NewGenerationError("write", c.Target, "create output directory", err)
	}
	if f, ok := c.Backend.(Formatter); ok {
		err := each(ctx, units, c.Workers, func(u *Unit) error {
			return formatUnit(u, c.Target, f)
		})
		if err != nil {
			return err
		}
	}
	return each(ctx, units, c.Workers, func(u *Unit) error {
		if err := u.Flush(c.Target); err != nil {
			return err
		}
		c.Logger.Info("wrote unit", "file", filepath.Join(c.Target, u.Path), "kind", u.Kind, "bytes", len(u.Bytes()))
		return nil
	})
}

// each runs fn for every unit with at most workers goroutines.
func each(ctx context.Context, units []*Unit, workers int, fn func(*Unit) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, u := range units {
		u := u
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fn(u)
			}
		})
	}
	return eg.Wait()
}

// formatUnit applies the backend formatter to u. On failure the
// unformatted text is written next to the destination for debugging.
func formatUnit(u *Unit, dir string, f Formatter) error {
	fullPath := filepath.Join(dir, u.Path)
	err := u.Format(func(_ string, src []byte) ([]byte, error) {
		return f.Format(fullPath, src)
	})
	if err == nil {
		return nil
	}
	if IsGenerationError(err) {
		return err
	}
	// Errors intentionally ignored as we're already in error state.
	debugPath := fullPath + ".error"
	_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
	_ = os.WriteFile(debugPath, u.Bytes(), 0o644)
	return NewGenerationError("format", u.Path, "unformatted output written to "+debugPath, err)
}
