package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	slogcontext "github.com/veqryn/slog-context"
)

// Binary names a Python installation ships at its root. Virtual
// environments place the same pair under Scripts.
const (
	consoleBinary  = "python.exe"
	windowedBinary = "pythonw.exe"
)

// FromInstallation builds a descriptor for the Python installation rooted
// at dir. It fails with ErrNotFound when dir holds no console interpreter.
//
// The descriptor's Description defaults to the final path segment of dir,
// the windowed binary is recorded when present, and probed facts override
// any supplied version or architecture. The new descriptor is reconciled
// against the catalog immediately, so an installation already registered
// keeps its existing identity; reconciliation precondition failures
// propagate.
func (r *Resolver) FromInstallation(ctx context.Context, dir string, opts Options) (*Descriptor, error) {
	logger := slogcontext.FromCtx(ctx)

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving installation root %q: %w", dir, err)
	}

	console := filepath.Join(root, consoleBinary)
	if !r.exists(console) {
		return nil, fmt.Errorf("no console interpreter at %s: %w", console, ErrNotFound)
	}

	opts.Root = root
	opts.InterpreterPath = consoleBinary
	if opts.Description == "" {
		opts.Description = filepath.Base(root)
	}
	if r.exists(filepath.Join(root, windowedBinary)) {
		opts.WindowsInterpreterPath = windowedBinary
	}

	if field := r.prober.Version(ctx, console); field.Known {
		opts.Version = field.Value
	}
	if field := r.prober.Architecture(ctx, console); field.Known {
		opts.Architecture = Architecture(field.Value)
	}

	d := NewDescriptor(r.store, opts)
	if err := d.Resolve(ctx); err != nil {
		return nil, err
	}

	logger.Debug("described python installation",
		slog.String("root", root),
		slog.String("id", d.ID.String()),
		slog.String("version", d.Version))
	return d, nil
}
