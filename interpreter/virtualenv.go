package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	slogcontext "github.com/veqryn/slog-context"
)

const (
	scriptsDir     = "Scripts"
	venvConfigName = "pyvenv.cfg"
	venvConfigKey  = "home"
)

// FromVirtualEnvironment builds a descriptor for the virtual environment
// rooted at dir. It fails with ErrNotFound when dir holds no console
// interpreter under Scripts, when neither metadata file names a base
// installation, or when the base itself does not resolve.
//
// The base directory comes from pyvenv.cfg's home key, falling back to the
// first line of the legacy Lib/orig-prefix.txt marker. The base is resolved
// as an installation with the same options, the environment's BaseID is set
// to the base's identity, and its Description defaults to
// "<dir name> (<base description>)". The environment itself is not
// reconciled; its base already was.
func (r *Resolver) FromVirtualEnvironment(ctx context.Context, dir string, opts Options) (*Descriptor, error) {
	logger := slogcontext.FromCtx(ctx)

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving environment root %q: %w", dir, err)
	}

	console := filepath.Join(root, scriptsDir, consoleBinary)
	if !r.exists(console) {
		return nil, fmt.Errorf("no console interpreter at %s: %w", console, ErrNotFound)
	}

	baseDir, err := r.readBasePrefix(root)
	if err != nil {
		return nil, err
	}

	base, err := r.FromInstallation(ctx, baseDir, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("environment %s: base installation %s: %w", root, baseDir, err)
		}
		return nil, err
	}

	opts.Root = root
	opts.BaseID = base.ID
	opts.InterpreterPath = filepath.Join(scriptsDir, consoleBinary)
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("%s (%s)", filepath.Base(root), base.Description)
	}
	if r.exists(filepath.Join(root, scriptsDir, windowedBinary)) {
		opts.WindowsInterpreterPath = filepath.Join(scriptsDir, windowedBinary)
	}

	if field := r.prober.Version(ctx, console); field.Known {
		opts.Version = field.Value
	}
	if field := r.prober.Architecture(ctx, console); field.Known {
		opts.Architecture = Architecture(field.Value)
	}

	d := NewDescriptor(r.store, opts)

	logger.Debug("described virtual environment",
		slog.String("root", root),
		slog.String("id", d.ID.String()),
		slog.String("base", d.BaseID.String()))
	return d, nil
}

// readBasePrefix extracts the base installation directory from the
// environment's metadata. pyvenv.cfg's home key wins over the legacy
// orig-prefix marker; within pyvenv.cfg the last home assignment wins.
func (r *Resolver) readBasePrefix(root string) (string, error) {
	var baseDir string
	var found bool

	if data, err := afero.ReadFile(r.fs, filepath.Join(root, "Lib", "orig-prefix.txt")); err == nil {
		first, _, _ := strings.Cut(string(data), "\n")
		baseDir = strings.TrimRight(first, " \t\r")
		found = true
	}

	if data, err := afero.ReadFile(r.fs, filepath.Join(root, venvConfigName)); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			if strings.ToLower(strings.TrimSpace(key)) == venvConfigKey {
				baseDir = strings.TrimSpace(value)
				found = true
			}
		}
	}

	if !found || baseDir == "" {
		return "", fmt.Errorf("environment %s names no base installation: %w", root, ErrNotFound)
	}
	return baseDir, nil
}
