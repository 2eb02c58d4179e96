package interpreter

import (
	"context"
	"errors"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/ptvskit/ptvskit/config"
)

// Configuration keys a section may carry. A section describes either
// installations or environments, not both.
const (
	keyInterpreterPaths = "interpreter_paths"
	keyEnvironmentPaths = "environment_paths"
	keyDescription      = "description"
)

// FromSection resolves every interpreter the named configuration section
// points at. Installation directories are tried first; only when the
// section lists none are environment directories tried. Candidates that are
// not interpreters are skipped; broken preconditions (a missing catalog
// root, an unset catalog version) abort the batch. A configured description
// overrides the description of every resolved descriptor.
//
// A missing section fails with ErrSectionNotFound. The result may be empty.
func (r *Resolver) FromSection(ctx context.Context, cfg config.Reader, section string, opts Options) ([]*Descriptor, error) {
	logger := slogcontext.FromCtx(ctx)

	if !cfg.HasSection(section) {
		return nil, errSectionNotFound(section, cfg.Sections())
	}

	describe := func(dirs []string, from func(context.Context, string, Options) (*Descriptor, error)) ([]*Descriptor, error) {
		var descriptors []*Descriptor
		for _, dir := range dirs {
			d, err := from(ctx, dir, opts)
			if errors.Is(err, ErrNotFound) {
				logger.Debug("skipping candidate directory",
					slog.String("section", section),
					slog.String("dir", dir),
					slog.String("reason", err.Error()))
				continue
			}
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, d)
		}
		return descriptors, nil
	}

	var descriptors []*Descriptor
	var err error
	if dirs := cfg.Dirs(section, keyInterpreterPaths); len(dirs) > 0 {
		descriptors, err = describe(dirs, r.FromInstallation)
	} else if dirs := cfg.Dirs(section, keyEnvironmentPaths); len(dirs) > 0 {
		descriptors, err = describe(dirs, r.FromVirtualEnvironment)
	}
	if err != nil {
		return nil, err
	}

	for _, d := range descriptors {
		d.Description = cfg.Get(section, keyDescription, d.Description)
	}

	return descriptors, nil
}
