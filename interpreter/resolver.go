package interpreter

import (
	"github.com/spf13/afero"

	"github.com/ptvskit/ptvskit/catalog"
	"github.com/ptvskit/ptvskit/probe"
)

// Resolver discovers Python installations and virtual environments on a
// filesystem, probes their binaries, and binds the resulting descriptors to
// a catalog.
type Resolver struct {
	fs     afero.Fs
	prober probe.Prober
	store  catalog.Store
}

// NewResolver creates a Resolver over the operating system's filesystem and
// a subprocess-based prober.
func NewResolver(store catalog.Store) *Resolver {
	return NewResolverWith(afero.NewOsFs(), probe.NewExecProber(), store)
}

// NewResolverWith creates a Resolver with explicit collaborators.
func NewResolverWith(fsys afero.Fs, prober probe.Prober, store catalog.Store) *Resolver {
	return &Resolver{fs: fsys, prober: prober, store: store}
}

// exists reports whether path is present on the resolver's filesystem.
// Unreadable paths count as absent, matching what a discovery scan can
// safely assume.
func (r *Resolver) exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}
