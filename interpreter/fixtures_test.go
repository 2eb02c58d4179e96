package interpreter

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/ptvskit/ptvskit/catalog"
	"github.com/ptvskit/ptvskit/internal/testfixtures"
	"github.com/ptvskit/ptvskit/probe"
)

// Catalog version tests register under. The value only has to be
// consistent between seeding and lookups.
const testCatalogVersion = "17.0"

// seededStore returns an in-memory catalog with the PythonTools root
// present, the state a machine with the host tool installed starts from.
func seededStore(t *testing.T) *catalog.MemStore {
	t.Helper()
	store := catalog.NewMemStore()
	testfixtures.MustSeedCatalogRoot(store, testCatalogVersion)
	return store
}

// newTestResolver wires a resolver over an in-memory filesystem and catalog
// with a prober that reports the given version and architecture. Empty
// probe values mean the probe could not tell.
func newTestResolver(fsys afero.Fs, store catalog.Store, version, architecture string) *Resolver {
	return NewResolverWith(fsys, testfixtures.NewStubProber(version, architecture), store)
}

var _ probe.Prober = (*testfixtures.StubProber)(nil)
