// Package interpreter describes Python installations and virtual
// environments and reconciles them with the host tool's per-user
// interpreter catalog.
//
// Descriptors come from three places: a Resolver inspecting an installation
// directory, a Resolver inspecting a virtual environment directory, or the
// catalog itself. A descriptor is reconciled at most once, then either
// discarded or registered.
package interpreter

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ptvskit/ptvskit/catalog"
)

// DefaultSearchPathVariable is the environment variable the host tool uses
// for module search path injection when none is configured.
const DefaultSearchPathVariable = "PYTHONPATH"

// Descriptor is one interpreter as the catalog sees it: identity, lineage,
// probed facts, and the paths the host tool launches.
type Descriptor struct {
	// ID identifies the catalog entry. BaseID names the installation a
	// virtual environment derives from and equals ID for installations.
	ID     uuid.UUID
	BaseID uuid.UUID

	Architecture Architecture
	Version      string
	Description  string

	// Root is the installation or environment directory.
	// InterpreterPath and WindowsInterpreterPath are relative to Root
	// unless they were given absolute; the AbsPath fields always hold the
	// launchable locations.
	Root                      string
	InterpreterPath           string
	InterpreterAbsPath        string
	WindowsInterpreterPath    string
	WindowsInterpreterAbsPath string

	// SearchPathVariable is the environment variable the host tool sets
	// for module search path injection.
	SearchPathVariable string

	// CatalogVersion selects the host tool catalog namespace to reconcile
	// and register against.
	CatalogVersion string

	store catalog.Store
}

// Options override the defaults applied during descriptor construction. The
// zero value means "derive everything that can be derived".
type Options struct {
	ID                        uuid.UUID
	BaseID                    uuid.UUID
	Architecture              Architecture
	Version                   string
	Description               string
	Root                      string
	InterpreterPath           string
	InterpreterAbsPath        string
	WindowsInterpreterPath    string
	WindowsInterpreterAbsPath string
	SearchPathVariable        string
	CatalogVersion            string
}

// NewDescriptor constructs a descriptor bound to store, filling defaults:
// a fresh ID when none is given, BaseID mirroring ID, absolute binary paths
// derived from Root plus the relative paths, and the default search path
// variable.
func NewDescriptor(store catalog.Store, opts Options) *Descriptor {
	d := &Descriptor{
		ID:                        opts.ID,
		BaseID:                    opts.BaseID,
		Architecture:              opts.Architecture,
		Version:                   opts.Version,
		Description:               opts.Description,
		Root:                      opts.Root,
		InterpreterPath:           opts.InterpreterPath,
		InterpreterAbsPath:        opts.InterpreterAbsPath,
		WindowsInterpreterPath:    opts.WindowsInterpreterPath,
		WindowsInterpreterAbsPath: opts.WindowsInterpreterAbsPath,
		SearchPathVariable:        opts.SearchPathVariable,
		CatalogVersion:            opts.CatalogVersion,
		store:                     store,
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.BaseID == uuid.Nil {
		d.BaseID = d.ID
	}
	if d.InterpreterAbsPath == "" {
		d.InterpreterAbsPath = joinUnderRoot(d.Root, d.InterpreterPath)
	}
	if d.WindowsInterpreterAbsPath == "" {
		d.WindowsInterpreterAbsPath = joinUnderRoot(d.Root, d.WindowsInterpreterPath)
	}
	if d.SearchPathVariable == "" {
		d.SearchPathVariable = DefaultSearchPathVariable
	}
	return d
}

// Name identifies the kind of registerable object.
func (d *Descriptor) Name() string {
	return "Python Interpreter"
}

// String renders a short summary for logs and error reports.
func (d *Descriptor) String() string {
	return fmt.Sprintf("Interpreter{ID: %s, Version: %q, Architecture: %q, Path: %q}",
		d.ID, d.Version, d.Architecture, d.InterpreterAbsPath)
}

// joinUnderRoot resolves rel against root, leaving already-absolute paths
// untouched. An empty rel resolves to the root itself, which is what the
// catalog historically stores for interpreters without a windowed binary.
func joinUnderRoot(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}
