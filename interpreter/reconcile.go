package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/ptvskit/ptvskit/catalog"
)

// Catalog namespace. Entries live under the per-user key
// <productRoot>\<catalog version>\PythonTools\Interpreters, one subkey per
// interpreter, named by its brace-wrapped identity.
const productRoot = `Software\Microsoft\VisualStudio`

// Value names of a catalog entry. Both stored interpreter paths are
// absolute.
const (
	valueArchitecture            = "Architecture"
	valueDescription             = "Description"
	valueInterpreterPath         = "InterpreterPath"
	valueVersion                 = "Version"
	valueWindowsInterpreterPath  = "WindowsInterpreterPath"
	valuePathEnvironmentVariable = "PathEnvironmentVariable"
)

var entryValueNames = []string{
	valueArchitecture,
	valueDescription,
	valueInterpreterPath,
	valueVersion,
	valueWindowsInterpreterPath,
	valuePathEnvironmentVariable,
}

func toolsPath(catalogVersion string) string {
	return catalog.Join(productRoot, catalogVersion, "PythonTools")
}

func interpretersPath(catalogVersion string) string {
	return catalog.Join(toolsPath(catalogVersion), "Interpreters")
}

func entryPath(catalogVersion string, id uuid.UUID) string {
	return catalog.Join(interpretersPath(catalogVersion), fmt.Sprintf("{%s}", id))
}

// Resolve reconciles the descriptor with the catalog so an interpreter the
// host tool already knows keeps its identity instead of gaining a duplicate
// entry. It compares absolute console-interpreter paths case-insensitively
// against every loadable entry and, on the first match, adopts that entry's
// identity as both ID and BaseID.
//
// A missing CatalogVersion fails with ErrCatalogVersionMissing and a
// missing catalog root with ErrCatalogUnavailable. An absent or unreadable
// entry listing means no match; Resolve never writes.
func (d *Descriptor) Resolve(ctx context.Context) error {
	logger := slogcontext.FromCtx(ctx)

	if err := d.checkCatalog("resolve"); err != nil {
		return err
	}

	entries, err := d.store.Open(interpretersPath(d.CatalogVersion))
	if err != nil {
		logger.Debug("no catalog entries to reconcile against",
			slog.String("catalogVersion", d.CatalogVersion))
		return nil
	}
	defer entries.Close()

	names, err := entries.Subkeys()
	if err != nil {
		logger.Debug("cannot enumerate catalog entries",
			slog.String("catalogVersion", d.CatalogVersion),
			slog.String("error", err.Error()))
		return nil
	}

	for _, name := range names {
		existing, err := loadEntry(d.store, d.CatalogVersion, name)
		if err != nil {
			logger.Debug("skipping unreadable catalog entry",
				slog.String("entry", name),
				slog.String("error", err.Error()))
			continue
		}
		if strings.EqualFold(existing.InterpreterAbsPath, d.InterpreterAbsPath) {
			d.ID = existing.ID
			d.BaseID = existing.ID
			logger.Debug("adopted existing catalog identity",
				slog.String("id", d.ID.String()),
				slog.String("path", d.InterpreterAbsPath))
			return nil
		}
	}
	return nil
}

// Register persists the descriptor into the catalog under its
// CatalogVersion, creating or overwriting the entry named by its ID. The
// same preconditions as Resolve apply; write failures surface wrapped.
func (d *Descriptor) Register(ctx context.Context) error {
	logger := slogcontext.FromCtx(ctx)

	if err := d.checkCatalog("register"); err != nil {
		return err
	}

	path := entryPath(d.CatalogVersion, d.ID)
	key, err := d.store.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog entry %s: %w", path, err)
	}
	defer key.Close()

	values := []struct{ name, value string }{
		{valueArchitecture, d.Architecture.String()},
		{valueDescription, d.Description},
		{valueInterpreterPath, d.InterpreterAbsPath},
		{valueVersion, d.Version},
		{valueWindowsInterpreterPath, d.WindowsInterpreterAbsPath},
		{valuePathEnvironmentVariable, d.SearchPathVariable},
	}
	for _, v := range values {
		if err := key.SetValue(v.name, v.value); err != nil {
			return fmt.Errorf("writing catalog value %s of %s: %w", v.name, path, err)
		}
	}

	logger.Debug("registered interpreter",
		slog.String("id", d.ID.String()),
		slog.String("path", d.InterpreterAbsPath),
		slog.String("catalogVersion", d.CatalogVersion))
	return nil
}

// checkCatalog verifies the preconditions shared by Resolve and Register: a
// catalog version on the descriptor and the version's root present in the
// store.
func (d *Descriptor) checkCatalog(op string) error {
	if d.CatalogVersion == "" {
		return fmt.Errorf("cannot %s %s: %w", op, d.InterpreterAbsPath, ErrCatalogVersionMissing)
	}
	if d.store == nil {
		return fmt.Errorf("cannot %s %s: no catalog store: %w", op, d.InterpreterAbsPath, ErrCatalogUnavailable)
	}

	root, err := d.store.Open(toolsPath(d.CatalogVersion))
	if err != nil {
		return fmt.Errorf("cannot %s %s: catalog root %s missing, is the host tool installed: %w",
			op, d.InterpreterAbsPath, toolsPath(d.CatalogVersion), ErrCatalogUnavailable)
	}
	return root.Close()
}

// loadEntry reads one catalog entry back into a descriptor. The entry must
// carry a parseable identity and a non-empty interpreter path; any stored
// value may otherwise be absent. The root is derived from the stored
// absolute interpreter path.
func loadEntry(store catalog.Store, catalogVersion, name string) (*Descriptor, error) {
	path := catalog.Join(interpretersPath(catalogVersion), name)
	key, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog entry %s: %w", path, err)
	}
	defer key.Close()

	values := make(map[string]string, len(entryValueNames))
	for _, valueName := range entryValueNames {
		value, err := key.Value(valueName)
		if errors.Is(err, catalog.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s of catalog entry %s: %w", valueName, path, err)
		}
		values[valueName] = value
	}

	interpreterPath := values[valueInterpreterPath]
	if interpreterPath == "" {
		return nil, fmt.Errorf("catalog entry %s stores no interpreter path: %w", name, ErrNotFound)
	}

	id, err := uuid.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s has an unparseable identity: %w", name, err)
	}

	return NewDescriptor(store, Options{
		ID:                     id,
		Architecture:           Architecture(values[valueArchitecture]),
		Version:                values[valueVersion],
		Description:            values[valueDescription],
		Root:                   filepath.Dir(interpreterPath),
		InterpreterPath:        interpreterPath,
		WindowsInterpreterPath: values[valueWindowsInterpreterPath],
		SearchPathVariable:     values[valuePathEnvironmentVariable],
		CatalogVersion:         catalogVersion,
	}), nil
}

// Entries lists every loadable interpreter registered under catalogVersion.
// Unloadable entries are skipped; a catalog without the Interpreters key
// yields an empty list.
func (r *Resolver) Entries(ctx context.Context, catalogVersion string) ([]*Descriptor, error) {
	logger := slogcontext.FromCtx(ctx)

	if catalogVersion == "" {
		return nil, fmt.Errorf("cannot list catalog entries: %w", ErrCatalogVersionMissing)
	}

	key, err := r.store.Open(interpretersPath(catalogVersion))
	if errors.Is(err, catalog.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening interpreter catalog for version %s: %w", catalogVersion, err)
	}
	defer key.Close()

	names, err := key.Subkeys()
	if err != nil {
		return nil, fmt.Errorf("enumerating interpreter catalog for version %s: %w", catalogVersion, err)
	}

	var descriptors []*Descriptor
	for _, name := range names {
		d, err := loadEntry(r.store, catalogVersion, name)
		if err != nil {
			logger.Debug("skipping unloadable catalog entry",
				slog.String("entry", name),
				slog.String("error", err.Error()))
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
