// Package testfixtures provides builders for the trees, catalog entries,
// and probers that interpreter tests arrange.
package testfixtures

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ptvskit/ptvskit/catalog"
	"github.com/ptvskit/ptvskit/probe"
)

// InstallationBuilder lays out a fake Python installation on a filesystem
type InstallationBuilder struct {
	root     string
	windowed bool
}

// NewInstallationBuilder creates a builder for an installation rooted at root
func NewInstallationBuilder(root string) *InstallationBuilder {
	return &InstallationBuilder{root: root}
}

// WithWindowedBinary adds a pythonw.exe next to the console binary
func (b *InstallationBuilder) WithWindowedBinary() *InstallationBuilder {
	b.windowed = true
	return b
}

// Write materializes the installation tree
func (b *InstallationBuilder) Write(fsys afero.Fs) error {
	if err := afero.WriteFile(fsys, filepath.Join(b.root, "python.exe"), []byte("bin"), 0o755); err != nil {
		return err
	}
	if b.windowed {
		return afero.WriteFile(fsys, filepath.Join(b.root, "pythonw.exe"), []byte("bin"), 0o755)
	}
	return nil
}

// MustWrite materializes the installation tree and panics on error
func (b *InstallationBuilder) MustWrite(fsys afero.Fs) {
	if err := b.Write(fsys); err != nil {
		panic(err)
	}
}

// EnvironmentBuilder lays out a fake virtual environment on a filesystem
type EnvironmentBuilder struct {
	root       string
	windowed   bool
	origPrefix *string
	cfgLines   []string
	writeCfg   bool
}

// NewEnvironmentBuilder creates a builder for an environment rooted at root
func NewEnvironmentBuilder(root string) *EnvironmentBuilder {
	return &EnvironmentBuilder{root: root}
}

// WithWindowedBinary adds Scripts/pythonw.exe next to the console binary
func (b *EnvironmentBuilder) WithWindowedBinary() *EnvironmentBuilder {
	b.windowed = true
	return b
}

// WithOrigPrefix writes the legacy Lib/orig-prefix.txt marker with content
// as its first line
func (b *EnvironmentBuilder) WithOrigPrefix(content string) *EnvironmentBuilder {
	b.origPrefix = &content
	return b
}

// WithHome appends a "home = base" line to pyvenv.cfg
func (b *EnvironmentBuilder) WithHome(base string) *EnvironmentBuilder {
	return b.WithConfigLine(fmt.Sprintf("home = %s", base))
}

// WithConfigLine appends a raw line to pyvenv.cfg
func (b *EnvironmentBuilder) WithConfigLine(line string) *EnvironmentBuilder {
	b.writeCfg = true
	b.cfgLines = append(b.cfgLines, line)
	return b
}

// WithEmptyConfig writes a pyvenv.cfg with no usable keys
func (b *EnvironmentBuilder) WithEmptyConfig() *EnvironmentBuilder {
	b.writeCfg = true
	return b
}

// Write materializes the environment tree
func (b *EnvironmentBuilder) Write(fsys afero.Fs) error {
	if err := afero.WriteFile(fsys, filepath.Join(b.root, "Scripts", "python.exe"), []byte("bin"), 0o755); err != nil {
		return err
	}
	if b.windowed {
		if err := afero.WriteFile(fsys, filepath.Join(b.root, "Scripts", "pythonw.exe"), []byte("bin"), 0o755); err != nil {
			return err
		}
	}
	if b.origPrefix != nil {
		content := *b.origPrefix + "\nsecond line is ignored\n"
		if err := afero.WriteFile(fsys, filepath.Join(b.root, "Lib", "orig-prefix.txt"), []byte(content), 0o644); err != nil {
			return err
		}
	}
	if b.writeCfg {
		var content string
		for _, line := range b.cfgLines {
			content += line + "\n"
		}
		return afero.WriteFile(fsys, filepath.Join(b.root, "pyvenv.cfg"), []byte(content), 0o644)
	}
	return nil
}

// MustWrite materializes the environment tree and panics on error
func (b *EnvironmentBuilder) MustWrite(fsys afero.Fs) {
	if err := b.Write(fsys); err != nil {
		panic(err)
	}
}

// EntryBuilder seeds catalog entries the way the host tool writes them
type EntryBuilder struct {
	id     uuid.UUID
	name   string
	values map[string]string
}

// NewEntryBuilder creates a builder with a fresh identity and typical
// values. The interpreter path is left unset unless provided.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		id: uuid.New(),
		values: map[string]string{
			"Architecture":            "x64",
			"Description":             "Python 3.12",
			"Version":                 "3.12",
			"PathEnvironmentVariable": "PYTHONPATH",
		},
	}
}

// WithID sets the entry identity
func (b *EntryBuilder) WithID(id uuid.UUID) *EntryBuilder {
	b.id = id
	return b
}

// WithName overrides the subkey name, which normally derives from the
// identity in brace-wrapped form
func (b *EntryBuilder) WithName(name string) *EntryBuilder {
	b.name = name
	return b
}

// WithInterpreterPath stores the absolute console interpreter path
func (b *EntryBuilder) WithInterpreterPath(path string) *EntryBuilder {
	return b.WithValue("InterpreterPath", path)
}

// WithWindowsInterpreterPath stores the absolute windowed interpreter path
func (b *EntryBuilder) WithWindowsInterpreterPath(path string) *EntryBuilder {
	return b.WithValue("WindowsInterpreterPath", path)
}

// WithDescription stores the description value
func (b *EntryBuilder) WithDescription(description string) *EntryBuilder {
	return b.WithValue("Description", description)
}

// WithVersion stores the version value
func (b *EntryBuilder) WithVersion(version string) *EntryBuilder {
	return b.WithValue("Version", version)
}

// WithArchitecture stores the architecture value
func (b *EntryBuilder) WithArchitecture(architecture string) *EntryBuilder {
	return b.WithValue("Architecture", architecture)
}

// WithValue stores an arbitrary entry value
func (b *EntryBuilder) WithValue(name, value string) *EntryBuilder {
	b.values[name] = value
	return b
}

// WithoutValue removes a value so the entry omits it
func (b *EntryBuilder) WithoutValue(name string) *EntryBuilder {
	delete(b.values, name)
	return b
}

// ID returns the entry identity
func (b *EntryBuilder) ID() uuid.UUID {
	return b.id
}

// Seed writes the entry under the catalog version's Interpreters key
func (b *EntryBuilder) Seed(store catalog.Store, catalogVersion string) error {
	name := b.name
	if name == "" {
		name = fmt.Sprintf("{%s}", b.id)
	}
	path := catalog.Join(`Software\Microsoft\VisualStudio`, catalogVersion, `PythonTools\Interpreters`, name)

	key, err := store.Create(path)
	if err != nil {
		return err
	}
	defer key.Close()

	for valueName, value := range b.values {
		if err := key.SetValue(valueName, value); err != nil {
			return err
		}
	}
	return nil
}

// MustSeed writes the entry and panics on error
func (b *EntryBuilder) MustSeed(store catalog.Store, catalogVersion string) {
	if err := b.Seed(store, catalogVersion); err != nil {
		panic(err)
	}
}

// SeedCatalogRoot creates the catalog-version root that marks the host tool
// as installed
func SeedCatalogRoot(store catalog.Store, catalogVersion string) error {
	key, err := store.Create(catalog.Join(`Software\Microsoft\VisualStudio`, catalogVersion, `PythonTools`))
	if err != nil {
		return err
	}
	return key.Close()
}

// MustSeedCatalogRoot creates the catalog-version root and panics on error
func MustSeedCatalogRoot(store catalog.Store, catalogVersion string) {
	if err := SeedCatalogRoot(store, catalogVersion); err != nil {
		panic(err)
	}
}

// StubProber answers probes with fixed fields
type StubProber struct {
	VersionField      probe.Field
	ArchitectureField probe.Field
}

// NewStubProber creates a prober reporting the given facts; an empty string
// leaves that fact unknown
func NewStubProber(version, architecture string) *StubProber {
	p := &StubProber{}
	if version != "" {
		p.VersionField = probe.Field{Value: version, Known: true}
	}
	if architecture != "" {
		p.ArchitectureField = probe.Field{Value: architecture, Known: true}
	}
	return p
}

// Version reports the stubbed version fact
func (p *StubProber) Version(context.Context, string) probe.Field {
	return p.VersionField
}

// Architecture reports the stubbed architecture fact
func (p *StubProber) Architecture(context.Context, string) probe.Field {
	return p.ArchitectureField
}
