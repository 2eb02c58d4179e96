package interpreter

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ptvskit/ptvskit/catalog"
	"github.com/ptvskit/ptvskit/internal/testfixtures"
)

// TestResolve_AdoptsMatchingEntry tests identity adoption
func TestResolve_AdoptsMatchingEntry(t *testing.T) {
	absPath := filepath.Join(t.TempDir(), "Python312", "python.exe")

	tests := []struct {
		name        string
		storedPath  string
		expectMatch bool
		description string
	}{
		{
			name:        "ExactPath_ShouldAdopt",
			storedPath:  absPath,
			expectMatch: true,
			description: "Identical paths are the same interpreter",
		},
		{
			name:        "DifferentCase_ShouldAdopt",
			storedPath:  strings.ToUpper(absPath),
			expectMatch: true,
			description: "Catalog paths compare case-insensitively",
		},
		{
			name:        "DifferentPath_ShouldKeepIdentity",
			storedPath:  filepath.Join(filepath.Dir(absPath), "other", "python.exe"),
			expectMatch: false,
			description: "Unrelated entries leave the identity alone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := seededStore(t)
			entry := testfixtures.NewEntryBuilder().WithInterpreterPath(tt.storedPath)
			entry.MustSeed(store, testCatalogVersion)

			d := NewDescriptor(store, Options{
				InterpreterAbsPath: absPath,
				CatalogVersion:     testCatalogVersion,
			})
			fresh := d.ID

			require.NoError(t, d.Resolve(ctx))

			if tt.expectMatch {
				assert.Equal(t, entry.ID(), d.ID, tt.description)
				assert.Equal(t, entry.ID(), d.BaseID)
			} else {
				assert.Equal(t, fresh, d.ID, tt.description)
				assert.Equal(t, fresh, d.BaseID)
			}
		})
	}
}

// TestResolve_EmptyCatalog tests reconciliation against a catalog with no
// interpreters registered yet
func TestResolve_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	d := NewDescriptor(store, Options{
		InterpreterAbsPath: filepath.Join(t.TempDir(), "python.exe"),
		CatalogVersion:     testCatalogVersion,
	})
	fresh := d.ID

	require.NoError(t, d.Resolve(ctx), "No entries means no conflict")
	assert.Equal(t, fresh, d.ID)
}

// TestResolve_SkipsUnreadableEntries tests tolerance of foreign entries
func TestResolve_SkipsUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	absPath := filepath.Join(t.TempDir(), "Python312", "python.exe")
	store := seededStore(t)

	testfixtures.NewEntryBuilder().
		WithoutValue("InterpreterPath").
		MustSeed(store, testCatalogVersion)
	entry := testfixtures.NewEntryBuilder().WithInterpreterPath(absPath)
	entry.MustSeed(store, testCatalogVersion)

	d := NewDescriptor(store, Options{
		InterpreterAbsPath: absPath,
		CatalogVersion:     testCatalogVersion,
	})

	require.NoError(t, d.Resolve(ctx))
	assert.Equal(t, entry.ID(), d.ID, "A broken entry must not end the scan")
}

// TestResolve_Preconditions tests the shared catalog preconditions
func TestResolve_Preconditions(t *testing.T) {
	tests := []struct {
		name           string
		store          catalog.Store
		catalogVersion string
		expected       error
		description    string
	}{
		{
			name:           "NoCatalogVersion",
			store:          catalog.NewMemStore(),
			catalogVersion: "",
			expected:       ErrCatalogVersionMissing,
			description:    "The catalog version selects the namespace",
		},
		{
			name:           "NoStore",
			store:          nil,
			catalogVersion: testCatalogVersion,
			expected:       ErrCatalogUnavailable,
			description:    "Without a store there is nothing to reconcile against",
		},
		{
			name:           "CatalogRootMissing",
			store:          catalog.NewMemStore(),
			catalogVersion: testCatalogVersion,
			expected:       ErrCatalogUnavailable,
			description:    "The host tool has not created its key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			d := NewDescriptor(tt.store, Options{
				InterpreterAbsPath: filepath.Join(t.TempDir(), "python.exe"),
				CatalogVersion:     tt.catalogVersion,
			})

			err := d.Resolve(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected, tt.description)

			err = d.Register(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected, "Register shares Resolve's preconditions")
		})
	}
}

// TestResolve_NeverWrites tests that reconciliation is read-only
func TestResolve_NeverWrites(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	testfixtures.NewEntryBuilder().
		WithInterpreterPath(filepath.Join(t.TempDir(), "elsewhere", "python.exe")).
		MustSeed(store, testCatalogVersion)

	d := NewDescriptor(store, Options{
		InterpreterAbsPath: filepath.Join(t.TempDir(), "Python312", "python.exe"),
		CatalogVersion:     testCatalogVersion,
	})
	require.NoError(t, d.Resolve(ctx))

	key, err := store.Open(interpretersPath(testCatalogVersion))
	require.NoError(t, err)
	defer key.Close()

	names, err := key.Subkeys()
	require.NoError(t, err)
	assert.Len(t, names, 1, "Resolve must not create entries")
}

// TestRegister_PersistsEntry tests the written catalog values
func TestRegister_PersistsEntry(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	root := filepath.Join(t.TempDir(), "Python312")

	d := NewDescriptor(store, Options{
		Architecture:           ArchitectureX64,
		Version:                "3.12",
		Description:            "Python 3.12 (64-bit)",
		Root:                   root,
		InterpreterPath:        "python.exe",
		WindowsInterpreterPath: "pythonw.exe",
		CatalogVersion:         testCatalogVersion,
	})
	require.NoError(t, d.Register(ctx))

	key, err := store.Open(entryPath(testCatalogVersion, d.ID))
	require.NoError(t, err)
	defer key.Close()

	expected := map[string]string{
		"Architecture":            "x64",
		"Description":             "Python 3.12 (64-bit)",
		"InterpreterPath":         filepath.Join(root, "python.exe"),
		"Version":                 "3.12",
		"WindowsInterpreterPath":  filepath.Join(root, "pythonw.exe"),
		"PathEnvironmentVariable": "PYTHONPATH",
	}
	for name, want := range expected {
		got, err := key.Value(name)
		require.NoError(t, err, "value %s should be stored", name)
		assert.Equal(t, want, got, "value %s", name)
	}
}

// TestRegister_OverwritesExistingEntry tests re-registration
func TestRegister_OverwritesExistingEntry(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	root := filepath.Join(t.TempDir(), "Python312")

	d := NewDescriptor(store, Options{
		Version:         "3.11",
		Root:            root,
		InterpreterPath: "python.exe",
		CatalogVersion:  testCatalogVersion,
	})
	require.NoError(t, d.Register(ctx))

	d.Version = "3.12"
	require.NoError(t, d.Register(ctx))

	key, err := store.Open(entryPath(testCatalogVersion, d.ID))
	require.NoError(t, err)
	defer key.Close()

	got, err := key.Value("Version")
	require.NoError(t, err)
	assert.Equal(t, "3.12", got, "Registering again updates the same entry")
}

// TestEntries_RoundTripsRegisteredDescriptor tests that what Register writes
// Entries can read back
func TestEntries_RoundTripsRegisteredDescriptor(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	root := filepath.Join(t.TempDir(), "Python312")

	d := NewDescriptor(store, Options{
		Architecture:           ArchitectureX86,
		Version:                "3.12",
		Description:            "Workstation Python",
		Root:                   root,
		InterpreterPath:        "python.exe",
		WindowsInterpreterPath: "pythonw.exe",
		SearchPathVariable:     "VIRTUALPATH",
		CatalogVersion:         testCatalogVersion,
	})
	require.NoError(t, d.Register(ctx))

	r := NewResolverWith(afero.NewMemMapFs(), testfixtures.NewStubProber("", ""), store)
	entries, err := r.Entries(ctx, testCatalogVersion)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	loaded := entries[0]
	assert.Equal(t, d.ID, loaded.ID)
	assert.Equal(t, d.ID, loaded.BaseID)
	assert.Equal(t, d.Architecture, loaded.Architecture)
	assert.Equal(t, d.Version, loaded.Version)
	assert.Equal(t, d.Description, loaded.Description)
	assert.Equal(t, d.InterpreterAbsPath, loaded.InterpreterAbsPath)
	assert.Equal(t, d.WindowsInterpreterAbsPath, loaded.WindowsInterpreterAbsPath)
	assert.Equal(t, d.SearchPathVariable, loaded.SearchPathVariable)
	assert.Equal(t, root, loaded.Root, "The root is recovered from the stored interpreter path")
	assert.Equal(t, testCatalogVersion, loaded.CatalogVersion)
}

// TestEntries_ListsAndFilters tests enumeration tolerance
func TestEntries_ListsAndFilters(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	good := testfixtures.NewEntryBuilder().
		WithInterpreterPath(filepath.Join(t.TempDir(), "Python312", "python.exe"))
	good.MustSeed(store, testCatalogVersion)

	testfixtures.NewEntryBuilder().
		WithName("Global|PythonCore|3.11").
		WithInterpreterPath(filepath.Join(t.TempDir(), "Foreign", "python.exe")).
		MustSeed(store, testCatalogVersion)

	testfixtures.NewEntryBuilder().
		WithoutValue("InterpreterPath").
		MustSeed(store, testCatalogVersion)

	r := NewResolverWith(afero.NewMemMapFs(), testfixtures.NewStubProber("", ""), store)
	entries, err := r.Entries(ctx, testCatalogVersion)
	require.NoError(t, err)

	require.Len(t, entries, 1, "Foreign key names and pathless entries are skipped")
	assert.Equal(t, good.ID(), entries[0].ID)
}

// TestEntries_AbsentValuesGetDefaults tests loading a sparse entry
func TestEntries_AbsentValuesGetDefaults(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	entry := testfixtures.NewEntryBuilder().
		WithInterpreterPath(filepath.Join(t.TempDir(), "Python", "python.exe")).
		WithoutValue("PathEnvironmentVariable").
		WithoutValue("Description")
	entry.MustSeed(store, testCatalogVersion)

	r := NewResolverWith(afero.NewMemMapFs(), testfixtures.NewStubProber("", ""), store)
	entries, err := r.Entries(ctx, testCatalogVersion)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "PYTHONPATH", entries[0].SearchPathVariable, "The stock search path variable stands in")
	assert.Empty(t, entries[0].Description)
}

// TestEntries_EmptyOrMissingCatalog tests the no-entries cases
func TestEntries_EmptyOrMissingCatalog(t *testing.T) {
	ctx := context.Background()

	r := NewResolverWith(afero.NewMemMapFs(), testfixtures.NewStubProber("", ""), catalog.NewMemStore())
	entries, err := r.Entries(ctx, testCatalogVersion)
	require.NoError(t, err, "A machine without the host tool simply has no entries")
	assert.Empty(t, entries)

	_, err = r.Entries(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogVersionMissing)
}

// Property-based tests using rapid

// TestRegister_PropertyBased_RoundTrip tests that arbitrary descriptor
// fields survive the write-then-load cycle
func TestRegister_PropertyBased_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := catalog.NewMemStore()
		testfixtures.MustSeedCatalogRoot(store, testCatalogVersion)

		root := filepath.Join(string(filepath.Separator), "opt",
			rapid.StringMatching(`[A-Za-z0-9_-]{1,16}`).Draw(t, "root"))

		d := NewDescriptor(store, Options{
			Architecture:       Architecture(rapid.SampledFrom([]string{"", "x86", "x64"}).Draw(t, "arch")),
			Version:            rapid.StringMatching(`[0-9]\.[0-9]{1,2}`).Draw(t, "version"),
			Description:        rapid.StringMatching(`[ -~]{0,32}`).Draw(t, "description"),
			Root:               root,
			InterpreterPath:    "python.exe",
			SearchPathVariable: rapid.StringMatching(`[A-Z_]{1,16}`).Draw(t, "searchPathVariable"),
			CatalogVersion:     testCatalogVersion,
		})
		require.NoError(t, d.Register(ctx))

		loaded, err := loadEntry(store, testCatalogVersion, "{"+d.ID.String()+"}")
		require.NoError(t, err)

		assert.Equal(t, d.ID, loaded.ID)
		assert.Equal(t, d.Architecture, loaded.Architecture)
		assert.Equal(t, d.Version, loaded.Version)
		assert.Equal(t, d.Description, loaded.Description)
		assert.Equal(t, d.InterpreterAbsPath, loaded.InterpreterAbsPath)
		assert.Equal(t, d.SearchPathVariable, loaded.SearchPathVariable)
	})
}

// BenchmarkResolve measures reconciliation against a populated catalog
func BenchmarkResolve(b *testing.B) {
	ctx := context.Background()
	store := catalog.NewMemStore()
	testfixtures.MustSeedCatalogRoot(store, testCatalogVersion)
	for i := 0; i < 100; i++ {
		testfixtures.NewEntryBuilder().
			WithInterpreterPath(filepath.Join(string(filepath.Separator), "opt", uuid.NewString(), "python.exe")).
			MustSeed(store, testCatalogVersion)
	}

	d := NewDescriptor(store, Options{
		InterpreterAbsPath: filepath.Join(string(filepath.Separator), "opt", "target", "python.exe"),
		CatalogVersion:     testCatalogVersion,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Resolve(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
