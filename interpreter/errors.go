package interpreter

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome kinds callers branch on with errors.Is.
var (
	// ErrNotFound reports that a candidate directory does not hold what an
	// operation was looking for: no console binary, no environment
	// metadata, or no resolvable base installation. Batch resolution skips
	// candidates that fail with it.
	ErrNotFound = errors.New("no interpreter found")

	// ErrSectionNotFound reports a section name missing from the
	// configuration input.
	ErrSectionNotFound = errors.New("configuration section not found")

	// ErrCatalogVersionMissing reports a descriptor without the catalog
	// version that reconciliation and registration require.
	ErrCatalogVersionMissing = errors.New("catalog version not set")

	// ErrCatalogUnavailable reports that the catalog root for the requested
	// version does not exist, which means the host tool is not installed
	// for that version.
	ErrCatalogUnavailable = errors.New("interpreter catalog not available")
)

// errSectionNotFound builds the lookup failure for a missing configuration
// section, naming the sections that do exist.
func errSectionNotFound(section string, available []string) error {
	return fmt.Errorf("section [%s] not found in [%s]: %w", section, strings.Join(available, ", "), ErrSectionNotFound)
}
