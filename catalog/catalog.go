// Package catalog abstracts the hierarchical key/value store that holds
// interpreter registrations. The production backend is the per-user area of
// the Windows registry; MemStore backs tests and dry runs with the same
// contract.
package catalog

import (
	"errors"
	"strings"
)

// ErrNotExist reports that a key or a named value is absent from the store.
var ErrNotExist = errors.New("catalog: key or value does not exist")

// Separator divides the elements of a catalog key path.
const Separator = `\`

// Store is the root of a hierarchical key/value catalog. Key paths are
// Separator-joined and relative to the store root.
type Store interface {
	// Open opens an existing key. It returns ErrNotExist when any element
	// of the path is missing.
	Open(path string) (Key, error)

	// Create opens the key at path, creating it and any missing parents.
	Create(path string) (Key, error)
}

// Key is an open handle to a single catalog key. Callers must Close every
// key they obtain.
type Key interface {
	// Subkeys lists the names of the key's immediate children.
	Subkeys() ([]string, error)

	// Value returns the named string value, or ErrNotExist when it is not
	// set.
	Value(name string) (string, error)

	// SetValue stores a string value under name, replacing any previous
	// value.
	SetValue(name, value string) error

	// Close releases the key handle.
	Close() error
}

// Join assembles a key path from its elements, skipping empty ones.
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, Separator)
}
