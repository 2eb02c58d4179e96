// Package config defines the section-based configuration surface that
// drives interpreter discovery, together with a reader for the host
// framework's INI files.
package config

// Reader supplies section-scoped settings. Implementations treat a missing
// key as "use the fallback" and never fail a lookup.
type Reader interface {
	// HasSection reports whether the named section exists.
	HasSection(section string) bool

	// Sections lists the names of the sections in the document.
	Sections() []string

	// Get returns the value of key in section, or fallback when section or
	// key is absent.
	Get(section, key, fallback string) string

	// Dirs interprets the value of key in section as a directory list and
	// returns the entries that exist on disk, nil when the key is absent.
	Dirs(section, key string) []string
}
