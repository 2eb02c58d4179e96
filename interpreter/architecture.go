package interpreter

import "fmt"

// Architecture identifies the build flavor of an interpreter binary.
type Architecture string

const (
	// ArchitectureUnknown is used when probing could not determine the
	// flavor. It registers as an empty catalog value.
	ArchitectureUnknown Architecture = ""
	ArchitectureX86     Architecture = "x86"
	ArchitectureX64     Architecture = "x64"
)

// NewArchitecture validates and converts an architecture string. The empty
// string is accepted as the unknown architecture.
func NewArchitecture(value string) (Architecture, error) {
	switch Architecture(value) {
	case ArchitectureUnknown, ArchitectureX86, ArchitectureX64:
		return Architecture(value), nil
	default:
		return ArchitectureUnknown, fmt.Errorf("invalid architecture %q: must be x86 or x64", value)
	}
}

// String returns the catalog representation of the architecture.
func (a Architecture) String() string {
	return string(a)
}
