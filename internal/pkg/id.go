package pkg

import "fmt"

// Id is the unique coordinate of an installed package: a resolved Path and
// Version pair.
type Id struct {
	Path    Path
	Version Version
}

// String renders "path-version". The registry wire contract does not use
// this form; it carries path and version as separate fields.
func (id Id) String() string {
	return fmt.Sprintf("%s-%s", id.Path, id.Version)
}

// Unresolved is a package reference plus the version range that must be
// satisfied: the resolver's basic unit of input.
type Unresolved struct {
	Path  Path
	Range Range
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s-%s", u.Path, u.Range)
}

// Package is a resolved Id plus the origin metadata needed to install it.
type Package struct {
	Id         Id
	Hash       string // content hash of the installed source tree
	ArchiveURL string
	ArchiveHash string
	Flags      Flags
}

// Flags are boolean install-time attributes carried alongside a Package.
type Flags uint8

const (
	// FlagPrivate marks a package installed only for its dependents' private
	// use — it is not re-exported through PUBLIC interface settings.
	FlagPrivate Flags = 1 << iota
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }
