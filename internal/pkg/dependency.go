package pkg

// LinkKind distinguishes a dependency needed only to run the built artifact
// from one needed to compile and link against it.
type LinkKind int

const (
	DependencyLink LinkKind = iota
	DependencyRuntime
)

// Visibility controls whether a dependency's interface settings propagate
// to consumers of the depending target.
type Visibility int

const (
	Public Visibility = iota
	Private
)

// Dependency is an Unresolved package reference plus its role in the
// dependent's build.
type Dependency struct {
	Unresolved
	Kind       LinkKind
	Visibility Visibility
	Optional   bool
}

// DownloadDependency is a Dependency the resolver has pinned to a concrete
// Package and that the downloader must fetch if not already installed.
type DownloadDependency struct {
	Dependency
	Resolved Package
}

// Id is a convenience accessor for the resolved package's coordinate.
func (d DownloadDependency) Id() Id { return d.Resolved.Id }
