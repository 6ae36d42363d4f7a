// Package pkg provides the package identity and version algebra shared by
// every other subsystem: PackagePath, Version, VersionRange, PackageId,
// UnresolvedPackage, and the Dependency/DownloadDependency records the
// resolver and downloader pass between each other.
//
// None of these types depend on storage, network, or the driver model —
// they are value types with parsing, rendering, and comparison methods.
// Path, Version, and Id compare with == and work as map keys; Range holds
// a slice of constraints, so Range and the types embedding it
// (Unresolved, Dependency, DownloadDependency) are not comparable with ==.
package pkg
