// Package storage computes the deterministic on-disk paths for a package
// manager root: per-package source directories, per-settings build
// directories, download scratch space, and the service database
// directory. It also provides the per-PackageId locks that guard
// concurrent unpack/delete of the same package.
package storage
