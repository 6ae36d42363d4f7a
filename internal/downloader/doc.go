// Package downloader fetches each resolved DownloadDependency's archive,
// verifies its hash, unpacks it into the storage layout, and records the
// install in the service database.
//
// Per-PackageId locking goes through storage.PackageLocks; concurrent
// downloads of distinct packages proceed with golang.org/x/sync's
// errgroup.
package downloader
