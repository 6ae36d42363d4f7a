// Package servicedb implements the service database: the installed-package
// registry plus the command-hash and input-content-hash tables the
// incremental executor consults for up-to-date checks.
//
// No embedded database driver (bolt/badger/sqlite) is pulled in for this;
// the package instead follows an "in-memory map guarded by sync.RWMutex"
// shape and adds a plain encoding/json flush to disk for durability across
// runs. Writes are serialized by a single, process-wide RWMutex.
package servicedb
