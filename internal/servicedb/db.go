package servicedb

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/5l1v3r1/sw/internal/pkg"
)

// DB is the service database: a single-writer, multi-reader store of
// installed packages, command hashes, and input content hashes, flushed to
// a JSON file under storage.DBDir().
type DB struct {
	path string

	mu        sync.RWMutex
	installed map[pkg.Id]InstalledPackageRow
	commands  map[string]CommandHashRow
	inputs    map[string]InputRow
}

// Open loads an existing database file at dbDir/state.json, or starts an
// empty one if none exists yet.
func Open(dbDir string) (*DB, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, err
	}
	db := &DB{
		path:      filepath.Join(dbDir, "state.json"),
		installed: make(map[pkg.Id]InstalledPackageRow),
		commands:  make(map[string]CommandHashRow),
		inputs:    make(map[string]InputRow),
	}

	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	for _, row := range snap.InstalledPackages {
		v, err := pkg.ParseVersion(row.Version)
		if err != nil {
			continue
		}
		id := pkg.Id{Path: pkg.NewPath(row.Path), Version: v}
		db.installed[id] = row
	}
	for _, row := range snap.CommandHashes {
		db.commands[row.CommandHash] = row
	}
	for _, row := range snap.Inputs {
		db.inputs[row.FilePath] = row
	}
	return db, nil
}

// flush persists the current state atomically: write to a temp file in the
// same directory, then rename into place, the same atomic-unpack-then-rename
// discipline the downloader uses. Callers must hold mu for writing before
// calling flush.
func (db *DB) flush() error {
	snap := snapshot{}
	for _, row := range db.installed {
		snap.InstalledPackages = append(snap.InstalledPackages, row)
	}
	for _, row := range db.commands {
		snap.CommandHashes = append(snap.CommandHashes, row)
	}
	for _, row := range db.inputs {
		snap.Inputs = append(snap.Inputs, row)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp := db.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, db.path)
}

// InstallPackage records a successful install.
func (db *DB) InstallPackage(id pkg.Id, hash string, flags pkg.Flags, installedTime int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.installed[id] = InstalledPackageRow{
		Path:          id.Path.String(),
		Version:       id.Version.String(),
		Hash:          hash,
		Flags:         int(flags),
		InstalledTime: installedTime,
	}
	return db.flush()
}

// Uninstall removes an installed package's row. The caller is responsible
// for deleting its source directory.
func (db *DB) Uninstall(id pkg.Id) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.installed, id)
	return db.flush()
}

// InstalledVersions returns every installed version of path, unordered.
func (db *DB) InstalledVersions(path pkg.Path) []pkg.Id {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []pkg.Id
	for id := range db.installed {
		if id.Path.Equal(path) {
			out = append(out, id)
		}
	}
	return out
}

// IsInstalled reports whether id is recorded as installed.
func (db *DB) IsInstalled(id pkg.Id) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.installed[id]
	return ok
}

// InstalledHash returns the recorded content hash for an installed package.
func (db *DB) InstalledHash(id pkg.Id) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	row, ok := db.installed[id]
	if !ok {
		return "", false
	}
	return row.Hash, true
}

// RecordCommandHash stores the last-known hash for a command's identity.
func (db *DB) RecordCommandHash(commandHash []byte, mtime int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	key := hex.EncodeToString(commandHash)
	db.commands[key] = CommandHashRow{CommandHash: key, Mtime: mtime}
	return db.flush()
}

// CommandHash looks up the last-stored mtime for a command hash.
func (db *DB) CommandHash(commandHash []byte) (int64, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	row, ok := db.commands[hex.EncodeToString(commandHash)]
	if !ok {
		return 0, false
	}
	return row.Mtime, true
}

// RecordInput stores the last-known metadata for an input file.
func (db *DB) RecordInput(path string, size, mtime int64, contentHash []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.inputs[path] = InputRow{
		FilePath:    path,
		Size:        size,
		Mtime:       mtime,
		ContentHash: hex.EncodeToString(contentHash),
	}
	return db.flush()
}

// Input looks up the last-recorded metadata for a file path.
func (db *DB) Input(path string) (InputRow, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	row, ok := db.inputs[path]
	return row, ok
}
