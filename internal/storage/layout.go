package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/5l1v3r1/sw/internal/pkg"
)

// Layout computes the deterministic directory layout rooted at $SW_STORAGE.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: root}
}

// EtcDir is the global configuration directory.
func (l *Layout) EtcDir() string {
	return filepath.Join(l.Root, "etc")
}

// pkgDir returns storage/pkg/<path-hash>/, shared by every version of path.
func (l *Layout) pkgDir(path pkg.Path) string {
	return filepath.Join(l.Root, "storage", "pkg", pathHash(path))
}

// SourceDir is the per-package, per-version source directory:
// storage/pkg/<path-hash>/<version>/
func (l *Layout) SourceDir(id pkg.Id) string {
	return filepath.Join(l.pkgDir(id.Path), id.Version.String())
}

// BuildDir is the build directory for a given settings hash:
// storage/pkg/<path-hash>/<version>/bd/<settings-hash>/
func (l *Layout) BuildDir(id pkg.Id, settingsHash string) string {
	return filepath.Join(l.SourceDir(id), "bd", settingsHash)
}

// TmpDir is scratch space for downloads and transient builds.
func (l *Layout) TmpDir() string {
	return filepath.Join(l.Root, "storage", "tmp")
}

// DBDir holds the service database's persisted files.
func (l *Layout) DBDir() string {
	return filepath.Join(l.Root, "storage", "db")
}

// pathHash renders a short, filesystem-friendly hash of a canonical package
// path, keeping directory names bounded regardless of path length.
func pathHash(path pkg.Path) string {
	sum := sha256.Sum256([]byte(path.String()))
	return hex.EncodeToString(sum[:])[:16]
}
