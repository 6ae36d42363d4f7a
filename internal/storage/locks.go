package storage

import (
	"sync"

	"github.com/5l1v3r1/sw/internal/pkg"
)

// PackageLocks hands out one mutex per PackageId, so unpack and delete
// operations on the same package serialize while distinct packages proceed
// concurrently.
type PackageLocks struct {
	mu    sync.Mutex
	locks map[pkg.Id]*sync.Mutex
}

// NewPackageLocks returns an empty lock table.
func NewPackageLocks() *PackageLocks {
	return &PackageLocks{locks: make(map[pkg.Id]*sync.Mutex)}
}

// For returns the mutex for id, creating it on first use.
func (l *PackageLocks) For(id pkg.Id) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
