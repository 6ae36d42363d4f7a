package target

import (
	"sync"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/settings"
)

// TargetMap is the two-level PackageId → Settings-keyed multiset of built
// targets. Lookup by (PackageId, Settings) returns at most one Target; the
// map key is a *key projection* of Settings that omits volatile fields, so
// two settings records that agree on the key projection address the same
// slot.
type TargetMap struct {
	volatileKeys []string

	mu   sync.Mutex
	rows map[pkg.Id]map[[32]byte]*Target
}

// New builds an empty TargetMap. volatileKeys names the top-level Settings
// fields stripped before computing the lookup key (e.g. absolute paths,
// caller identity).
func New(volatileKeys ...string) *TargetMap {
	return &TargetMap{
		volatileKeys: volatileKeys,
		rows:         make(map[pkg.Id]map[[32]byte]*Target),
	}
}

func (m *TargetMap) key(s settings.Settings) [32]byte {
	return s.WithoutKeys(m.volatileKeys...).Hash()
}

// Lookup returns the target already stored for (id, own's key projection),
// if any.
func (m *TargetMap) Lookup(id pkg.Id, own settings.Settings) (*Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	t, ok := slots[m.key(own)]
	return t, ok
}

// GetOrCreate returns the existing target for (id, own), or creates and
// stores a new one. The bool result reports whether a new target was
// created.
func (m *TargetMap) GetOrCreate(id pkg.Id, own settings.Settings, predefined bool) (*Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots, ok := m.rows[id]
	if !ok {
		slots = make(map[[32]byte]*Target)
		m.rows[id] = slots
	}
	k := m.key(own)
	if t, ok := slots[k]; ok {
		return t, false
	}
	t := &Target{Id: id, Own: own, Predefined: predefined}
	slots[k] = t
	return t, true
}

// All returns every target in the map, in no particular order.
func (m *TargetMap) All() []*Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Target
	for _, slots := range m.rows {
		for _, t := range slots {
			out = append(out, t)
		}
	}
	return out
}

// Exported returns every non-predefined target: the map's contents with
// system-provided predefined targets filtered out.
func (m *TargetMap) Exported() []*Target {
	var out []*Target
	for _, t := range m.All() {
		if !t.Predefined {
			out = append(out, t)
		}
	}
	return out
}
