package target

import (
	"sync"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/settings"
)

// Link is one link-kind dependency edge between two targets, carrying the
// visibility that gates interface-settings propagation.
type Link struct {
	Dep        *Target
	Visibility pkg.Visibility
}

// Command is one driver-produced command belonging to a Target: an argv plus
// the file sets the command graph builder needs to place it in the bipartite
// file/command DAG. Paths are used as given: nothing resolves them against
// a build directory, so a relative path is relative to the process's
// working directory.
type Command struct {
	Argv          []string
	Env           map[string]string
	Inputs        []string
	Outputs       []string
	Intermediates []string
}

// Target is a single build target: one package built with one concrete
// Settings record. Targets exist only for the duration of a single build.
type Target struct {
	Id         pkg.Id
	Own        settings.Settings
	Predefined bool
	Commands   []Command // driver-produced commands, filled by the driver stage

	links []Link

	once              sync.Once
	interfaceSettings settings.Settings
}

// AddLink records a link-kind dependency on dep with the given visibility.
// Must be called before the target is prepared (before InterfaceSettings is
// first read).
func (t *Target) AddLink(dep *Target, visibility pkg.Visibility) {
	t.links = append(t.links, Link{Dep: dep, Visibility: visibility})
}

// InterfaceSettings returns the target's effective interface settings: its
// own settings merged with the transitive closure of its PUBLIC link
// dependencies' interface settings. Computed once, lazily, on first read;
// immutable afterward.
func (t *Target) InterfaceSettings() settings.Settings {
	t.once.Do(func() {
		t.interfaceSettings = t.computeInterfaceSettings(map[*Target]bool{})
	})
	return t.interfaceSettings
}

// computeInterfaceSettings walks the PUBLIC-visibility link closure,
// breaking cycles with a visiting set rather than assuming the target graph
// is acyclic (unlike the command graph, there's no acyclicity requirement
// on target links).
func (t *Target) computeInterfaceSettings(visiting map[*Target]bool) settings.Settings {
	if visiting[t] {
		return settings.Empty()
	}
	visiting[t] = true
	defer delete(visiting, t)

	parts := []settings.Settings{t.Own}
	for _, link := range t.links {
		if link.Visibility != pkg.Public {
			continue
		}
		parts = append(parts, link.Dep.computeInterfaceSettings(visiting))
	}
	return settings.MergeAppend(parts...)
}
