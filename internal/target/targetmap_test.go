package target

import (
	"testing"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDeduplicatesOnKeyProjection(t *testing.T) {
	m := New("caller_path")
	id := pkg.Id{Path: pkg.NewPath("org.demo.app"), Version: pkg.MustParseVersion("1.0.0")}

	s1 := mustSettings(t, map[string]any{"compiler": "gcc", "caller_path": "/a"})
	s2 := mustSettings(t, map[string]any{"compiler": "gcc", "caller_path": "/b"})

	t1, created1 := m.GetOrCreate(id, s1, false)
	t2, created2 := m.GetOrCreate(id, s2, false)

	assert.True(t, created1)
	assert.False(t, created2)
	assert.Same(t, t1, t2)
}

func TestGetOrCreateDistinctKeysGetDistinctTargets(t *testing.T) {
	m := New()
	id := pkg.Id{Path: pkg.NewPath("org.demo.app"), Version: pkg.MustParseVersion("1.0.0")}

	s1 := mustSettings(t, map[string]any{"compiler": "gcc"})
	s2 := mustSettings(t, map[string]any{"compiler": "clang"})

	t1, _ := m.GetOrCreate(id, s1, false)
	t2, _ := m.GetOrCreate(id, s2, false)

	assert.NotSame(t, t1, t2)
	assert.Len(t, m.All(), 2)
}

func TestExportedFiltersPredefined(t *testing.T) {
	m := New()
	id := pkg.Id{Path: pkg.NewPath("org.demo.app"), Version: pkg.MustParseVersion("1.0.0")}

	_, created := m.GetOrCreate(id, mustSettings(t, map[string]any{"a": "1"}), true)
	require.True(t, created)
	_, created = m.GetOrCreate(id, mustSettings(t, map[string]any{"a": "2"}), false)
	require.True(t, created)

	exported := m.Exported()
	require.Len(t, exported, 1)
	assert.False(t, exported[0].Predefined)
}
