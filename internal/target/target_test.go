package target

import (
	"testing"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSettings(t *testing.T, data map[string]any) settings.Settings {
	t.Helper()
	s, err := settings.New(data)
	require.NoError(t, err)
	return s
}

func TestInterfaceSettingsPropagatesPublicOnly(t *testing.T) {
	leaf := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.leaf")}, Own: mustSettings(t, map[string]any{
		"include_directories": []any{"/leaf/include"},
	})}
	privateDep := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.hidden")}, Own: mustSettings(t, map[string]any{
		"include_directories": []any{"/hidden/include"},
	})}

	app := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.app")}, Own: mustSettings(t, map[string]any{
		"include_directories": []any{"/app/include"},
	})}
	app.AddLink(leaf, pkg.Public)
	app.AddLink(privateDep, pkg.Private)

	iface := app.InterfaceSettings()
	dirs, ok := iface.Get("include_directories")
	require.True(t, ok)
	arr, ok := dirs.Array()
	require.True(t, ok)
	require.Len(t, arr, 2) // app's own + leaf's, not privateDep's
}

func TestInterfaceSettingsIsCachedAfterFirstRead(t *testing.T) {
	leaf := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.leaf")}, Own: mustSettings(t, map[string]any{"k": "v"})}
	first := leaf.InterfaceSettings()
	second := leaf.InterfaceSettings()
	assert.True(t, first.Equal(second))
}

func TestInterfaceSettingsToleratesCycle(t *testing.T) {
	a := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.a")}, Own: mustSettings(t, map[string]any{})}
	b := &Target{Id: pkg.Id{Path: pkg.NewPath("org.demo.b")}, Own: mustSettings(t, map[string]any{})}
	a.AddLink(b, pkg.Public)
	b.AddLink(a, pkg.Public)

	assert.NotPanics(t, func() {
		a.InterfaceSettings()
	})
}
