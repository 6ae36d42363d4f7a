package resolver

import (
	"context"
	"log/slog"
	"testing"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/registryclient"
	"github.com/5l1v3r1/sw/internal/swerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLocalStore is a hand-written fake, preferred here over a generated
// mock.
type fakeLocalStore struct {
	installed map[string][]pkg.Id
}

func (f *fakeLocalStore) InstalledVersions(path pkg.Path) []pkg.Id {
	return f.installed[path.String()]
}

// fakeRemote serves resolvePackages from a canned dependency graph, keyed
// by path, ignoring the requested range (tests construct ranges that always
// match their fixtures).
type fakeRemote struct {
	graph map[string]registryclient.ResolvedPackage
	calls int
}

func (f *fakeRemote) ResolvePackages(ctx context.Context, batch []pkg.Unresolved) (*registryclient.Result, error) {
	f.calls++
	res := &registryclient.Result{}
	for _, u := range batch {
		entry, ok := f.graph[u.Path.String()]
		if !ok {
			res.Unresolved = append(res.Unresolved, u)
			continue
		}
		res.Resolved = append(res.Resolved, entry)
	}
	return res, nil
}

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.Default())
}

func TestResolveSimpleClosure(t *testing.T) {
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{
		"org.demo.app": {
			Id:  pkg.Id{Path: pkg.NewPath("org.demo.app"), Version: pkg.MustParseVersion("1.0.0")},
			Deps: []pkg.Unresolved{
				{Path: pkg.NewPath("org.demo.lib"), Range: pkg.MustParseRange(">=1.0.0")},
			},
		},
		"org.demo.lib": {
			Id: pkg.Id{Path: pkg.NewPath("org.demo.lib"), Version: pkg.MustParseVersion("1.5.0")},
		},
	}}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{}}

	r := New(local, remote)
	roots := []pkg.Unresolved{{Path: pkg.NewPath("org.demo.app"), Range: pkg.MustParseRange(">=1.0.0")}}

	result, err := r.Resolve(testCtx(), roots, Options{QueryLocalDB: true})
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", result.Resolved[pkg.NewPath("org.demo.app")].Version.String())
	assert.Equal(t, "1.5.0", result.Resolved[pkg.NewPath("org.demo.lib")].Version.String())
	assert.Len(t, result.Downloads, 2)
}

func TestResolveLocalHitSkipsRemote(t *testing.T) {
	appID := pkg.Id{Path: pkg.NewPath("org.demo.app"), Version: pkg.MustParseVersion("2.0.0")}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{
		"org.demo.app": {appID},
	}}
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{}}

	r := New(local, remote)
	roots := []pkg.Unresolved{{Path: pkg.NewPath("org.demo.app"), Range: pkg.MustParseRange(">=1.0.0")}}

	result, err := r.Resolve(testCtx(), roots, Options{QueryLocalDB: true})
	require.NoError(t, err)
	assert.Equal(t, appID, result.Resolved[pkg.NewPath("org.demo.app")])
	assert.Equal(t, 0, remote.calls)
}

func TestResolveConflictingRootPinsFails(t *testing.T) {
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{
		"org.demo.lib": {Id: pkg.Id{Path: pkg.NewPath("org.demo.lib"), Version: pkg.MustParseVersion("1.0.0")}},
	}}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{}}

	r := New(local, remote)
	roots := []pkg.Unresolved{
		{Path: pkg.NewPath("org.demo.lib"), Range: pkg.MustParseRange("==1.0.0")},
		{Path: pkg.NewPath("org.demo.lib"), Range: pkg.MustParseRange("==2.0.0")},
	}

	_, err := r.Resolve(testCtx(), roots, Options{QueryLocalDB: false})
	require.Error(t, err)
}

// TestResolveConflictingRootDependencyPinsFails reproduces the diamond
// conflict where two distinct roots each pin a shared, deeper dependency to
// incompatible versions via their own first-hop dependency lists: neither
// root IS the conflicting package, so only inspecting roots.Range.Exact()
// would miss it.
func TestResolveConflictingRootDependencyPinsFails(t *testing.T) {
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{
		"org.demo.a": {
			Id:   pkg.Id{Path: pkg.NewPath("org.demo.a"), Version: pkg.MustParseVersion("1.0.0")},
			Deps: []pkg.Unresolved{{Path: pkg.NewPath("org.demo.c"), Range: pkg.MustParseRange("==1.0.0")}},
		},
		"org.demo.b": {
			Id:   pkg.Id{Path: pkg.NewPath("org.demo.b"), Version: pkg.MustParseVersion("1.0.0")},
			Deps: []pkg.Unresolved{{Path: pkg.NewPath("org.demo.c"), Range: pkg.MustParseRange("==2.0.0")}},
		},
	}}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{}}

	r := New(local, remote)
	roots := []pkg.Unresolved{
		{Path: pkg.NewPath("org.demo.a"), Range: pkg.MustParseRange("==1.0.0")},
		{Path: pkg.NewPath("org.demo.b"), Range: pkg.MustParseRange("==1.0.0")},
	}

	_, err := r.Resolve(testCtx(), roots, Options{QueryLocalDB: false})
	require.Error(t, err)
	assert.True(t, swerr.Of(err, swerr.ConflictingPins))
}

func TestResolveUnresolvedPropagates(t *testing.T) {
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{}}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{}}

	r := New(local, remote)
	roots := []pkg.Unresolved{{Path: pkg.NewPath("org.demo.missing"), Range: pkg.Any()}}

	result, err := r.Resolve(testCtx(), roots, Options{QueryLocalDB: false})
	require.NoError(t, err)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "org.demo.missing", result.Unresolved[0].Path.String())
}

func TestResolveIsOrderIndependent(t *testing.T) {
	remote := &fakeRemote{graph: map[string]registryclient.ResolvedPackage{
		"org.demo.a": {Id: pkg.Id{Path: pkg.NewPath("org.demo.a"), Version: pkg.MustParseVersion("1.0.0")}},
		"org.demo.b": {Id: pkg.Id{Path: pkg.NewPath("org.demo.b"), Version: pkg.MustParseVersion("1.0.0")}},
	}}
	local := &fakeLocalStore{installed: map[string][]pkg.Id{}}

	forward := []pkg.Unresolved{
		{Path: pkg.NewPath("org.demo.a"), Range: pkg.Any()},
		{Path: pkg.NewPath("org.demo.b"), Range: pkg.Any()},
	}
	backward := []pkg.Unresolved{forward[1], forward[0]}

	r1 := New(local, remote)
	res1, err := r1.Resolve(testCtx(), forward, Options{})
	require.NoError(t, err)

	r2 := New(local, remote)
	res2, err := r2.Resolve(testCtx(), backward, Options{})
	require.NoError(t, err)

	assert.Equal(t, res1.Resolved, res2.Resolved)
}
