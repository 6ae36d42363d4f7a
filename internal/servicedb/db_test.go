package servicedb

import (
	"testing"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallAndReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)

	id := pkg.Id{Path: pkg.NewPath("org.demo.leaf"), Version: pkg.MustParseVersion("1.2.0")}
	require.NoError(t, db.InstallPackage(id, "deadbeef", 0, 1000))

	assert.True(t, db.IsInstalled(id))
	hash, ok := db.InstalledHash(id)
	require.True(t, ok)
	assert.Equal(t, "deadbeef", hash)

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, reopened.IsInstalled(id))
}

func TestUninstallRemovesRow(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)

	id := pkg.Id{Path: pkg.NewPath("org.demo.leaf"), Version: pkg.MustParseVersion("1.0.0")}
	require.NoError(t, db.InstallPackage(id, "h", 0, 1))
	require.NoError(t, db.Uninstall(id))

	assert.False(t, db.IsInstalled(id))
}

func TestInstalledVersionsFiltersByPath(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)

	a1 := pkg.Id{Path: pkg.NewPath("org.demo.a"), Version: pkg.MustParseVersion("1.0.0")}
	a2 := pkg.Id{Path: pkg.NewPath("org.demo.a"), Version: pkg.MustParseVersion("2.0.0")}
	b1 := pkg.Id{Path: pkg.NewPath("org.demo.b"), Version: pkg.MustParseVersion("1.0.0")}

	require.NoError(t, db.InstallPackage(a1, "h1", 0, 1))
	require.NoError(t, db.InstallPackage(a2, "h2", 0, 1))
	require.NoError(t, db.InstallPackage(b1, "h3", 0, 1))

	versions := db.InstalledVersions(pkg.NewPath("org.demo.a"))
	assert.Len(t, versions, 2)
}

func TestCommandAndInputHashRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, db.RecordCommandHash([]byte{1, 2, 3}, 42))
	mtime, ok := db.CommandHash([]byte{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, int64(42), mtime)

	require.NoError(t, db.RecordInput("/src/foo.c", 100, 10, []byte{9, 9}))
	row, ok := db.Input("/src/foo.c")
	require.True(t, ok)
	assert.Equal(t, int64(100), row.Size)
}
