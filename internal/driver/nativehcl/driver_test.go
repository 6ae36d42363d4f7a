package nativehcl

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/driver"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
package {
  path    = "org.demo.app"
  version = "1.2.0"
}

target "lib" {
  settings = {
    include_directories = ["/lib/include"]
  }
  command {
    argv    = ["cc", "-c", "lib.c", "-o", "lib.o"]
    inputs  = ["lib.c"]
    outputs = ["lib.o"]
  }
}

target "app" {
  depends_on = ["lib"]
  public     = ["lib"]
  command {
    argv    = ["cc", "app.o", "lib.o", "-o", "app"]
    inputs  = ["app.o", "lib.o"]
    outputs = ["app"]
  }
}
`

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.Default())
}

func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sw.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))
	return path
}

func TestDetectInputsFindsManifestInDirectory(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	d := New()
	inputs, err := d.DetectInputs(testCtx(), dir)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, driver.DirectorySpecificationFile, inputs[0].Type)
}

func TestDetectInputsIgnoresDirectoryWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	d := New()
	inputs, err := d.DetectInputs(testCtx(), dir)
	require.NoError(t, err)
	assert.Empty(t, inputs)
}

func TestDetectInputsFindsNestedManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)
	sub := filepath.Join(dir, "vendor", "sublib")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeManifest(t, sub)

	d := New()
	inputs, err := d.DetectInputs(testCtx(), dir)
	require.NoError(t, err)
	assert.Len(t, inputs, 2)
}

func TestLoadInputsBatchBuildsTargetsWithLinks(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	d := New()
	inputs, err := d.DetectInputs(testCtx(), dir)
	require.NoError(t, err)

	eps, err := d.LoadInputsBatch(testCtx(), inputs)
	require.NoError(t, err)
	require.Len(t, eps, 1)

	targets, err := eps[0](nil)
	require.NoError(t, err)
	require.Len(t, targets, 2)

	var appTarget *target.Target
	for _, tg := range targets {
		if len(tg.Commands) == 1 && len(tg.Commands[0].Argv) > 0 && tg.Commands[0].Argv[0] == "cc" && tg.Commands[0].Outputs[0] == "app" {
			appTarget = tg
		}
	}
	require.NotNil(t, appTarget)

	iface := appTarget.InterfaceSettings()
	dirs, ok := iface.Get("include_directories")
	require.True(t, ok)
	arr, ok := dirs.Array()
	require.True(t, ok)
	assert.Len(t, arr, 1) // propagated from lib, app declares no settings of its own
}

func TestLoadInputsBatchRespectsWhitelist(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir)

	d := New()
	inputs, err := d.DetectInputs(testCtx(), dir)
	require.NoError(t, err)

	eps, err := d.LoadInputsBatch(testCtx(), inputs)
	require.NoError(t, err)

	other := pkg.Id{Path: pkg.NewPath("org.demo.other"), Version: pkg.MustParseVersion("1.0.0")}
	targets, err := eps[0](map[pkg.Id]bool{other: true})
	require.NoError(t, err)
	assert.Empty(t, targets)
}
