package nativehcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/driver"
	"github.com/5l1v3r1/sw/internal/fsutil"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/settings"
	"github.com/5l1v3r1/sw/internal/target"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

const manifestName = "sw.hcl"

// Driver is the built-in HCL-manifest native-source driver.
type Driver struct {
	parser *hclparse.Parser
}

// New returns a Driver with its own hclparse.Parser, scoped to one load
// pass.
func New() *Driver {
	return &Driver{parser: hclparse.NewParser()}
}

// DetectInputs recognizes an sw.hcl file given directly, or a directory
// tree containing one or more of them at any depth — a source archive may
// bundle several sub-packages, each with its own manifest.
func (d *Driver) DetectInputs(ctx context.Context, path string) ([]driver.Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if info.IsDir() {
		manifests, err := fsutil.FindFilesByExtension(path, manifestName)
		if err != nil {
			return nil, err
		}
		inputs := make([]driver.Input, 0, len(manifests))
		for _, m := range manifests {
			inputs = append(inputs, driver.Input{Path: m, Type: driver.DirectorySpecificationFile})
		}
		return inputs, nil
	}

	if filepath.Base(path) == manifestName {
		return []driver.Input{{Path: path, Type: driver.SpecificationFile}}, nil
	}
	return nil, nil
}

// LoadInputsBatch parses each manifest and returns one TargetEntryPoint per
// manifest, deferring package-identity resolution until the entry point is
// invoked with a whitelist.
func (d *Driver) LoadInputsBatch(ctx context.Context, inputs []driver.Input) ([]driver.TargetEntryPoint, error) {
	logger := ctxlog.FromContext(ctx)
	entryPoints := make([]driver.TargetEntryPoint, 0, len(inputs))

	for _, in := range inputs {
		in := in
		file, diags := d.parser.ParseHCLFile(in.Path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("nativehcl: parsing %s: %w", in.Path, diags)
		}
		manifest, diags := decodeManifest(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("nativehcl: decoding %s: %w", in.Path, diags)
		}
		logger.Debug("nativehcl: parsed manifest", "path", in.Path, "targets", len(manifest.Targets))

		entryPoints = append(entryPoints, func(whitelist map[pkg.Id]bool) ([]*target.Target, error) {
			return buildTargets(manifest, in.Path, whitelist)
		})
	}
	return entryPoints, nil
}

// buildTargets turns a decoded manifest into concrete Target values, named
// by the manifest's own package block. An empty whitelist means "build
// everything"; a non-empty one restricts to that package alone.
func buildTargets(manifest *manifestSchema, manifestPath string, whitelist map[pkg.Id]bool) ([]*target.Target, error) {
	if manifest.Package == nil {
		return nil, fmt.Errorf("nativehcl: %s declares no package block", manifestPath)
	}
	version, err := pkg.ParseVersion(manifest.Package.Version)
	if err != nil {
		return nil, fmt.Errorf("nativehcl: %s: %w", manifestPath, err)
	}
	id := pkg.Id{Path: pkg.NewPath(manifest.Package.Path), Version: version}

	if len(whitelist) > 0 && !whitelist[id] {
		return nil, nil
	}

	byName := make(map[string]*target.Target, len(manifest.Targets))
	out := make([]*target.Target, 0, len(manifest.Targets))
	for _, tb := range manifest.Targets {
		own := settings.Empty()
		if tb.Settings.Type() != cty.NilType {
			own = settings.FromValue(tb.Settings)
		}
		commands := make([]target.Command, 0, len(tb.Commands))
		for _, cb := range tb.Commands {
			commands = append(commands, target.Command{
				Argv:          cb.Argv,
				Env:           cb.Env,
				Inputs:        cb.Inputs,
				Outputs:       cb.Outputs,
				Intermediates: cb.Intermediates,
			})
		}
		t := &target.Target{
			Id:         id,
			Own:        own,
			Predefined: tb.Predefined,
			Commands:   commands,
		}
		byName[tb.Name] = t
		out = append(out, t)
	}

	for _, tb := range manifest.Targets {
		t := byName[tb.Name]
		public := make(map[string]bool, len(tb.Public))
		for _, name := range tb.Public {
			public[name] = true
		}
		for _, depName := range tb.DependsOn {
			dep, ok := byName[depName]
			if !ok {
				return nil, fmt.Errorf("nativehcl: %s: target %q depends on unknown target %q", manifestPath, tb.Name, depName)
			}
			visibility := pkg.Private
			if public[depName] {
				visibility = pkg.Public
			}
			t.AddLink(dep, visibility)
		}
	}

	return out, nil
}
