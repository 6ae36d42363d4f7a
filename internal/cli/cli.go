// Package cli parses command-line arguments into a RunConfig, the flag
// layer on top of swctx.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/swctx"
)

// ExitError carries the process exit code a parse failure should produce.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// RunConfig is everything one build invocation needs: the environment-
// derived Config, overridden by any flags given, plus the root package
// references named on the command line.
type RunConfig struct {
	Config swctx.Config
	Roots  []pkg.Unresolved
}

// Parse processes args against the ambient Config. Flags override the
// environment-derived defaults; at least one root package reference must
// be given on the command line.
func Parse(args []string, cfg swctx.Config, output io.Writer) (*RunConfig, bool, error) {
	fs := flag.NewFlagSet("sw", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
sw - a hybrid build system and native package manager.

Usage:
  sw [options] PACKAGE[@RANGE] [PACKAGE[@RANGE] ...]

Options:
`)
		fs.PrintDefaults()
	}

	storageFlag := fs.String("storage", cfg.StorageRoot, "Package manager storage root.")
	registryFlag := fs.String("registry-url", cfg.RegistryURL, "Base URL of the remote registry.")
	noNetworkFlag := fs.Bool("no-network", cfg.NoNetwork, "Resolve against the local store only.")
	verboseFlag := fs.Bool("verbose", cfg.Verbose, "Debug-level, human-readable logging.")
	workersFlag := fs.Int("workers", cfg.Workers, "Executor worker pool size. 0 means runtime.NumCPU().")
	timeoutFlag := fs.Int("command-timeout-ms", cfg.CommandTimeoutMs, "Per-command timeout in milliseconds. 0 disables it.")
	maxArgvFlag := fs.Int("max-argv-bytes", cfg.MaxArgvBytes, "Response-file materialization threshold.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, true, nil
	}

	roots := make([]pkg.Unresolved, 0, fs.NArg())
	for _, arg := range fs.Args() {
		root, err := parseRoot(arg)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		roots = append(roots, root)
	}

	cfg.StorageRoot = *storageFlag
	cfg.RegistryURL = *registryFlag
	cfg.NoNetwork = *noNetworkFlag
	cfg.Verbose = *verboseFlag
	cfg.Workers = *workersFlag
	cfg.CommandTimeoutMs = *timeoutFlag
	cfg.MaxArgvBytes = *maxArgvFlag

	return &RunConfig{Config: cfg, Roots: roots}, false, nil
}

// parseRoot parses "path" or "path@range" into an Unresolved reference.
func parseRoot(arg string) (pkg.Unresolved, error) {
	path, rangeStr, hasRange := strings.Cut(arg, "@")
	rng := pkg.Any()
	if hasRange {
		var err error
		rng, err = pkg.ParseRange(rangeStr)
		if err != nil {
			return pkg.Unresolved{}, fmt.Errorf("sw: invalid range in %q: %w", arg, err)
		}
	}
	if path == "" {
		return pkg.Unresolved{}, fmt.Errorf("sw: empty package path in %q", arg)
	}
	return pkg.Unresolved{Path: pkg.NewPath(path), Range: rng}, nil
}
