package swctx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/5l1v3r1/sw/internal/cmdgraph"
	"github.com/5l1v3r1/sw/internal/downloader"
	"github.com/5l1v3r1/sw/internal/driver"
	"github.com/5l1v3r1/sw/internal/executor"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/resolver"
	"github.com/5l1v3r1/sw/internal/swerr"
	"github.com/5l1v3r1/sw/internal/target"
)

// BuildOptions controls one end-to-end build invocation.
type BuildOptions struct {
	// QueryLocalDB and ForceServerQuery pass through to resolver.Options.
	QueryLocalDB     bool
	ForceServerQuery bool
	// ExplainOutdated passes through to executor.Options.
	ExplainOutdated bool
}

// Build drives the full pipeline: resolve roots to a closure, download
// anything missing, detect and load every installed package's build
// manifest, assemble the command graph, and run it to completion.
func (c *Context) Build(ctx context.Context, roots []pkg.Unresolved, opts BuildOptions) (executor.Summary, error) {
	ctx = c.WithLogger(ctx)
	logger := c.Logger

	var remote resolver.RemoteClient
	if c.Registry != nil {
		remote = c.Registry
	}
	result, err := resolver.New(c.DB, remote).Resolve(ctx, roots, resolver.Options{
		QueryLocalDB:     opts.QueryLocalDB,
		ForceServerQuery: opts.ForceServerQuery,
	})
	if err != nil {
		return executor.Summary{}, err
	}
	logger.Info("swctx: resolution complete", "resolved", len(result.Resolved), "downloads", len(result.Downloads))

	if err := unresolvedErr(result.Unresolved); err != nil {
		return executor.Summary{}, err
	}

	dl := downloader.New(c.Layout, c.Locks, c.DB, c.download)
	if err := dl.DownloadAll(ctx, result.Downloads); err != nil {
		return executor.Summary{}, err
	}

	whitelist := make(map[pkg.Id]bool, len(result.Resolved))
	var inputs []driver.Input
	for _, id := range result.Resolved {
		whitelist[id] = true
		sourceDir := c.Layout.SourceDir(id)
		found, err := c.Drivers.DetectInputs(ctx, sourceDir)
		if err != nil {
			return executor.Summary{}, err
		}
		inputs = append(inputs, found...)
	}

	entryPoints, err := c.Drivers.LoadInputsBatch(ctx, inputs)
	if err != nil {
		return executor.Summary{}, err
	}

	var targets []*target.Target
	for _, ep := range entryPoints {
		ts, err := ep(whitelist)
		if err != nil {
			return executor.Summary{}, err
		}
		targets = append(targets, ts...)
	}
	logger.Debug("swctx: targets loaded", "count", len(targets))

	maxArgv := c.Config.MaxArgvBytes
	if maxArgv <= 0 {
		maxArgv = cmdgraph.DefaultMaxArgvBytes
	}
	graph, err := cmdgraph.Build(ctx, targets, cmdgraph.Options{
		MaxArgvBytes:    maxArgv,
		ResponseFileDir: c.Layout.TmpDir(),
	})
	if err != nil {
		return executor.Summary{}, err
	}

	ex := executor.New(graph, c.DB, executor.NewOSRunner(), executor.Options{
		Workers:         c.Config.Workers,
		CommandTimeout:  time.Duration(c.Config.CommandTimeoutMs) * time.Millisecond,
		ExplainOutdated: opts.ExplainOutdated,
	})
	return ex.Run(ctx)
}

// unresolvedErr reports swerr.UnresolvableDependency if unresolved is
// non-empty, naming every entry that could not be satisfied. A successful
// resolver.Resolve call can still report unresolved entries (its third
// failure mode); Build is the point that turns that into a hard failure.
func unresolvedErr(unresolved []pkg.Unresolved) error {
	if len(unresolved) == 0 {
		return nil
	}
	names := make([]string, len(unresolved))
	for i, u := range unresolved {
		names[i] = u.String()
	}
	return swerr.New(swerr.UnresolvableDependency, strings.Join(names, ", "),
		fmt.Errorf("swctx: %d dependencies could not be resolved", len(unresolved)))
}
