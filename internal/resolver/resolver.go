package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/5l1v3r1/sw/internal/ctxlog"
	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/registryclient"
	"github.com/5l1v3r1/sw/internal/swerr"
)

// LocalStore is the subset of the service DB the resolver's local pass
// needs. servicedb.DB satisfies it directly.
type LocalStore interface {
	InstalledVersions(path pkg.Path) []pkg.Id
}

// RemoteClient is the subset of registryclient.Client the remote pass needs.
type RemoteClient interface {
	ResolvePackages(ctx context.Context, batch []pkg.Unresolved) (*registryclient.Result, error)
}

// Options controls the resolver's two local/remote query toggles.
type Options struct {
	// QueryLocalDB enables the local pass. False skips straight to the
	// remote registry for every entry.
	QueryLocalDB bool
	// ForceServerQuery re-checks local-pass hits against the remote
	// registry to detect superseded identities.
	ForceServerQuery bool
}

// Result is the resolver's contract output: every reachable dependency's
// resolution, the downloads still needed, and anything that could not be
// satisfied.
type Result struct {
	Resolved   map[pkg.Path]pkg.Id
	Downloads  []pkg.DownloadDependency
	Unresolved []pkg.Unresolved
}

// Resolver runs the local-then-remote closure algorithm against one local
// store and one remote client.
type Resolver struct {
	local  LocalStore
	remote RemoteClient
}

// New builds a Resolver. remote may be nil; a Resolve call that then needs
// a remote pass fails with swerr.RegistryUnreachable.
func New(local LocalStore, remote RemoteClient) *Resolver {
	return &Resolver{local: local, remote: remote}
}

// Resolve expands roots to full closure.
func (r *Resolver) Resolve(ctx context.Context, roots []pkg.Unresolved, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("resolver: starting closure", "roots", len(roots))

	seen := make(map[pkg.Path]bool)
	rootPins := make(map[pkg.Path]pkg.Version)
	rootPaths := make(map[pkg.Path]bool, len(roots))

	worklist := make([]pkg.Unresolved, 0, len(roots))
	for _, u := range roots {
		worklist = append(worklist, u)
		rootPaths[u.Path] = true
		if v, ok := u.Range.Exact(); ok {
			if existing, already := rootPins[u.Path]; already && !existing.Equal(v) {
				return nil, swerr.New(swerr.ConflictingPins, u.Path.String(),
					fmt.Errorf("direct roots pin %s to both %s and %s", u.Path, existing, v))
			}
			rootPins[u.Path] = v
		}
	}

	resolved := make(map[pkg.Path]pkg.Id)
	downloadsByPath := make(map[pkg.Path]pkg.DownloadDependency)
	var unresolved []pkg.Unresolved

	pass := 0
	for len(worklist) > 0 {
		pass++
		batch := worklist
		worklist = nil

		var localHits []pkg.Id
		var remaining []pkg.Unresolved

		if opts.QueryLocalDB {
			for _, item := range batch {
				if seen[item.Path] {
					continue
				}
				if id, ok := r.bestInstalled(item.Path, item.Range); ok {
					localHits = append(localHits, id)
					if !opts.ForceServerQuery {
						seen[item.Path] = true
						resolved[item.Path] = id
						continue
					}
				}
				remaining = append(remaining, item)
			}
		} else {
			remaining = batch
		}

		logger.Debug("resolver: pass complete local lookup", "pass", pass, "local_hits", len(localHits), "remaining", len(remaining))

		// Drop entries whose path an earlier pass already resolved before
		// hitting the network. Repeats of one path within this batch are
		// all sent.
		toQuery := make([]pkg.Unresolved, 0, len(remaining))
		for _, item := range remaining {
			if seen[item.Path] {
				continue
			}
			toQuery = append(toQuery, item)
		}
		if opts.ForceServerQuery {
			for _, id := range localHits {
				already := false
				for _, q := range toQuery {
					if q.Path.Equal(id.Path) {
						already = true
						break
					}
				}
				if !already {
					toQuery = append(toQuery, pkg.Unresolved{Path: id.Path, Range: pkg.Any()})
				}
			}
		}

		if len(toQuery) == 0 {
			continue
		}
		if r.remote == nil {
			return nil, swerr.New(swerr.RegistryUnreachable, "", fmt.Errorf("resolver: no remote client configured"))
		}

		resp, err := r.remote.ResolvePackages(ctx, toQuery)
		if err != nil {
			return nil, err
		}

		// A literal root's own first-hop dependencies carry direct-root pins
		// too, not just the roots themselves: register those before
		// reconciling anything, so two roots pinning a shared dependency to
		// incompatible versions fail here rather than silently letting the
		// higher version win.
		for _, entry := range resp.Resolved {
			if !rootPaths[entry.Id.Path] {
				continue
			}
			for _, dep := range entry.Deps {
				v, ok := dep.Range.Exact()
				if !ok {
					continue
				}
				if existing, already := rootPins[dep.Path]; already && !existing.Equal(v) {
					return nil, swerr.New(swerr.ConflictingPins, dep.Path.String(),
						fmt.Errorf("root %s's dependency pins %s to both %s and %s", entry.Id.Path, dep.Path, existing, v))
				}
				rootPins[dep.Path] = v
			}
		}

		for _, entry := range resp.Resolved {
			seen[entry.Id.Path] = true
			replace, err := reconcile(resolved, rootPins, entry.Id)
			if err != nil {
				return nil, err
			}
			if !replace {
				continue
			}
			resolved[entry.Id.Path] = entry.Id
			downloadsByPath[entry.Id.Path] = pkg.DownloadDependency{
				Dependency: pkg.Dependency{Unresolved: pkg.Unresolved{Path: entry.Id.Path, Range: pkg.Any()}},
				Resolved: pkg.Package{
					Id:          entry.Id,
					Hash:        entry.Hash,
					ArchiveURL:  entry.URL,
					ArchiveHash: entry.Hash,
				},
			}
			for _, dep := range entry.Deps {
				if !seen[dep.Path] {
					worklist = append(worklist, dep)
				}
			}
		}
		for _, u := range resp.Unresolved {
			unresolved = append(unresolved, u)
		}
	}

	downloads := make([]pkg.DownloadDependency, 0, len(downloadsByPath))
	for _, d := range downloadsByPath {
		downloads = append(downloads, d)
	}
	sort.Slice(downloads, func(i, j int) bool {
		return downloads[i].Resolved.Id.String() < downloads[j].Resolved.Id.String()
	})
	sort.Slice(unresolved, func(i, j int) bool {
		return unresolved[i].String() < unresolved[j].String()
	})

	logger.Debug("resolver: closure complete", "resolved", len(resolved), "downloads", len(downloads), "unresolved", len(unresolved))
	return &Result{Resolved: resolved, Downloads: downloads, Unresolved: unresolved}, nil
}

// bestInstalled returns the highest installed version of path that
// satisfies rng.
func (r *Resolver) bestInstalled(path pkg.Path, rng pkg.Range) (pkg.Id, bool) {
	candidates := r.local.InstalledVersions(path)
	var best pkg.Id
	found := false
	for _, id := range candidates {
		if !rng.Satisfies(id.Version) {
			continue
		}
		if !found || best.Version.Less(id.Version) {
			best = id
			found = true
		}
	}
	return best, found
}

// reconcile reports whether candidate should replace whatever is already
// recorded for its path, or an error if two conflicting direct-root pins
// name the same path.
func reconcile(resolved map[pkg.Path]pkg.Id, rootPins map[pkg.Path]pkg.Version, candidate pkg.Id) (bool, error) {
	existing, hasExisting := resolved[candidate.Path]

	if pin, isPinned := rootPins[candidate.Path]; isPinned {
		if hasExisting && !existing.Version.Equal(pin) && !existing.Version.Equal(candidate.Version) {
			return false, swerr.New(swerr.ConflictingPins, candidate.Path.String(),
				fmt.Errorf("conflicting root pins for %s", candidate.Path))
		}
		return candidate.Version.Equal(pin), nil
	}

	if !hasExisting {
		return true, nil
	}
	if existing.Version.Equal(candidate.Version) {
		return false, nil
	}
	// Neither side is a root pin: the higher version wins.
	return existing.Version.Less(candidate.Version), nil
}
