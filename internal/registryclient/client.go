package registryclient

import (
	"context"
	"fmt"
	"time"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/swerr"
	"resty.dev/v3"
)

// Client talks to one remote registry endpoint.
type Client struct {
	http *resty.Client
}

// New builds a Client against baseURL, configured with a bounded
// exponential backoff: initial 500ms, factor 2, capped at 5 attempts
// total.
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(4). // 1 initial attempt + 4 retries = 5 attempts
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryConditions(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &Client{http: c}
}

// depEntry and resolvedEntry mirror the registry's JSON wire shapes.
type depEntry struct {
	Path  string `json:"path"`
	Range string `json:"range"`
}

type resolvedEntry struct {
	Path    string     `json:"path"`
	Version string     `json:"version"`
	Hash    string     `json:"hash"`
	URL     string     `json:"url"`
	Flags   int        `json:"flags"`
	Deps    []depEntry `json:"deps"`
}

type unresolvedEntry struct {
	Path  string `json:"path"`
	Range string `json:"range"`
}

type resolveRequest struct {
	Batch []depEntry `json:"batch"`
}

type resolveResponse struct {
	Resolved   []resolvedEntry   `json:"resolved"`
	Unresolved []unresolvedEntry `json:"unresolved"`
}

// ResolvedPackage is a single entry from a successful resolvePackages
// response, translated into the module's own types.
type ResolvedPackage struct {
	Id   pkg.Id
	Hash string
	URL  string
	Deps []pkg.Unresolved
}

// Result is the translated response of a resolvePackages call.
type Result struct {
	Resolved   []ResolvedPackage
	Unresolved []pkg.Unresolved
}

// ResolvePackages sends batch to the registry's resolvePackages endpoint and
// translates the response. Network failures surviving the retry budget
// surface as swerr.RegistryUnreachable.
func (c *Client) ResolvePackages(ctx context.Context, batch []pkg.Unresolved) (*Result, error) {
	req := resolveRequest{Batch: make([]depEntry, len(batch))}
	for i, u := range batch {
		req.Batch[i] = depEntry{Path: u.Path.String(), Range: u.Range.String()}
	}

	var resp resolveResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post("/resolvePackages")
	if err != nil {
		return nil, swerr.New(swerr.RegistryUnreachable, "resolvePackages", err)
	}
	if res.IsError() {
		return nil, swerr.New(swerr.RegistryUnreachable, "resolvePackages",
			fmt.Errorf("registry returned status %d", res.StatusCode()))
	}

	out := &Result{}
	for _, r := range resp.Resolved {
		v, err := pkg.ParseVersion(r.Version)
		if err != nil {
			return nil, swerr.New(swerr.RegistryUnreachable, r.Path, err)
		}
		deps := make([]pkg.Unresolved, 0, len(r.Deps))
		for _, d := range r.Deps {
			rng, err := pkg.ParseRange(d.Range)
			if err != nil {
				return nil, swerr.New(swerr.RegistryUnreachable, d.Path, err)
			}
			deps = append(deps, pkg.Unresolved{Path: pkg.NewPath(d.Path), Range: rng})
		}
		out.Resolved = append(out.Resolved, ResolvedPackage{
			Id:   pkg.Id{Path: pkg.NewPath(r.Path), Version: v},
			Hash: r.Hash,
			URL:  r.URL,
			Deps: deps,
		})
	}
	for _, u := range resp.Unresolved {
		rng, err := pkg.ParseRange(u.Range)
		if err != nil {
			continue
		}
		out.Unresolved = append(out.Unresolved, pkg.Unresolved{Path: pkg.NewPath(u.Path), Range: rng})
	}
	return out, nil
}

// Close releases the underlying HTTP client's idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}
