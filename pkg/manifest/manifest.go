// Package manifest resolves the list of installable game versions by merging a
// curated catalog of older versions with an up-to-date upstream catalog.
package manifest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

const (
	// CuratedURL hosts hand-fixed version JSONs for releases up to Boundary.
	CuratedURL = "https://mcphackers.org/BetterJSONs/version_manifest_v2.json"

	MojangURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"
	ARM64URL  = "https://raw.githubusercontent.com/theofficialgman/piston-meta-arm64/refs/heads/main/mc/game/version_manifest_v2.json"
	ARM32URL  = "https://raw.githubusercontent.com/theofficialgman/piston-meta-arm32/refs/heads/main/mc/game/version_manifest_v2.json"

	// Boundary is the newest id the curated catalog is trusted for.
	Boundary = "1.21.11"
)

// UpToDateURL returns the upstream catalog for a platform. Linux on ARM uses
// community forks that ship natives for those architectures.
func UpToDateURL(p platform.Platform) string {
	if p.OS == platform.OSLinux {
		switch p.Arch {
		case platform.ArchARM64:
			return ARM64URL
		case platform.ArchARM:
			return ARM32URL
		}
	}
	return MojangURL
}

// Resolver fetches and caches the merged manifest. The zero value is not usable;
// construct one with NewResolver.
type Resolver struct {
	client      http.Client
	curatedURL  string
	upToDateURL string
	boundary    string

	group  singleflight.Group
	mu     sync.RWMutex
	cached *model.Manifest
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithCuratedURL overrides the curated catalog location.
func WithCuratedURL(url string) Option {
	return func(r *Resolver) { r.curatedURL = url }
}

// WithUpToDateURL overrides the platform catalog location.
func WithUpToDateURL(url string) Option {
	return func(r *Resolver) { r.upToDateURL = url }
}

// WithBoundary overrides the splice boundary id.
func WithBoundary(id string) Option {
	return func(r *Resolver) { r.boundary = id }
}

// NewResolver creates a resolver for the given platform.
func NewResolver(client http.Client, p platform.Platform, opts ...Option) *Resolver {
	r := &Resolver{
		client:      client,
		curatedURL:  CuratedURL,
		upToDateURL: UpToDateURL(p),
		boundary:    Boundary,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the merged manifest, fetching it on first use. Concurrent
// callers share one fetch; failures are not cached.
func (r *Resolver) Resolve(ctx context.Context) (*model.Manifest, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := r.group.Do("manifest", func() (any, error) {
		r.mu.RLock()
		cached := r.cached
		r.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		m, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cached = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Manifest), nil
}

func (r *Resolver) load(ctx context.Context) (*model.Manifest, error) {
	var curated, upToDate model.Manifest

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errutils.Wrap(r.client.FetchJSON(gctx, r.curatedURL, &curated), "fetching curated manifest")
	})
	g.Go(func() error {
		return errutils.Wrap(r.client.FetchJSON(gctx, r.upToDateURL, &upToDate), "fetching version manifest")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := Splice(&upToDate, &curated, r.boundary)
	logger.Debug("resolved version manifest", logger.Fields{
		"versions": len(m.Versions),
		"latest":   m.Latest.Release,
	})
	return m, nil
}

// Splice merges two newest-first catalogs. Entries of upToDate newer than boundary
// come first, followed by curated entries from boundary downwards. A catalog that
// lacks boundary contributes nothing. Duplicate ids keep their first occurrence.
func Splice(upToDate, curated *model.Manifest, boundary string) *model.Manifest {
	out := &model.Manifest{Latest: upToDate.Latest}

	seen := make(map[string]struct{})
	add := func(vs []model.Version) {
		for _, v := range vs {
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			out.Versions = append(out.Versions, v)
		}
	}

	if i := indexOf(upToDate.Versions, boundary); i >= 0 {
		add(upToDate.Versions[:i])
	}
	if i := indexOf(curated.Versions, boundary); i >= 0 {
		add(curated.Versions[i:])
	}
	return out
}

func indexOf(vs []model.Version, id string) int {
	for i := range vs {
		if vs[i].ID == id {
			return i
		}
	}
	return -1
}

// Lookup resolves the manifest and finds id in it.
func (r *Resolver) Lookup(ctx context.Context, id string) (*model.Version, error) {
	m, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := m.Find(id)
	if !ok {
		return nil, errutils.ErrVersionNotFoundWithID(id)
	}
	return v, nil
}

// FetchDetails downloads the version JSON a manifest entry points at.
func (r *Resolver) FetchDetails(ctx context.Context, v *model.Version) (*model.VersionDetails, error) {
	var d model.VersionDetails
	if err := r.client.FetchJSON(ctx, v.URL, &d); err != nil {
		return nil, errutils.Wrapf(err, "fetching details for %s", v.ID)
	}
	d.Fix()
	return &d, nil
}
