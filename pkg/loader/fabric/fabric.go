// Package fabric installs Fabric and Quilt, together with the community backends
// that carry them to versions the official services do not cover.
package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/library"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/modindex"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// ProfileFileName is the loader profile saved into the instance.
	ProfileFileName = "fabric.json"

	listAttempts      = 5
	listCacheSize     = 64
	defaultRetryPause = 500 * time.Millisecond
)

// Profile is the subset of a loader launch profile the installer needs.
type Profile struct {
	ID              string          `json:"id"`
	MainClass       json.RawMessage `json:"mainClass"`
	MainClassServer string          `json:"mainClassServer,omitempty"`
	Libraries       []model.Library `json:"libraries"`
}

// LaunchClass returns mainClassServer for servers when present, else mainClass.
// Older profiles carry mainClass as an object with client and server members.
func (p *Profile) LaunchClass(isServer bool) string {
	if isServer && p.MainClassServer != "" {
		return p.MainClassServer
	}
	var s string
	if err := json.Unmarshal(p.MainClass, &s); err == nil {
		return s
	}
	var sides struct {
		Client string `json:"client"`
		Server string `json:"server"`
	}
	if err := json.Unmarshal(p.MainClass, &sides); err == nil {
		if isServer && sides.Server != "" {
			return sides.Server
		}
		return sides.Client
	}
	return ""
}

type listKey struct {
	backend  string
	game     string
	isServer bool
}

// Options configure an Installer. Zero values use the public services.
type Options struct {
	FabricURL       string
	QuiltURL        string
	LegacyFabricURL string
	BabricURL       string
	OrnitheURL      string
	CursedCommits   string
	Concurrency     int
	RetryPause      time.Duration
}

// Installer installs one of the two metadata-driven loader kinds.
type Installer struct {
	kind       loader.Kind
	backends   map[string]Backend
	libraries  *library.Resolver
	archives   *archive.Manager
	listings   *lru.Cache[listKey, []string]
	opts       Options
	retryPause time.Duration
}

var _ loader.Installer = (*Installer)(nil)

// New creates an installer for kind, which must be loader.KindFabric or loader.KindQuilt.
func New(kind loader.Kind, client http.Client, downloads download.Manager, p platform.Platform, opts Options) (*Installer, error) {
	if kind != loader.KindFabric && kind != loader.KindQuilt {
		return nil, fmt.Errorf("%w: %s is not a fabric-family loader", errutils.ErrUnknownLoader, kind)
	}
	withDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	listings, err := lru.New[listKey, []string](listCacheSize)
	if err != nil {
		return nil, errutils.Wrap(err, "creating listing cache")
	}

	i := &Installer{
		kind:       kind,
		backends:   make(map[string]Backend),
		libraries:  library.NewResolver(downloads, p),
		archives:   archive.NewManager(),
		listings:   listings,
		opts:       opts,
		retryPause: opts.RetryPause,
	}
	if i.retryPause <= 0 {
		i.retryPause = defaultRetryPause
	}

	ornithe := withDefault(opts.OrnitheURL, OrnitheMetaURL)
	for _, b := range []Backend{
		NewMetaBackend(BackendFabric, withDefault(opts.FabricURL, FabricMetaURL), client),
		NewMetaBackend(BackendQuilt, withDefault(opts.QuiltURL, QuiltMetaURL), client),
		NewMetaBackend(BackendLegacyFabric, withDefault(opts.LegacyFabricURL, LegacyFabricMetaURL), client),
		NewMetaBackend(BackendBabric, withDefault(opts.BabricURL, BabricMetaURL), client),
		NewOrnitheBackend(BackendOrnitheFabric, "fabric", ornithe, client),
		NewOrnitheBackend(BackendOrnitheQuilt, "quilt", ornithe, client),
		NewCursedLegacyBackend(withDefault(opts.CursedCommits, CursedLegacyCommitsURL), client),
	} {
		i.backends[b.Name()] = b
	}
	return i, nil
}

// Kind implements loader.Installer.
func (i *Installer) Kind() loader.Kind { return i.kind }

// Backend returns the backend registered under name.
func (i *Installer) Backend(name string) (Backend, error) {
	b, ok := i.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: backend %q", errutils.ErrUnknownLoader, name)
	}
	return b, nil
}

// Install runs the fabric state machine against in.InstanceDir.
func (i *Installer) Install(ctx context.Context, in *loader.Install, progress chan<- orchestrator.Event) error {
	if err := in.Enter(loader.StageResolveLoaderVersion, progress); err != nil {
		return err
	}
	details, err := in.LoadDetails()
	if err != nil {
		return err
	}
	backend, err := i.resolve(ctx, in, details)
	if err != nil {
		return err
	}
	logger.Info("Installing loader", logger.Fields{
		"backend": DisplayName(backend.Name()),
		"version": in.LoaderVersion,
		"game":    in.GameVersion,
		"server":  in.IsServer,
	})

	if err := in.Enter(loader.StageFetchLoaderMetadata, progress); err != nil {
		return err
	}
	raw, err := backend.FetchProfile(ctx, in.GameVersion, in.LoaderVersion, in.IsServer)
	if err != nil {
		return errutils.Wrap(err, "fetching loader profile")
	}
	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return &errutils.ParseError{Source: ProfileFileName, Err: err}
	}

	if err := in.Enter(loader.StagePersistMetadataJSON, progress); err != nil {
		return err
	}
	profilePath := filepath.Join(in.InstanceDir, ProfileFileName)
	if err := fsutil.WriteFileAtomic(profilePath, raw, fsutil.FileModeDefault); err != nil {
		return errutils.FS("write", profilePath, err)
	}

	if err := in.Enter(loader.StageResolveLibraries, progress); err != nil {
		return err
	}
	libs := downloadable(profile.Libraries)

	if err := in.Enter(loader.StageDownloadLibraries, progress); err != nil {
		return err
	}
	result, err := i.libraries.DownloadLibraries(ctx, libs, library.Options{
		LibrariesDir: in.LibrariesDir(),
		Progress:     progress,
		Concurrency:  i.opts.Concurrency,
		SkipLWJGL2:   details.IsAtOrBefore(model.ReleaseTime1_12_2),
	})
	if err != nil {
		return err
	}

	if in.IsServer {
		if err := in.Enter(loader.StageAssembleLaunchArtifact, progress); err != nil {
			return err
		}
		jar := ServerJar{
			Path:      filepath.Join(in.InstanceDir, ServerJarName),
			BaseDir:   in.InstanceDir,
			Backend:   backend.Name(),
			Loader:    in.LoaderVersion,
			MainClass: profile.LaunchClass(true),
			Libraries: result.Paths,
			Shaded:    ShouldShade(backend.Name(), in.LoaderVersion),
		}
		if err := jar.Write(ctx, i.archives); err != nil {
			return errutils.Wrap(err, "assembling server launch jar")
		}
	}

	if err := in.Enter(loader.StagePersistInstanceLoaderConfig, progress); err != nil {
		return err
	}
	if err := loader.UpdateConfig(in.InstanceDir, i.modType(backend.Name()), modTypeInfo(backend.Name(), in.LoaderVersion)); err != nil {
		return err
	}
	if _, err := modindex.Load(in.DotMinecraft(), in.IsServer); err != nil {
		return errutils.Wrap(err, "migrating mod index")
	}

	return in.Enter(loader.StageDone, progress)
}

func (i *Installer) modType(backend string) model.Loader {
	if IsQuiltBackend(backend) {
		return model.LoaderQuilt
	}
	return model.LoaderFabric
}

func modTypeInfo(backend, version string) *model.ModTypeInfo {
	info := &model.ModTypeInfo{Version: version}
	if backend != BackendFabric && backend != BackendQuilt {
		info.BackendImplementation = DisplayName(backend)
	}
	return info
}

// downloadable drops entries that only name a coordinate with nowhere to fetch it from.
func downloadable(libs []model.Library) []model.Library {
	out := make([]model.Library, 0, len(libs))
	for _, lib := range libs {
		if lib.URL == "" && lib.Downloads == nil {
			logger.Debug("skipping library", logger.Fields{"library": lib.Name, "reason": "no url"})
			continue
		}
		out = append(out, lib)
	}
	return out
}

// resolve picks the backend and loader version, honoring explicit choices in in.
func (i *Installer) resolve(ctx context.Context, in *loader.Install, details *model.VersionDetails) (Backend, error) {
	if in.Backend != "" {
		backend, err := i.Backend(in.Backend)
		if err != nil {
			return nil, err
		}
		if in.LoaderVersion == "" {
			versions, err := i.ListVersions(ctx, backend, in.GameVersion, in.IsServer)
			if err != nil {
				return nil, err
			}
			if len(versions) == 0 {
				return nil, errutils.ErrNoLoaderVersionFor(DisplayName(backend.Name()), in.GameVersion)
			}
			in.LoaderVersion = versions[0]
		}
		return backend, nil
	}

	backend, versions, err := i.Select(ctx, details, in.IsServer)
	if err != nil {
		return nil, err
	}
	in.Backend = backend.Name()
	if in.LoaderVersion == "" {
		in.LoaderVersion = versions[0]
	}
	return backend, nil
}

// Select walks the backend preference chain for details and returns the first
// backend with a non-empty listing.
func (i *Installer) Select(ctx context.Context, details *model.VersionDetails, isServer bool) (Backend, []string, error) {
	game := details.GameID()
	official := details.IsAtOrAfter(model.ReleaseTimeOfficialFabric)

	var chain []string
	if i.kind == loader.KindQuilt {
		if official {
			chain = append(chain, BackendQuilt)
		}
		chain = append(chain, BackendOrnitheQuilt)
	} else {
		if official {
			chain = append(chain, BackendFabric)
		}
		if game == CursedLegacyGame {
			chain = append(chain, BackendBabric)
		} else {
			chain = append(chain, BackendLegacyFabric, BackendOrnitheFabric)
		}
	}

	for _, name := range chain {
		backend, err := i.Backend(name)
		if err != nil {
			return nil, nil, err
		}
		versions, err := i.ListVersions(ctx, backend, game, isServer)
		if err != nil {
			return nil, nil, err
		}
		if len(versions) > 0 {
			return backend, versions, nil
		}
		logger.Debug("no loader versions", logger.Fields{"backend": name, "game": game})
	}
	return nil, nil, errutils.ErrNoLoaderVersionFor(string(i.kind), game)
}

// ListVersions returns the cached listing of backend for game, fetching it with
// retries on a miss. A 404 is an empty listing.
func (i *Installer) ListVersions(ctx context.Context, backend Backend, game string, isServer bool) ([]string, error) {
	key := listKey{backend: backend.Name(), game: game, isServer: isServer}
	if versions, ok := i.listings.Get(key); ok {
		return versions, nil
	}

	var lastErr error
	for attempt := 1; attempt <= listAttempts; attempt++ {
		versions, err := backend.ListLoaderVersions(ctx, game, isServer)
		if err == nil {
			i.listings.Add(key, versions)
			return versions, nil
		}
		if errutils.IsNotFound(err) {
			i.listings.Add(key, nil)
			return nil, nil
		}
		if !errors.Is(err, errutils.ErrTransport) {
			return nil, errutils.Wrapf(err, "listing %s loaders", DisplayName(backend.Name()))
		}
		lastErr = err
		logger.Warn("loader listing failed, retrying", logger.Fields{
			"backend": backend.Name(),
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < listAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(i.retryPause):
			}
		}
	}
	return nil, errutils.Wrapf(lastErr, "listing %s loaders", DisplayName(backend.Name()))
}
