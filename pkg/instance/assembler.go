// Package instance creates client instances and servers under the launcher
// directory. It resolves the version, downloads the jar, libraries and assets,
// writes the per-instance configuration and hands over to a mod loader
// installer when one is requested.
package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/hooks"
	"github.com/glorpus-work/lodestone/pkg/library"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/lockfile"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

// LauncherVersion is written to launcher_version.txt of new instances.
var LauncherVersion = "0.1.0"

const (
	// LauncherVersionFileName marks which launcher version created an instance.
	LauncherVersionFileName = "launcher_version.txt"

	// AssetsURL serves asset objects by hash.
	AssetsURL = "https://resources.download.minecraft.net"

	ModsDirName     = "mods"
	ServerJarName   = "server.jar"
	EulaFileName    = "eula.txt"
	classicJarName  = "minecraft-server.jar"
	classicZipName  = "server.zip"
	nullAssetsDir   = "null"
	indexesDirName  = "indexes"
	objectsDirName  = "objects"
	virtualDirName  = "virtual"
	resourcesDir    = "resources"
	versionsDirName = "versions"
)

// Progress phases.
const (
	PhaseManifest = "manifest"
	PhaseDetails  = "details"
	PhaseAssets   = "assets"
	PhaseJar      = "jar"
	PhaseDone     = "done"
)

// Options configure an Assembler.
type Options struct {
	LauncherDir string
	Platform    platform.Platform
	// Concurrency bounds library and asset downloads.
	Concurrency int
	AssetsURL   string
}

// Assembler creates and repairs instances and servers.
type Assembler struct {
	versions    VersionSource
	downloads   download.Manager
	libraries   *library.Resolver
	archives    *archive.Manager
	loaders     *loader.Registry
	hooks       hooks.HookManager
	launcherDir string
	concurrency int
	assetsURL   string

	totalMemory func(context.Context) (uint64, error)
}

// New creates an assembler. loaders and hookManager may be nil when no loader
// installs or hooks are wanted.
func New(versions VersionSource, downloads download.Manager, loaders *loader.Registry, hookManager hooks.HookManager, opts Options) *Assembler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = orchestrator.DefaultLimit
	}
	if opts.AssetsURL == "" {
		opts.AssetsURL = AssetsURL
	}
	return &Assembler{
		versions:    versions,
		downloads:   downloads,
		libraries:   library.NewResolver(downloads, opts.Platform),
		archives:    archive.NewManager(),
		loaders:     loaders,
		hooks:       hookManager,
		launcherDir: opts.LauncherDir,
		concurrency: opts.Concurrency,
		assetsURL:   strings.TrimSuffix(opts.AssetsURL, "/"),
		totalMemory: totalMemory,
	}
}

// InstanceDir returns the directory of the named client instance.
func (a *Assembler) InstanceDir(name string) string {
	return fsutil.InstanceDir(a.launcherDir, name)
}

// ServerDir returns the directory of the named server.
func (a *Assembler) ServerDir(name string) string {
	return fsutil.ServerDir(a.launcherDir, name)
}

// validateName rejects names that are not a single path element.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("instance name %q: %w", name, errutils.ErrInvalidPath)
	}
	return nil
}

// makeDir creates dir, failing with exists when it is already there.
func makeDir(dir string, exists error) error {
	if err := fsutil.EnsureDir(filepath.Dir(dir)); err != nil {
		return errutils.FS("mkdir", filepath.Dir(dir), err)
	}
	if err := os.Mkdir(dir, fsutil.DirModeDefault); err != nil {
		if errors.Is(err, os.ErrExist) {
			return exists
		}
		return errutils.FS("mkdir", dir, err)
	}
	return nil
}

// lock takes the install lock of dir.
func lock(dir string) (*lockfile.Lock, error) {
	l, err := lockfile.Acquire(lockfile.For(dir))
	if errors.Is(err, lockfile.ErrAlreadyLocked) {
		return nil, errutils.Wrap(errutils.ErrInstanceLocked, filepath.Base(dir))
	}
	return l, err
}

func release(l *lockfile.Lock) {
	if err := l.Release(); err != nil {
		logger.Warn("could not release instance lock", logger.Fields{"path": l.Path(), "error": err.Error()})
	}
}

// resolve looks up id in the manifest and fetches its version JSON.
func (a *Assembler) resolve(ctx context.Context, id string, progress chan<- orchestrator.Event) (*model.VersionDetails, error) {
	orchestrator.Send(progress, orchestrator.Event{Phase: PhaseManifest, Message: "Downloading manifest"})
	v, err := a.versions.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	orchestrator.Send(progress, orchestrator.Event{Phase: PhaseDetails, Message: "Downloading version JSON"})
	return a.versions.FetchDetails(ctx, v)
}

// installLoader runs the requested loader installer and then the post_loader hook.
func (a *Assembler) installLoader(ctx context.Context, dir string, isServer bool, req LoaderRequest, progress chan<- orchestrator.Event) error {
	if a.loaders == nil {
		return errutils.Wrap(errutils.ErrUnknownLoader, req.Kind)
	}
	kind, err := loader.ParseKind(req.Kind)
	if err != nil {
		return err
	}
	in := &loader.Install{
		Kind:          kind,
		Backend:       req.Backend,
		LoaderVersion: req.Version,
		InstanceDir:   dir,
		IsServer:      isServer,
	}
	if err := a.loaders.Install(ctx, in, progress); err != nil {
		return err
	}
	return a.runHook(ctx, hooks.PostLoader, dir, in.GameVersion, kind.ModType(), isServer)
}

// InstallLoader installs a loader into an existing instance or server.
func (a *Assembler) InstallLoader(ctx context.Context, opts LoaderOptions) error {
	dir := a.InstanceDir(opts.Name)
	if opts.IsServer {
		dir = a.ServerDir(opts.Name)
	}
	if !fsutil.Exists(dir) {
		return errutils.ErrInstanceNotFoundWithName(opts.Name)
	}
	l, err := lock(dir)
	if err != nil {
		return err
	}
	defer release(l)

	if err := a.installLoader(ctx, dir, opts.IsServer, opts.LoaderRequest, opts.Progress); err != nil {
		return err
	}
	orchestrator.Finish(opts.Progress, PhaseDone, "Installed loader")
	return nil
}

func (a *Assembler) runHook(ctx context.Context, hookType hooks.HookType, dir, version string, modType model.Loader, isServer bool) error {
	if a.hooks == nil {
		return nil
	}
	return a.hooks.Execute(ctx, hookType, hooks.HookContext{
		InstanceDir: dir,
		Version:     version,
		Loader:      string(modType),
		IsServer:    isServer,
	})
}
