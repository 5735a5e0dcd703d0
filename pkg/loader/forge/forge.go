// Package forge installs Forge and NeoForge. Both run the upstream installer
// headlessly through a small Java driver, then mirror the libraries its profile
// lists into the instance and record the launch classpath.
package forge

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/java"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

const (
	// DirName holds the installer, its libraries and the classpath files of a
	// client instance.
	DirName = "forge"
	// DetailsFileName is the installer's version profile saved under DirName.
	DetailsFileName = "details.json"
	// ServerDetailsFileName is the version profile of a server, saved in the
	// server directory.
	ServerDetailsFileName = "forge_details.json"

	PromotionsURL = "https://files.minecraftforge.net/net/minecraftforge/forge/promotions_slim.json"
	MavenURL      = "https://maven.minecraftforge.net/net/minecraftforge/forge"

	// installerRuntime runs every installer; old ones are happy on newer Java.
	installerRuntime = java.Java21

	versionJSON    = "version.json"
	installProfile = "install_profile.json"
)

// Options configure the Forge and NeoForge installers. Zero values use the
// public services.
type Options struct {
	PromotionsURL       string
	MavenURL            string
	NeoForgeVersionsURL string
	NeoForgeMavenURL    string
	Concurrency         int
}

func (o Options) withDefaults() Options {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&o.PromotionsURL, PromotionsURL)
	set(&o.MavenURL, MavenURL)
	set(&o.NeoForgeVersionsURL, NeoForgeVersionsURL)
	set(&o.NeoForgeMavenURL, NeoForgeMavenURL)
	return o
}

// Profile is the subset of an installer's version profile the installers use.
type Profile struct {
	ID        string          `json:"id"`
	MainClass string          `json:"mainClass"`
	Libraries []model.Library `json:"libraries"`
}

// base carries what both installers share.
type base struct {
	client    http.Client
	downloads download.Manager
	runtimes  java.Manager
	archives  *archive.Manager
	platform  platform.Platform
	opts      Options
}

func newBase(client http.Client, downloads download.Manager, runtimes java.Manager, p platform.Platform, opts Options) base {
	return base{
		client:    client,
		downloads: downloads,
		runtimes:  runtimes,
		archives:  archive.NewManager(),
		platform:  p,
		opts:      opts.withDefaults(),
	}
}

// runInstaller resolves the installer runtime and runs jar in dir.
func (b *base) runInstaller(ctx context.Context, jar, dir string, isServer bool, progress chan<- orchestrator.Event) error {
	javaBin, err := b.runtimes.GetBinary(ctx, installerRuntime, "java", progress)
	if err != nil {
		return errutils.Wrap(err, "preparing java for the loader installer")
	}
	return bootstrap{Java: javaBin, Dir: dir, Installer: jar, IsServer: isServer}.Run(ctx)
}

// readProfile extracts the version profile from an installer: version.json, or
// the versionInfo member of install_profile.json, or install_profile.json itself.
func (b *base) readProfile(ctx context.Context, jar string) ([]byte, *Profile, error) {
	raw, err := b.archives.ReadFile(ctx, jar, versionJSON)
	if errors.Is(err, fs.ErrNotExist) {
		raw, err = b.archives.ReadFile(ctx, jar, installProfile)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, errutils.ErrNoInstallJSON
		}
		if err == nil {
			if info := gjson.GetBytes(raw, "versionInfo"); info.IsObject() {
				raw = []byte(info.Raw)
			}
		}
	}
	if err != nil {
		return nil, nil, errutils.Wrap(err, "reading installer profile")
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil, &errutils.ParseError{Source: filepath.Base(jar), Err: err}
	}
	return raw, &p, nil
}

// mirrorLibraries downloads the profile libraries into dir/libraries and writes
// the classpath files beside them.
func (b *base) mirrorLibraries(ctx context.Context, in *loader.Install, files []libraryFile, dir, prefix string, head []string, progress chan<- orchestrator.Event) error {
	if err := in.Enter(loader.StageDownloadLibraries, progress); err != nil {
		return err
	}
	present, err := downloadLibraries(ctx, b.downloads, files, filepath.Join(dir, fsutil.LibrariesDirName), b.opts.Concurrency, progress)
	if err != nil {
		return err
	}
	if missing := len(files) - len(present); missing > 0 {
		logger.Warn("Classpath is missing libraries", logger.Fields{"missing": missing, "dir": dir})
	}
	return writeClasspath(dir, prefix, b.platform.ClasspathSeparator(), head, files, present)
}

func saveProfile(path string, raw []byte) error {
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return errutils.FS("write", path, fsutil.WriteFileAtomic(path, raw, fsutil.FileModeDefault))
}

// Installer installs Forge.
type Installer struct {
	base
}

var _ loader.Installer = (*Installer)(nil)

// New creates a Forge installer.
func New(client http.Client, downloads download.Manager, runtimes java.Manager, p platform.Platform, opts Options) *Installer {
	return &Installer{base: newBase(client, downloads, runtimes, p, opts)}
}

// Kind implements loader.Installer.
func (i *Installer) Kind() loader.Kind { return loader.KindForge }

// Install implements loader.Installer. Client files go to <instance>/forge and
// are referenced from .minecraft as ../forge; servers install in place.
func (i *Installer) Install(ctx context.Context, in *loader.Install, progress chan<- orchestrator.Event) error {
	if err := in.Enter(loader.StageResolveLoaderVersion, progress); err != nil {
		return err
	}
	details, err := in.LoadDetails()
	if err != nil {
		return err
	}
	if details.IsLegacy() && details.GameID() != "1.5.2" {
		return errutils.ErrLegacyForgeUnsupported
	}
	if in.LoaderVersion == "" {
		if in.LoaderVersion, err = i.Recommended(ctx, in.GameVersion); err != nil {
			return err
		}
	}
	versions, err := NewVersions(in.GameVersion, in.LoaderVersion)
	if err != nil {
		return err
	}
	in.LoaderVersion = versions.Forge
	logger.Info("Installing loader", logger.Fields{"loader": "Forge", "version": versions.Forge, "game": in.GameVersion, "server": in.IsServer})

	dir, prefix := filepath.Join(in.InstanceDir, DirName), "../"+DirName+"/"
	if in.IsServer {
		dir, prefix = in.InstanceDir, ""
	}

	if err := in.Enter(loader.StageFetchLoaderMetadata, progress); err != nil {
		return err
	}
	jar, err := i.fetchInstaller(ctx, versions, dir)
	if err != nil {
		return err
	}
	if versions.Major >= installerSinceMajor {
		if err := i.runInstaller(ctx, jar, dir, in.IsServer, progress); err != nil {
			return err
		}
	}
	raw, profile, err := i.readProfile(ctx, jar)
	if err != nil {
		return err
	}

	if err := in.Enter(loader.StagePersistMetadataJSON, progress); err != nil {
		return err
	}
	profilePath := filepath.Join(in.InstanceDir, DirName, DetailsFileName)
	if in.IsServer {
		profilePath = filepath.Join(in.InstanceDir, ServerDetailsFileName)
	}
	if err := saveProfile(profilePath, raw); err != nil {
		return err
	}

	if err := in.Enter(loader.StageResolveLibraries, progress); err != nil {
		return err
	}
	files := selectLibraries(profile.Libraries, versions.Major <= forgeLibraryUntil, in.IsServer)
	head := versions.classpathHead(filepath.Base(jar))
	if err := i.mirrorLibraries(ctx, in, files, dir, prefix, head, progress); err != nil {
		return err
	}

	if in.IsServer {
		if err := in.Enter(loader.StageAssembleLaunchArtifact, progress); err != nil {
			return err
		}
		if versions.Major >= installerSinceMajor {
			removeQuietly(jar + ".log")
		}
	}

	if err := in.Enter(loader.StagePersistInstanceLoaderConfig, progress); err != nil {
		return err
	}
	if err := loader.UpdateConfig(in.InstanceDir, model.LoaderForge, &model.ModTypeInfo{Version: versions.Forge}); err != nil {
		return err
	}
	return in.Enter(loader.StageDone, progress)
}

// fetchInstaller downloads the first candidate that exists into dir.
func (i *Installer) fetchInstaller(ctx context.Context, v Versions, dir string) (string, error) {
	for _, c := range v.InstallerCandidates(i.opts.MavenURL) {
		path, err := i.downloads.Fetch(ctx, download.Item{ID: c.Name, URL: c.URL, Path: filepath.Join(dir, c.Name)})
		if err == nil {
			return path, nil
		}
		if !errutils.IsNotFound(err) {
			return "", errutils.Wrap(err, "downloading forge installer")
		}
		logger.Debug("forge installer candidate missing", logger.Fields{"url": c.URL})
	}
	return "", errutils.ErrNoLoaderVersionFor("Forge "+v.Forge, v.Game)
}

func removeQuietly(path string) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("could not remove installer leftover", logger.Fields{"path": path, "error": err.Error()})
	}
}
