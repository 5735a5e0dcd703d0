package forge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/java"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

const (
	NeoForgeVersionsURL = "https://maven.neoforged.net/api/maven/versions/releases/net/neoforged/neoforge"
	NeoForgeMavenURL    = "https://maven.neoforged.net/releases/net/neoforged/neoforge"

	neoForgeInstallerName = "installer.jar"
)

// serverLeftovers are produced by a server install and not used to launch.
var serverLeftovers = []string{
	DirName,
	neoForgeInstallerName + ".log",
	"run.bat",
	"run.sh",
	"user_jvm_args.txt",
}

// NeoForgeInstaller installs NeoForge.
type NeoForgeInstaller struct {
	base
}

var _ loader.Installer = (*NeoForgeInstaller)(nil)

// NewNeoForge creates a NeoForge installer.
func NewNeoForge(client http.Client, downloads download.Manager, runtimes java.Manager, p platform.Platform, opts Options) *NeoForgeInstaller {
	return &NeoForgeInstaller{base: newBase(client, downloads, runtimes, p, opts)}
}

// Kind implements loader.Installer.
func (i *NeoForgeInstaller) Kind() loader.Kind { return loader.KindNeoForge }

// Latest returns the newest NeoForge build for game.
func (i *NeoForgeInstaller) Latest(ctx context.Context, game string) (string, error) {
	var listing struct {
		Versions []string `json:"versions"`
	}
	if err := i.client.FetchJSON(ctx, i.opts.NeoForgeVersionsURL, &listing); err != nil {
		return "", errutils.Wrap(err, "fetching neoforge versions")
	}
	v, ok := PickNeoForge(listing.Versions, game)
	if !ok {
		return "", errutils.ErrNoLoaderVersionFor("NeoForge", game)
	}
	return v, nil
}

// Install implements loader.Installer. Servers keep only what the installer
// generated for launching; clients also mirror the profile libraries.
func (i *NeoForgeInstaller) Install(ctx context.Context, in *loader.Install, progress chan<- orchestrator.Event) error {
	if err := in.Enter(loader.StageResolveLoaderVersion, progress); err != nil {
		return err
	}
	details, err := in.LoadDetails()
	if err != nil {
		return err
	}
	if !details.IsAtOrAfter(model.ReleaseTimeNeoForge) {
		return errutils.ErrNeoForgeOutdatedMinecraft
	}
	if in.LoaderVersion == "" {
		if in.LoaderVersion, err = i.Latest(ctx, in.GameVersion); err != nil {
			return err
		}
	}
	logger.Info("Installing loader", logger.Fields{"loader": "NeoForge", "version": in.LoaderVersion, "game": in.GameVersion, "server": in.IsServer})

	forgeDir := filepath.Join(in.InstanceDir, DirName)
	runDir := forgeDir
	if in.IsServer {
		runDir = in.InstanceDir
	}

	if err := in.Enter(loader.StageFetchLoaderMetadata, progress); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/neoforge-%s-installer.jar", strings.TrimSuffix(i.opts.NeoForgeMavenURL, "/"), in.LoaderVersion, in.LoaderVersion)
	jar, err := i.downloads.Fetch(ctx, download.Item{ID: "neoforge-installer", URL: url, Path: filepath.Join(forgeDir, neoForgeInstallerName)})
	if err != nil {
		if errutils.IsNotFound(err) {
			return errutils.ErrNoLoaderVersionFor("NeoForge "+in.LoaderVersion, in.GameVersion)
		}
		return errutils.Wrap(err, "downloading neoforge installer")
	}
	if err := i.runInstaller(ctx, jar, runDir, in.IsServer, progress); err != nil {
		return err
	}

	if in.IsServer {
		if err := in.Enter(loader.StageAssembleLaunchArtifact, progress); err != nil {
			return err
		}
		for _, name := range serverLeftovers {
			removeQuietly(filepath.Join(in.InstanceDir, name))
		}
	} else {
		raw, profile, err := i.readProfile(ctx, jar)
		if err != nil {
			return err
		}
		if err := in.Enter(loader.StagePersistMetadataJSON, progress); err != nil {
			return err
		}
		if err := saveProfile(filepath.Join(forgeDir, DetailsFileName), raw); err != nil {
			return err
		}
		if err := in.Enter(loader.StageResolveLibraries, progress); err != nil {
			return err
		}
		files := selectLibraries(profile.Libraries, false, false)
		if err := i.mirrorLibraries(ctx, in, files, forgeDir, "../"+DirName+"/", nil, progress); err != nil {
			return err
		}
	}

	if err := in.Enter(loader.StagePersistInstanceLoaderConfig, progress); err != nil {
		return err
	}
	if err := loader.UpdateConfig(in.InstanceDir, model.LoaderNeoForge, &model.ModTypeInfo{Version: in.LoaderVersion}); err != nil {
		return err
	}
	return in.Enter(loader.StageDone, progress)
}
