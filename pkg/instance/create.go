package instance

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/hooks"
	"github.com/glorpus-work/lodestone/pkg/library"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// CreateInstance creates instances/<name> for opts.VersionID. Nothing is rolled
// back on failure; re-running a stage with RedoStage reuses the files already
// in place.
func (a *Assembler) CreateInstance(ctx context.Context, opts CreateOptions) error {
	if err := validateName(opts.Name); err != nil {
		return err
	}
	dir := a.InstanceDir(opts.Name)
	if err := makeDir(dir, errutils.ErrInstanceExistsWithName(opts.Name)); err != nil {
		return err
	}
	l, err := lock(dir)
	if err != nil {
		return err
	}
	defer release(l)

	logger.Info("Creating instance", logger.Fields{"name": opts.Name, "version": opts.VersionID})
	dotMinecraft := filepath.Join(dir, fsutil.DotMinecraftDirName)
	if err := fsutil.EnsureDir(dotMinecraft); err != nil {
		return errutils.FS("mkdir", dotMinecraft, err)
	}

	details, err := a.resolve(ctx, opts.VersionID, opts.Progress)
	if err != nil {
		return err
	}
	if err := details.Save(dir); err != nil {
		return errutils.Wrap(err, "saving version details")
	}

	if opts.DownloadAssets {
		if err := a.downloadAssets(ctx, details, dotMinecraft, opts.Progress); err != nil {
			return err
		}
	} else {
		null := filepath.Join(fsutil.AssetsDir(a.launcherDir), nullAssetsDir)
		if err := fsutil.EnsureDir(null); err != nil {
			return errutils.FS("mkdir", null, err)
		}
	}

	if err := a.downloadJar(ctx, details, dotMinecraft, opts.Progress); err != nil {
		return err
	}
	if err := a.downloadLibraries(ctx, details, dir, opts.Progress); err != nil {
		return err
	}

	cfg := model.NewInstanceConfig(a.defaultRAM(ctx), false)
	cfg.VersionInfo = &model.VersionInfo{IsSpecialLWJGL3: details.IsSpecialLWJGL3()}
	if err := cfg.Save(dir); err != nil {
		return errutils.Wrap(err, "saving instance config")
	}
	if err := writeLauncherVersion(dir); err != nil {
		return err
	}
	mods := filepath.Join(dotMinecraft, ModsDirName)
	if err := fsutil.EnsureDir(mods); err != nil {
		return errutils.FS("mkdir", mods, err)
	}

	modType := model.LoaderVanilla
	if opts.Loader != nil {
		if err := a.installLoader(ctx, dir, false, *opts.Loader, opts.Progress); err != nil {
			return err
		}
		if cfg, err := model.LoadInstanceConfig(dir); err == nil {
			modType = cfg.ModType
		}
	}

	if err := a.runHook(ctx, hooks.PostCreate, dir, details.GameID(), modType, false); err != nil {
		return err
	}
	logger.Success("Created instance", logger.Fields{"name": opts.Name, "version": details.ID})
	orchestrator.Finish(opts.Progress, PhaseDone, "Created instance "+opts.Name)
	return nil
}

// downloadJar fetches the client jar into .minecraft/versions/<id>/<id>.jar.
func (a *Assembler) downloadJar(ctx context.Context, details *model.VersionDetails, dotMinecraft string, progress chan<- orchestrator.Event) error {
	orchestrator.Send(progress, orchestrator.Event{Phase: PhaseJar, Message: "Downloading game jar"})
	client := details.Downloads.Client
	path := filepath.Join(dotMinecraft, versionsDirName, details.ID, details.ID+".jar")
	_, err := a.downloads.Fetch(ctx, download.Item{ID: details.ID + ".jar", URL: client.URL, Path: path, Checksum: client.SHA1})
	return errutils.Wrap(err, "downloading game jar")
}

func (a *Assembler) downloadLibraries(ctx context.Context, details *model.VersionDetails, dir string, progress chan<- orchestrator.Event) error {
	_, err := a.libraries.Download(ctx, details, library.Options{
		LibrariesDir: filepath.Join(dir, fsutil.LibrariesDirName),
		Progress:     progress,
		Concurrency:  a.concurrency,
	})
	return err
}

// downloadAssets fetches the asset index and every object it lists into the
// shared assets directory. Legacy indexes are also copied out by name: virtual
// ones under assets/virtual/<id>, map_to_resources ones into .minecraft/resources.
func (a *Assembler) downloadAssets(ctx context.Context, details *model.VersionDetails, dotMinecraft string, progress chan<- orchestrator.Event) error {
	assetsDir := fsutil.AssetsDir(a.launcherDir)
	info := details.AssetIndex
	indexPath := filepath.Join(assetsDir, indexesDirName, info.ID+".json")
	if _, err := a.downloads.Fetch(ctx, download.Item{ID: "asset-index", URL: info.URL, Path: indexPath, Checksum: info.SHA1}); err != nil {
		return errutils.Wrap(err, "downloading asset index")
	}
	var index model.AssetIndex
	if err := fsutil.ReadJSON(indexPath, &index); err != nil {
		return &errutils.ParseError{Source: indexPath, Err: err}
	}

	objectsDir := filepath.Join(assetsDir, objectsDirName)
	items := make([]download.Item, 0, len(index.Objects))
	for _, obj := range index.Objects {
		items = append(items, download.Item{
			ID:       obj.Hash,
			URL:      a.assetsURL + "/" + obj.ObjectPath(),
			Path:     filepath.Join(objectsDir, filepath.FromSlash(obj.ObjectPath())),
			Checksum: obj.Hash,
		})
	}
	logger.Info("Downloading assets", logger.Fields{"index": info.ID, "objects": len(items)})
	if _, err := a.downloads.FetchAll(ctx, items, download.Options{
		Concurrency: a.concurrency,
		Mode:        orchestrator.CollectAll,
		Progress:    progress,
		Phase:       PhaseAssets,
		Label:       "Downloaded asset",
	}); err != nil {
		return errutils.Wrap(err, "downloading assets")
	}

	var legacyDir string
	switch {
	case index.MapToResources:
		legacyDir = filepath.Join(dotMinecraft, resourcesDir)
	case index.Virtual:
		legacyDir = filepath.Join(assetsDir, virtualDirName, info.ID)
	default:
		return nil
	}
	for name, obj := range index.Objects {
		dst := filepath.Join(legacyDir, filepath.FromSlash(name))
		if !fsutil.IsWithin(legacyDir, dst) {
			return errutils.FS("copy", dst, errutils.ErrInvalidPath)
		}
		if fsutil.Exists(dst) {
			continue
		}
		if err := fsutil.EnsureFileDir(dst); err != nil {
			return errutils.FS("mkdir", filepath.Dir(dst), err)
		}
		src := filepath.Join(objectsDir, filepath.FromSlash(obj.ObjectPath()))
		if err := fsutil.Copy(src, dst); err != nil {
			return errutils.FS("copy", dst, err)
		}
	}
	return nil
}

func writeLauncherVersion(dir string) error {
	path := filepath.Join(dir, LauncherVersionFileName)
	return errutils.FS("write", path, os.WriteFile(path, []byte(LauncherVersion), fsutil.FileModeDefault))
}
