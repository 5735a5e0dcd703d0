package instance

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/hooks"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// IsClassic reports whether id is a classic version, whose server ships as a zip.
func IsClassic(id string) bool {
	return strings.HasPrefix(id, "c0.")
}

// CreateServer creates servers/<name> holding server.jar, eula.txt and config.json.
func (a *Assembler) CreateServer(ctx context.Context, opts ServerOptions) error {
	if err := validateName(opts.Name); err != nil {
		return err
	}
	dir := a.ServerDir(opts.Name)
	if err := makeDir(dir, errutils.ErrServerExistsWithName(opts.Name)); err != nil {
		return err
	}
	l, err := lock(dir)
	if err != nil {
		return err
	}
	defer release(l)

	logger.Info("Creating server", logger.Fields{"name": opts.Name, "version": opts.VersionID})
	details, err := a.resolve(ctx, opts.VersionID, opts.Progress)
	if err != nil {
		return err
	}
	if details.Downloads.Server == nil {
		return errutils.ErrNoServerDownload
	}

	orchestrator.Send(opts.Progress, orchestrator.Event{Phase: PhaseJar, Message: "Downloading server jar"})
	classic := IsClassic(opts.VersionID)
	if classic {
		err = a.unpackClassicServer(ctx, details.Downloads.Server, dir)
	} else {
		_, err = a.downloads.Fetch(ctx, download.Item{
			ID:       ServerJarName,
			URL:      details.Downloads.Server.URL,
			Path:     filepath.Join(dir, ServerJarName),
			Checksum: details.Downloads.Server.SHA1,
		})
	}
	if err != nil {
		return errutils.Wrap(err, "downloading server jar")
	}

	if err := details.Save(dir); err != nil {
		return errutils.Wrap(err, "saving version details")
	}
	eula := filepath.Join(dir, EulaFileName)
	if err := os.WriteFile(eula, []byte("eula=true\n"), fsutil.FileModeDefault); err != nil {
		return errutils.FS("write", eula, err)
	}
	cfg := model.NewInstanceConfig(model.DefaultRAMInMB, true)
	cfg.IsClassicServer = classic
	cfg.VersionInfo = &model.VersionInfo{IsSpecialLWJGL3: details.IsSpecialLWJGL3()}
	if err := cfg.Save(dir); err != nil {
		return errutils.Wrap(err, "saving server config")
	}
	mods := filepath.Join(dir, ModsDirName)
	if err := fsutil.EnsureDir(mods); err != nil {
		return errutils.FS("mkdir", mods, err)
	}

	modType := model.LoaderVanilla
	if opts.Loader != nil {
		if err := a.installLoader(ctx, dir, true, *opts.Loader, opts.Progress); err != nil {
			return err
		}
		if cfg, err := model.LoadInstanceConfig(dir); err == nil {
			modType = cfg.ModType
		}
	}

	if err := a.runHook(ctx, hooks.PostCreate, dir, details.GameID(), modType, true); err != nil {
		return err
	}
	logger.Success("Created server", logger.Fields{"name": opts.Name, "version": details.ID})
	orchestrator.Finish(opts.Progress, PhaseDone, "Created server "+opts.Name)
	return nil
}

// unpackClassicServer extracts the classic server zip into dir and renames its
// jar to server.jar.
func (a *Assembler) unpackClassicServer(ctx context.Context, server *model.Download, dir string) error {
	zipPath, err := a.downloads.Fetch(ctx, download.Item{
		ID:       classicZipName,
		URL:      server.URL,
		Path:     filepath.Join(dir, classicZipName),
		Checksum: server.SHA1,
	})
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(zipPath) }()

	if err := a.archives.ExtractAll(ctx, zipPath, dir, archive.ExtractOptions{Format: archive.JarFormat}); err != nil {
		return err
	}
	from, to := filepath.Join(dir, classicJarName), filepath.Join(dir, ServerJarName)
	return errutils.FS("rename", from, os.Rename(from, to))
}
