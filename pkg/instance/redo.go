package instance

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// RedoStage repeats one download stage of an existing client instance using its
// saved details.json. The manifest and version JSON stages cannot be redone.
func (a *Assembler) RedoStage(ctx context.Context, name string, stage Stage, progress chan<- orchestrator.Event) error {
	switch stage {
	case StageLibraries, StageAssets, StageJar:
	default:
		return errutils.Wrap(errutils.ErrStageNotRestageable, string(stage))
	}

	dir := a.InstanceDir(name)
	if !fsutil.Exists(dir) {
		return errutils.ErrInstanceNotFoundWithName(name)
	}
	l, err := lock(dir)
	if err != nil {
		return err
	}
	defer release(l)

	details, err := model.LoadVersionDetails(dir)
	if err != nil {
		return errutils.Wrap(err, "loading version details")
	}
	logger.Info("Redownloading part of instance", logger.Fields{"name": name, "stage": string(stage)})

	dotMinecraft := filepath.Join(dir, fsutil.DotMinecraftDirName)
	switch stage {
	case StageLibraries:
		libs := filepath.Join(dir, fsutil.LibrariesDirName)
		if err := os.RemoveAll(libs); err != nil {
			return errutils.FS("remove", libs, err)
		}
		err = a.downloadLibraries(ctx, details, dir, progress)
	case StageAssets:
		err = a.downloadAssets(ctx, details, dotMinecraft, progress)
	case StageJar:
		jar := filepath.Join(dotMinecraft, versionsDirName, details.ID, details.ID+".jar")
		if err := os.Remove(jar); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errutils.FS("remove", jar, err)
		}
		err = a.downloadJar(ctx, details, dotMinecraft, progress)
	}
	if err != nil {
		return err
	}
	logger.Success("Finished redownloading", logger.Fields{"name": name, "stage": string(stage)})
	orchestrator.Finish(progress, PhaseDone, "Redownloaded "+string(stage))
	return nil
}

// CheckLauncherVersion reports whether the instance in dir was created by this
// launcher version. A missing marker is reported as a mismatch.
func CheckLauncherVersion(dir string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, LauncherVersionFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errutils.FS("read", filepath.Join(dir, LauncherVersionFileName), err)
	}
	return string(bytes.TrimSpace(data)) == LauncherVersion, nil
}
