package forge

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

// BootstrapFileName is the headless installer driver written beside the installer jar.
const BootstrapFileName = "ForgeInstaller.java"

//go:embed ForgeInstaller.java
var bootstrapSource []byte

// launcherProfileStubs must exist before a client install; the installer refuses
// to run into a directory without a launcher profile.
var launcherProfileStubs = []string{
	"launcher_profiles.json",
	"launcher_profiles_microsoft_store.json",
}

// bootstrap runs an installer jar through the single-file source launcher.
type bootstrap struct {
	Java      string
	Dir       string
	Installer string
	IsServer  bool
}

func (b bootstrap) mode() string {
	if b.IsServer {
		return "--installServer"
	}
	return "--installClient"
}

// Run writes the driver and executes it with b.Dir as the working directory.
// A failing installer yields an *errutils.SubprocessError holding its output.
func (b bootstrap) Run(ctx context.Context) error {
	src := filepath.Join(filepath.Dir(b.Installer), BootstrapFileName)
	if err := fsutil.WriteFileAtomic(src, bootstrapSource, fsutil.FileModeDefault); err != nil {
		return errutils.FS("write", src, err)
	}

	if !b.IsServer {
		if err := writeProfileStubs(b.Dir); err != nil {
			return err
		}
		defer removeProfileStubs(b.Dir)
	}

	cmd := exec.CommandContext(ctx, b.Java, "-cp", b.Installer, src, b.mode(), ".")
	cmd.Dir = b.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("Running loader installer", logger.Fields{
		"installer": filepath.Base(b.Installer),
		"mode":      strings.TrimPrefix(b.mode(), "--"),
	})
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &errutils.SubprocessError{
				Command:  filepath.Base(b.Java) + " " + BootstrapFileName,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return errutils.Wrap(err, "starting loader installer")
	}
	logger.Debug("loader installer finished", logger.Fields{"output_bytes": stdout.Len()})
	return nil
}

func writeProfileStubs(dir string) error {
	for _, name := range launcherProfileStubs {
		path := filepath.Join(dir, name)
		if fsutil.Exists(path) {
			continue
		}
		if err := fsutil.WriteFileAtomic(path, []byte(`{"profiles":{}}`), fsutil.FileModeDefault); err != nil {
			return errutils.FS("write", path, err)
		}
	}
	return nil
}

func removeProfileStubs(dir string) {
	for _, name := range launcherProfileStubs {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not remove launcher profile", logger.Fields{"file": name, "error": err.Error()})
		}
	}
}
