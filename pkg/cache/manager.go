// Package cache reports and reclaims the disk space held by shared launcher
// data: Java runtimes, game assets and per-instance libraries.
package cache

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/java"
)

// DefaultManager implements the Manager interface over a launcher directory.
type DefaultManager struct {
	directory string
}

var _ Manager = (*DefaultManager)(nil)

// NewManager creates a new cache manager for launcherDir.
func NewManager(launcherDir string) *DefaultManager {
	return &DefaultManager{
		directory: launcherDir,
	}
}

// Clean removes cached data according to the specified options.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	if cm.directory == "" {
		return nil, ErrCacheDirectory
	}
	if !options.Java && !options.Assets && !options.Incomplete {
		options.Java, options.Assets = true, true
	}
	result := &CleanResult{}

	if options.Java || options.Incomplete {
		freed, removed, err := cm.cleanJava(options.Incomplete && !options.Java)
		if err != nil {
			return nil, errutils.Wrapf(ErrCacheClean, "java installs: %v", err)
		}
		result.JavaFreed = freed
		result.Removed = removed
		result.TotalFreed += freed
	}

	if options.Assets {
		freed, err := cleanDirectory(fsutil.AssetsDir(cm.directory))
		if err != nil {
			return nil, errutils.Wrapf(ErrCacheClean, "assets: %v", err)
		}
		result.AssetsFreed = freed
		result.TotalFreed += freed
	}

	logger.Debug("cleaned launcher data", logger.Fields{
		"java_freed":   result.JavaFreed,
		"assets_freed": result.AssetsFreed,
		"removed":      len(result.Removed),
	})
	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	javaDir := fsutil.JavaInstallsDir(cm.directory)
	size, _, err := fsutil.DirSize(javaDir)
	if err != nil {
		return nil, errutils.Wrapf(ErrCacheInfo, "java installs: %v", err)
	}
	info.JavaSize = size
	installs, err := javaInstalls(javaDir)
	if err != nil {
		return nil, errutils.Wrapf(ErrCacheInfo, "java installs: %v", err)
	}
	info.JavaInstalls = len(installs)
	for _, dir := range installs {
		if isIncomplete(dir) {
			info.Incomplete++
		}
	}

	info.AssetsSize, info.AssetFiles, err = fsutil.DirSize(fsutil.AssetsDir(cm.directory))
	if err != nil {
		return nil, errutils.Wrapf(ErrCacheInfo, "assets: %v", err)
	}

	for _, parent := range []string{fsutil.InstancesDirName, fsutil.ServersDirName} {
		dirs, err := filepath.Glob(filepath.Join(cm.directory, parent, "*", fsutil.LibrariesDirName))
		if err != nil {
			return nil, errutils.Wrapf(ErrCacheInfo, "libraries: %v", err)
		}
		for _, dir := range dirs {
			size, files, err := fsutil.DirSize(dir)
			if err != nil {
				return nil, errutils.Wrapf(ErrCacheInfo, "libraries: %v", err)
			}
			info.LibrariesSize += size
			info.LibraryFiles += files
		}
	}

	info.TotalSize = info.JavaSize + info.AssetsSize + info.LibrariesSize
	return info, nil
}

// GetDirectory returns the launcher directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// SetDirectory sets the launcher directory path.
func (cm *DefaultManager) SetDirectory(dir string) error {
	if dir == "" {
		return ErrCacheDirectory
	}
	cm.directory = dir
	return nil
}

// cleanJava removes Java installs; with onlyIncomplete it keeps every install
// that no longer carries its install lock.
func (cm *DefaultManager) cleanJava(onlyIncomplete bool) (int64, []string, error) {
	installs, err := javaInstalls(fsutil.JavaInstallsDir(cm.directory))
	if err != nil {
		return 0, nil, err
	}
	var freed int64
	var removed []string
	for _, dir := range installs {
		if onlyIncomplete && !isIncomplete(dir) {
			continue
		}
		size, _, err := fsutil.DirSize(dir)
		if err != nil {
			return freed, removed, err
		}
		if err := os.RemoveAll(dir); err != nil {
			return freed, removed, errutils.FS("remove", dir, err)
		}
		freed += size
		removed = append(removed, filepath.Base(dir))
	}
	return freed, removed, nil
}

func javaInstalls(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func isIncomplete(installDir string) bool {
	return fsutil.Exists(filepath.Join(installDir, java.LockFileName))
}

// cleanDirectory removes a directory, recreates it empty and returns bytes freed.
func cleanDirectory(dir string) (int64, error) {
	if !fsutil.Exists(dir) {
		return 0, nil
	}
	size, _, err := fsutil.DirSize(dir)
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, errutils.FS("remove", dir, err)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeDefault); err != nil {
		return size, errutils.FS("mkdir", dir, err)
	}
	return size, nil
}
