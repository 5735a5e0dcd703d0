package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the name of the application used in paths
	AppName = "lodestone"

	InstancesDirName    = "instances"
	ServersDirName      = "servers"
	JavaInstallsDirName = "java_installs"
	AssetsDirName       = "assets"
	LibrariesDirName    = "libraries"
	DotMinecraftDirName = ".minecraft"
)

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/lodestone/
// On macOS: ~/Library/Caches/lodestone/
// On Windows: %LOCALAPPDATA%\lodestone\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the directory holding config.yaml.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// getAppDataDir returns the platform-specific base data directory
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func getAppDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", errors.New("LOCALAPPDATA environment variable not set")
		}
		return localAppData, nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return xdgDataHome, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// GetDataDir returns the default launcher directory.
func GetDataDir() (string, error) {
	baseDir, err := getAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, AppName), nil
}

// InstanceDir returns <launcherDir>/instances/<name>.
func InstanceDir(launcherDir, name string) string {
	return filepath.Join(launcherDir, InstancesDirName, name)
}

// ServerDir returns <launcherDir>/servers/<name>.
func ServerDir(launcherDir, name string) string {
	return filepath.Join(launcherDir, ServersDirName, name)
}

// JavaInstallsDir returns <launcherDir>/java_installs.
func JavaInstallsDir(launcherDir string) string {
	return filepath.Join(launcherDir, JavaInstallsDirName)
}

// AssetsDir returns <launcherDir>/assets.
func AssetsDir(launcherDir string) string {
	return filepath.Join(launcherDir, AssetsDirName)
}

// EnsureDirs creates the top-level launcher directories if they don't exist.
func EnsureDirs(launcherDir string) error {
	dirs := []string{
		filepath.Join(launcherDir, InstancesDirName),
		filepath.Join(launcherDir, ServersDirName),
		JavaInstallsDir(launcherDir),
		AssetsDir(launcherDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, DirModeDefault); err != nil {
			return err
		}
	}
	return nil
}
