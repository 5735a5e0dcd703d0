// Package config provides the launcher settings. They are stored as YAML in the
// user's config directory; a missing file yields the defaults, and every value
// can be read or changed by key from the command line.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

// FileName is the settings file inside the config directory.
const FileName = "config.yaml"

// Config represents the launcher configuration.
type Config struct {
	Settings Settings  `yaml:"settings"`
	Hooks    HookPaths `yaml:"hooks,omitempty"`
}

// Settings represents general launcher settings.
type Settings struct {
	// LauncherDir holds instances, servers, java_installs and assets.
	LauncherDir string `yaml:"launcher_dir,omitempty"`

	// Network settings
	HTTPTimeout            time.Duration `yaml:"http_timeout"`
	MaxConcurrentDownloads int           `yaml:"max_concurrent_downloads"`
	JavaFileConcurrency    int           `yaml:"java_file_concurrency"`
	UserAgent              string        `yaml:"user_agent,omitempty"`

	// Output settings
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, pretty
}

// HookPaths points at the tengo scripts run after an install. Relative paths
// are resolved against the config directory.
type HookPaths struct {
	PostCreate string `yaml:"post_create,omitempty"`
	PostLoader string `yaml:"post_loader,omitempty"`
}

// Map returns the paths keyed by hook name.
func (h HookPaths) Map() map[string]string {
	return map[string]string{
		"post_create": h.PostCreate,
		"post_loader": h.PostLoader,
	}
}

// Default configuration values.
const (
	DefaultHTTPTimeout            = 60 * time.Second
	DefaultMaxConcurrentDownloads = 16
	DefaultJavaFileConcurrency    = 64
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	launcherDir, err := fsutil.GetDataDir()
	if err != nil {
		launcherDir = filepath.Join(".", fsutil.AppName)
	}
	return &Config{
		Settings: Settings{
			LauncherDir:            launcherDir,
			HTTPTimeout:            DefaultHTTPTimeout,
			MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
			JavaFileConcurrency:    DefaultJavaFileConcurrency,
			LogLevel:               DefaultLogLevel,
			LogFormat:              DefaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errutils.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errutils.FS("open", path, err)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig writes the configuration to a temporary file and renames it onto path.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errutils.ErrEmptyConfigPath
	}

	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault); err != nil {
		return errutils.Wrap(errutils.ErrConfigDirectory, err.Error())
	}

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errutils.Wrap(errutils.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errutils.Wrap(errutils.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errutils.Wrap(errutils.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errutils.ErrConfigValidation
	}
	s := c.Settings
	if s.HTTPTimeout < 0 {
		return errutils.ErrHTTPTimeoutNegative
	}
	if s.MaxConcurrentDownloads < 1 || s.JavaFileConcurrency < 1 {
		return errutils.ErrMaxConcurrentInvalid
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errutils.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "pretty": true}
	if !validFormats[s.LogFormat] {
		return errutils.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errutils.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(configDir, FileName), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.LauncherDir == "" {
		c.Settings.LauncherDir = defaults.Settings.LauncherDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrentDownloads == 0 {
		c.Settings.MaxConcurrentDownloads = defaults.Settings.MaxConcurrentDownloads
	}
	if c.Settings.JavaFileConcurrency == 0 {
		c.Settings.JavaFileConcurrency = defaults.Settings.JavaFileConcurrency
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
