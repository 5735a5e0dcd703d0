package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, 60*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 16, cfg.Settings.MaxConcurrentDownloads)
	assert.Equal(t, 64, cfg.Settings.JavaFileConcurrency)
	assert.Equal(t, fsutil.AppName, filepath.Base(cfg.Settings.LauncherDir))
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxConcurrentDownloads, cfg.Settings.MaxConcurrentDownloads)

	_, err = LoadConfig("")
	assert.ErrorIs(t, err, errutils.ErrEmptyConfigPath)
}

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), FileName)
	configContent := `settings:
  launcher_dir: /srv/lodestone
  http_timeout: 15s
  max_concurrent_downloads: 4
  log_level: debug
  log_format: pretty
hooks:
  post_create: hooks/create.tengo
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/srv/lodestone", cfg.Settings.LauncherDir)
	assert.Equal(t, 15*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 4, cfg.Settings.MaxConcurrentDownloads)
	assert.Equal(t, DefaultJavaFileConcurrency, cfg.Settings.JavaFileConcurrency)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "pretty", cfg.Settings.LogFormat)
	assert.Equal(t, "hooks/create.tengo", cfg.Hooks.PostCreate)
	assert.Equal(t, map[string]string{"post_create": "hooks/create.tengo", "post_loader": ""}, cfg.Hooks.Map())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings: [unclosed"))
	assert.ErrorIs(t, err, errutils.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  log_format: json\n"))
	assert.ErrorIs(t, err, errutils.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.UserAgent = "lodestone-test"
	cfg.Hooks.PostLoader = "/abs/loader.tengo"

	configPath := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, cfg.SaveConfig(configPath))
	assert.NoFileExists(t, configPath+".tmp")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.Equal(t, "lodestone-test", loaded.Settings.UserAgent)
	assert.Equal(t, "/abs/loader.tengo", loaded.Hooks.PostLoader)
	assert.Equal(t, cfg.Settings.LauncherDir, loaded.Settings.LauncherDir)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "uppercase level", mutate: func(c *Config) { c.Settings.LogLevel = "WARN" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Settings.HTTPTimeout = -time.Second }, wantErr: errutils.ErrHTTPTimeoutNegative},
		{name: "zero downloads", mutate: func(c *Config) { c.Settings.MaxConcurrentDownloads = 0 }, wantErr: errutils.ErrMaxConcurrentInvalid},
		{name: "zero java files", mutate: func(c *Config) { c.Settings.JavaFileConcurrency = 0 }, wantErr: errutils.ErrMaxConcurrentInvalid},
		{name: "bad level", mutate: func(c *Config) { c.Settings.LogLevel = "trace" }, wantErr: errutils.ErrInvalidLogLevel},
		{name: "bad format", mutate: func(c *Config) { c.Settings.LogFormat = "json" }, wantErr: errutils.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var nilConfig *Config
	assert.ErrorIs(t, nilConfig.Validate(), errutils.ErrConfigValidation)
}

func TestGetSetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("http_timeout", "90s"))
	require.NoError(t, cfg.SetValue("max_concurrent_downloads", "8"))
	require.NoError(t, cfg.SetValue("hooks.post_create", "create.tengo"))
	require.NoError(t, cfg.SetValue("log_format", "pretty"))

	v, err := cfg.GetValue("http_timeout")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", v)
	assert.Equal(t, 8, cfg.Settings.MaxConcurrentDownloads)
	assert.Equal(t, "create.tengo", cfg.Hooks.PostCreate)

	assert.Error(t, cfg.SetValue("java_file_concurrency", "many"))
	assert.Error(t, cfg.SetValue("http_timeout", "soon"))
	assert.ErrorIs(t, cfg.SetValue("color_output", "true"), errutils.ErrUnknownConfigKey)
	_, err = cfg.GetValue("color_output")
	assert.ErrorIs(t, err, errutils.ErrUnknownConfigKey)

	m := cfg.ToMap()
	assert.Len(t, m, len(Keys))
	assert.Equal(t, "pretty", m["log_format"])
	assert.Equal(t, "8", m["max_concurrent_downloads"])
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skip("no user config directory")
	}
	assert.Equal(t, FileName, filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}
