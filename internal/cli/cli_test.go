package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/config"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/hooks"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// setupConfig writes a config with a temporary launcher directory and points
// the package at it.
func setupConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	launcherDir := filepath.Join(dir, "launcher")
	cfgPath := filepath.Join(dir, "config.yaml")

	cfg := config.DefaultConfig()
	cfg.Settings.LauncherDir = launcherDir
	require.NoError(t, cfg.SaveConfig(cfgPath))

	verbose, noProgress := false, true
	ConfigPath, Verbose, NoProgress = &cfgPath, &verbose, &noProgress
	t.Cleanup(func() {
		ConfigPath, Verbose, NoProgress = nil, nil, nil
		logger.UnsetTestOutput()
	})
	return cfgPath, launcherDir
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	cfgPath, launcherDir := setupConfig(t)

	_, err := execute(t, NewConfigCmd(), "set", "max_concurrent_downloads", "4")
	require.NoError(t, err)

	out, err := execute(t, NewConfigCmd(), "get", "max_concurrent_downloads")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Settings.MaxConcurrentDownloads)

	out, err = execute(t, NewConfigCmd(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "launcher_dir")
	assert.Contains(t, out, launcherDir)
	assert.Contains(t, out, "hooks.post_loader")

	_, err = execute(t, NewConfigCmd(), "set", "log_level", "loud")
	assert.ErrorIs(t, err, errutils.ErrInvalidLogLevel)

	_, err = execute(t, NewConfigCmd(), "get", "nope")
	assert.ErrorIs(t, err, errutils.ErrUnknownConfigKey)
}

func TestConfigInit(t *testing.T) {
	cfgPath, _ := setupConfig(t)

	_, err := execute(t, NewConfigCmd(), "init")
	assert.ErrorIs(t, err, errutils.ErrConfigFileExists)

	_, err = execute(t, NewConfigCmd(), "init", "--force")
	require.NoError(t, err)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxConcurrentDownloads, cfg.Settings.MaxConcurrentDownloads)
}

func TestCacheCommands(t *testing.T) {
	_, launcherDir := setupConfig(t)

	out, err := execute(t, NewCacheCmd(), "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache Information:")
	assert.Contains(t, out, launcherDir)

	out, err = execute(t, NewCacheCmd(), "dir")
	require.NoError(t, err)
	assert.Equal(t, launcherDir+"\n", out)

	out, err = execute(t, NewCacheCmd(), "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "No files were removed")
}

func TestHookTemplateCmd(t *testing.T) {
	out, err := execute(t, NewHookCmd(), "template", "post_create")
	require.NoError(t, err)
	assert.Contains(t, out, "instance_dir")

	_, err = execute(t, NewHookCmd(), "template", "pre_launch")
	assert.ErrorIs(t, err, hooks.ErrHookLoad)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, NewVersionCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "lodestone version")
	assert.Contains(t, out, "Git commit:")
}

func TestRedoRejectsUnknownStage(t *testing.T) {
	setupConfig(t)

	_, err := execute(t, NewRedoCmd(), "survival", "natives")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestModsFix(t *testing.T) {
	_, launcherDir := setupConfig(t)

	dotMinecraft := filepath.Join(launcherDir, "instances", "survival", ".minecraft")
	require.NoError(t, os.MkdirAll(filepath.Join(dotMinecraft, "mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dotMinecraft, "mods", "lithium.jar"), []byte("jar"), 0o644))
	index := `{"mods": {
		"lithium": {"name": "Lithium", "enabled": true, "files": [{"filename": "lithium.jar", "primary": true}]},
		"sodium": {"name": "Sodium", "enabled": true, "files": [{"filename": "sodium.jar", "primary": true}]}
	}}`
	require.NoError(t, os.WriteFile(filepath.Join(dotMinecraft, "mod_index.json"), []byte(index), 0o644))

	out, err := execute(t, NewModsCmd(), "fix", "survival")
	require.NoError(t, err)
	assert.Contains(t, out, "holds 1 mods")

	saved, err := os.ReadFile(filepath.Join(dotMinecraft, "mod_index.json"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "lithium")
	assert.NotContains(t, string(saved), "sodium")

	out, err = execute(t, NewModsCmd(), "list", "survival")
	require.NoError(t, err)
	assert.Contains(t, out, "Lithium")

	_, err = execute(t, NewModsCmd(), "fix", "missing")
	assert.ErrorIs(t, err, errutils.ErrInstanceNotFound)
}

func TestFilterVersions(t *testing.T) {
	versions := []model.Version{
		{ID: "1.20.1", Type: model.TypeRelease},
		{ID: "23w31a", Type: model.TypeSnapshot},
		{ID: "1.19.4", Type: model.TypeRelease},
		{ID: "inf-20100618", Type: model.TypeOldAlpha},
	}

	var ids []string
	for _, v := range filterVersions(versions, model.TypeRelease, false, 0) {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"1.20.1", "1.19.4"}, ids)

	assert.Len(t, filterVersions(versions, "", false, 2), 2)
	assert.Len(t, filterVersions(versions, "", true, 0), 3)
}

func TestProgressViewDrainsEvents(t *testing.T) {
	noProgress := true
	NoProgress = &noProgress
	t.Cleanup(func() { NoProgress = nil })

	var buf bytes.Buffer
	logger.SetTestOutput(&buf)
	logger.InitLogger("debug", logger.FormatText)
	t.Cleanup(func() { logger.UnsetTestOutput() })

	v := startProgress(&bytes.Buffer{})
	orchestrator.Send(v.Events(), orchestrator.Event{Phase: "assets", Done: 1, Total: 2})
	orchestrator.Finish(v.Events(), "assets", "Downloaded assets")
	v.Stop(false)

	assert.Contains(t, buf.String(), "assets")
}
