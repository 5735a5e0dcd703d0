package cli

import (
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/config"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/hooks"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/instance"
	"github.com/glorpus-work/lodestone/pkg/java"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/loader/fabric"
	"github.com/glorpus-work/lodestone/pkg/loader/forge"
	"github.com/glorpus-work/lodestone/pkg/manifest"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
)

func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get default config path: %w", err)
	}
	return path, nil
}

// loadConfig loads the launcher settings and initializes logging from them.
func loadConfig() (*config.Config, string, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, logger.OutputFormat(cfg.Settings.LogFormat))
	return cfg, path, nil
}

// app holds the services a command needs, built from the launcher settings.
type app struct {
	cfg       *config.Config
	platform  platform.Platform
	client    http.Client
	downloads download.Manager
	runtimes  *java.ManagerImpl
	versions  *manifest.Resolver
	loaders   *loader.Registry
	assembler *instance.Assembler
}

func newApp() (*app, error) {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := cfg.Settings
	if err := fsutil.EnsureDirs(s.LauncherDir); err != nil {
		return nil, errutils.Wrap(err, "creating launcher directories")
	}

	p := platform.CurrentPlatform()
	client := http.NewHTTPClient(http.Options{Timeout: s.HTTPTimeout, UserAgent: s.UserAgent})
	downloads := download.NewManager(client)
	runtimes := java.NewManager(client, downloads, java.Options{
		InstallsDir:     fsutil.JavaInstallsDir(s.LauncherDir),
		Platform:        p,
		FileConcurrency: s.JavaFileConcurrency,
	})

	fabricInstaller, err := fabric.New(loader.KindFabric, client, downloads, p, fabric.Options{Concurrency: s.MaxConcurrentDownloads})
	if err != nil {
		return nil, err
	}
	quiltInstaller, err := fabric.New(loader.KindQuilt, client, downloads, p, fabric.Options{Concurrency: s.MaxConcurrentDownloads})
	if err != nil {
		return nil, err
	}
	forgeOpts := forge.Options{Concurrency: s.MaxConcurrentDownloads}
	loaders := loader.NewRegistry(
		fabricInstaller,
		quiltInstaller,
		forge.New(client, downloads, runtimes, p, forgeOpts),
		forge.NewNeoForge(client, downloads, runtimes, p, forgeOpts),
	)

	hookManager := hooks.NewHookManager()
	if err := hooks.LoadHooks(hookManager, filepath.Dir(cfgPath), cfg.Hooks.Map()); err != nil {
		return nil, err
	}

	versions := manifest.NewResolver(client, p)
	return &app{
		cfg:       cfg,
		platform:  p,
		client:    client,
		downloads: downloads,
		runtimes:  runtimes,
		versions:  versions,
		loaders:   loaders,
		assembler: instance.New(versions, downloads, loaders, hookManager, instance.Options{
			LauncherDir: s.LauncherDir,
			Platform:    p,
			Concurrency: s.MaxConcurrentDownloads,
		}),
	}, nil
}
