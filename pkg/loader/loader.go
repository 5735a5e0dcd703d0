// Package loader defines the state machine shared by every mod-loader installer
// and the registry the assembler and CLI use to pick one.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// Phase tags progress events emitted by loader installers.
const Phase = "loader"

// Kind identifies a loader family.
type Kind string

const (
	KindFabric   Kind = "fabric"
	KindQuilt    Kind = "quilt"
	KindForge    Kind = "forge"
	KindNeoForge Kind = "neoforge"
)

// ParseKind accepts the lowercase kind names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFabric, KindQuilt, KindForge, KindNeoForge:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", errutils.ErrUnknownLoader, s)
	}
}

// ModType returns the value written to config.json's mod_type.
func (k Kind) ModType() model.Loader {
	switch k {
	case KindFabric:
		return model.LoaderFabric
	case KindQuilt:
		return model.LoaderQuilt
	case KindForge:
		return model.LoaderForge
	case KindNeoForge:
		return model.LoaderNeoForge
	default:
		return model.LoaderVanilla
	}
}

// Stage is a step of the install state machine.
type Stage string

const (
	StageResolveLoaderVersion        Stage = "resolve_loader_version"
	StageFetchLoaderMetadata         Stage = "fetch_loader_metadata"
	StagePersistMetadataJSON         Stage = "persist_metadata_json"
	StageResolveLibraries            Stage = "resolve_libraries"
	StageDownloadLibraries           Stage = "download_libraries"
	StageAssembleLaunchArtifact      Stage = "assemble_launch_artifact"
	StagePersistInstanceLoaderConfig Stage = "persist_instance_loader_config"
	StageDone                        Stage = "done"
)

var stageOrder = []Stage{
	StageResolveLoaderVersion,
	StageFetchLoaderMetadata,
	StagePersistMetadataJSON,
	StageResolveLibraries,
	StageDownloadLibraries,
	StageAssembleLaunchArtifact,
	StagePersistInstanceLoaderConfig,
	StageDone,
}

func (s Stage) index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Install is the state of one loader installation. It is created per invocation
// and advanced only through Enter.
type Install struct {
	Kind          Kind
	Backend       string
	GameVersion   string
	LoaderVersion string
	InstanceDir   string
	IsServer      bool

	stage Stage
}

// Stage returns the step the install last entered.
func (in *Install) Stage() Stage { return in.stage }

// Enter moves the install to stage, logging the transition and pushing a progress
// event. Stages only move forward; client installs never enter
// StageAssembleLaunchArtifact.
func (in *Install) Enter(stage Stage, progress chan<- orchestrator.Event) error {
	next := stage.index()
	if next < 0 {
		return fmt.Errorf("unknown loader stage %q", stage)
	}
	if in.stage != "" && next <= in.stage.index() {
		return fmt.Errorf("loader stage %s cannot follow %s", stage, in.stage)
	}
	if stage == StageAssembleLaunchArtifact && !in.IsServer {
		return fmt.Errorf("loader stage %s is server only", stage)
	}

	in.stage = stage
	logger.Debug("loader stage", logger.Fields{
		"kind":     string(in.Kind),
		"stage":    string(stage),
		"instance": filepath.Base(in.InstanceDir),
	})
	orchestrator.Send(progress, orchestrator.Event{
		Phase:    Phase,
		Done:     next,
		Total:    len(stageOrder) - 1,
		Message:  string(stage),
		Finished: stage == StageDone,
	})
	return nil
}

// LibrariesDir is where loader libraries are downloaded. Client instances and
// servers both keep them beside details.json.
func (in *Install) LibrariesDir() string {
	return filepath.Join(in.InstanceDir, fsutil.LibrariesDirName)
}

// DotMinecraft returns the game directory: .minecraft for clients and the server
// directory itself for servers.
func (in *Install) DotMinecraft() string {
	if in.IsServer {
		return in.InstanceDir
	}
	return filepath.Join(in.InstanceDir, fsutil.DotMinecraftDirName)
}

// LoadDetails reads details.json and fills GameVersion when unset.
func (in *Install) LoadDetails() (*model.VersionDetails, error) {
	details, err := model.LoadVersionDetails(in.InstanceDir)
	if err != nil {
		return nil, errutils.Wrap(err, "loading version details")
	}
	if in.GameVersion == "" {
		in.GameVersion = details.GameID()
	}
	return details, nil
}

// Installer installs one loader family.
type Installer interface {
	Kind() Kind
	Install(ctx context.Context, in *Install, progress chan<- orchestrator.Event) error
}

// Registry maps loader kinds to installers.
type Registry struct {
	mu         sync.RWMutex
	installers map[Kind]Installer
}

// NewRegistry creates a registry holding installers.
func NewRegistry(installers ...Installer) *Registry {
	r := &Registry{installers: make(map[Kind]Installer, len(installers))}
	for _, i := range installers {
		r.Register(i)
	}
	return r
}

// Register adds or replaces the installer for its kind.
func (r *Registry) Register(i Installer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installers[i.Kind()] = i
}

// Get returns the installer for kind.
func (r *Registry) Get(kind Kind) (Installer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.installers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errutils.ErrUnknownLoader, kind)
	}
	return i, nil
}

// Kinds lists the registered kinds in name order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.installers))
	for k := range r.installers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Install runs the installer registered for in.Kind.
func (r *Registry) Install(ctx context.Context, in *Install, progress chan<- orchestrator.Event) error {
	i, err := r.Get(in.Kind)
	if err != nil {
		return err
	}
	logger.Info("Installing mod loader", logger.Fields{"kind": string(in.Kind), "instance": filepath.Base(in.InstanceDir)})
	if err := i.Install(ctx, in, progress); err != nil {
		return errutils.Wrapf(err, "installing %s", in.Kind)
	}
	logger.Success("Installed mod loader", logger.Fields{"kind": string(in.Kind), "version": in.LoaderVersion})
	return nil
}

// UpdateConfig records the installed loader in config.json under dir.
func UpdateConfig(dir string, modType model.Loader, info *model.ModTypeInfo) error {
	cfg, err := model.LoadInstanceConfig(dir)
	if err != nil {
		return errutils.Wrap(err, "loading instance config")
	}
	cfg.ModType = modType
	cfg.ModTypeInfo = info
	return errutils.Wrap(cfg.Save(dir), "saving instance config")
}
