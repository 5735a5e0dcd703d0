package model

import (
	"path/filepath"

	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

// ConfigFileName is the launcher's per-instance configuration.
const ConfigFileName = "config.json"

// DefaultRAMInMB is the heap given to new instances before clamping.
const DefaultRAMInMB = 2048

// Loader names the mod loader installed into an instance.
type Loader string

const (
	LoaderVanilla  Loader = "Vanilla"
	LoaderFabric   Loader = "Fabric"
	LoaderQuilt    Loader = "Quilt"
	LoaderForge    Loader = "Forge"
	LoaderNeoForge Loader = "NeoForge"
)

// InstanceConfig is config.json.
type InstanceConfig struct {
	RAMInMB           int          `json:"ram_in_mb"`
	JavaOverride      string       `json:"java_override,omitempty"`
	ModType           Loader       `json:"mod_type"`
	ModTypeInfo       *ModTypeInfo `json:"mod_type_info,omitempty"`
	EnableLogger      bool         `json:"enable_logger"`
	JavaArgs          []string     `json:"java_args,omitempty"`
	GameArgs          []string     `json:"game_args,omitempty"`
	IsServer          bool         `json:"is_server"`
	IsClassicServer   bool         `json:"is_classic_server"`
	MainClassOverride string       `json:"main_class_override,omitempty"`
	VersionInfo       *VersionInfo `json:"version_info,omitempty"`
}

// ModTypeInfo records which loader build and backend were installed.
type ModTypeInfo struct {
	Version               string `json:"version,omitempty"`
	BackendImplementation string `json:"backend_implementation,omitempty"`
}

// VersionInfo describes quirks of the installed game version.
type VersionInfo struct {
	IsSpecialLWJGL3 bool `json:"is_special_lwjgl3"`
}

// NewInstanceConfig returns the config written for a fresh instance.
func NewInstanceConfig(ramInMB int, isServer bool) *InstanceConfig {
	return &InstanceConfig{
		RAMInMB:      ramInMB,
		ModType:      LoaderVanilla,
		EnableLogger: true,
		IsServer:     isServer,
	}
}

// LoadInstanceConfig reads <dir>/config.json.
func LoadInstanceConfig(dir string) (*InstanceConfig, error) {
	var cfg InstanceConfig
	if err := readJSONFile(filepath.Join(dir, ConfigFileName), &cfg); err != nil {
		return nil, err
	}
	if cfg.ModType == "" {
		cfg.ModType = LoaderVanilla
	}
	return &cfg, nil
}

// Save writes config.json into dir atomically.
func (c *InstanceConfig) Save(dir string) error {
	return fsutil.WriteJSONAtomic(filepath.Join(dir, ConfigFileName), c)
}
