// Package modindex maintains .minecraft/mod_index.json, the record of which mods
// are installed into an instance and how they depend on each other.
package modindex

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

const (
	FileName    = "mod_index.json"
	ModsDirName = "mods"

	legacyFileName = "index.json"
	disabledSuffix = ".disabled"
)

// ModFile is one downloaded file belonging to a mod.
type ModFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
}

// ModConfig describes an installed mod.
type ModConfig struct {
	Name               string    `json:"name"`
	ManuallyInstalled  bool      `json:"manually_installed"`
	InstalledVersion   string    `json:"installed_version"`
	VersionReleaseTime string    `json:"version_release_time"`
	Enabled            bool      `json:"enabled"`
	Description        string    `json:"description"`
	IconURL            string    `json:"icon_url,omitempty"`
	ProjectSource      string    `json:"project_source"`
	ProjectID          string    `json:"project_id"`
	Files              []ModFile `json:"files"`
	SupportedVersions  []string  `json:"supported_versions"`
	Dependencies       IDSet     `json:"dependencies"`
	Dependents         IDSet     `json:"dependents"`
}

// IDSet is a set of mod ids, stored as a sorted JSON array.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

type indexFile struct {
	Mods     map[string]*ModConfig `json:"mods"`
	IsServer *bool                 `json:"is_server,omitempty"`
}

// Index is a loaded mod index bound to one .minecraft directory.
type Index struct {
	mu   sync.RWMutex
	dir  string
	data indexFile
}

// Load opens the index in dotMinecraft. A legacy mods/index.json is moved to
// mod_index.json first; when neither exists an empty index is created and saved.
// The returned index has already been fixed against the mods directory.
func Load(dotMinecraft string, isServer bool) (*Index, error) {
	modsDir := filepath.Join(dotMinecraft, ModsDirName)
	if err := fsutil.EnsureDir(modsDir); err != nil {
		return nil, errutils.FS("mkdir", modsDir, err)
	}

	idx := &Index{dir: dotMinecraft}
	path := idx.Path()
	legacy := filepath.Join(modsDir, legacyFileName)

	loaded, err := idx.migrate(legacy, path)
	if err != nil {
		return nil, err
	}
	if !loaded {
		loaded, err = idx.read(path)
		if err != nil {
			return nil, err
		}
	}

	if !loaded {
		idx.data = indexFile{Mods: map[string]*ModConfig{}, IsServer: &isServer}
		if err := idx.Save(); err != nil {
			return nil, err
		}
		return idx, nil
	}

	if idx.data.Mods == nil {
		idx.data.Mods = map[string]*ModConfig{}
	}
	if _, err := idx.Fix(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) migrate(legacy, path string) (bool, error) {
	data, err := os.ReadFile(legacy)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errutils.FS("read", legacy, err)
	}
	if err := json.Unmarshal(data, &idx.data); err != nil {
		return false, &errutils.ParseError{Source: legacy, Err: err}
	}
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FileModeDefault); err != nil {
		return false, errutils.Wrap(err, "migrating mod index")
	}
	if err := os.Remove(legacy); err != nil {
		return false, errutils.FS("remove", legacy, err)
	}
	logger.Info("Migrated legacy mod index", logger.Fields{"from": legacy, "to": path})
	return true, nil
}

func (idx *Index) read(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errutils.FS("read", path, err)
	}
	if err := json.Unmarshal(data, &idx.data); err != nil {
		return false, &errutils.ParseError{Source: path, Err: err}
	}
	return true, nil
}

// Path returns the location of mod_index.json.
func (idx *Index) Path() string {
	return filepath.Join(idx.dir, FileName)
}

// ModsDir returns the directory mod files live in.
func (idx *Index) ModsDir() string {
	return filepath.Join(idx.dir, ModsDirName)
}

// IsServer reports whether the index belongs to a server.
func (idx *Index) IsServer() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.data.IsServer != nil && *idx.data.IsServer
}

// Len returns the number of mods.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.data.Mods)
}

// IDs returns every mod id in ascending order.
func (idx *Index) IDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.data.Mods))
	for id := range idx.data.Mods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns a copy of the mod with id.
func (idx *Index) Get(id string) (ModConfig, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.data.Mods[id]
	if !ok {
		return ModConfig{}, false
	}
	return *m, true
}

// Put inserts or replaces the mod with id.
func (idx *Index) Put(id string, mod ModConfig) {
	if mod.Dependencies == nil {
		mod.Dependencies = IDSet{}
	}
	if mod.Dependents == nil {
		mod.Dependents = IDSet{}
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.data.Mods[id] = &mod
}

// Remove deletes the mod with id and scrubs it from every dependency set.
func (idx *Index) Remove(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.data.Mods[id]; !ok {
		return false
	}
	idx.removeLocked([]string{id})
	return true
}

func (idx *Index) removeLocked(ids []string) {
	for _, id := range ids {
		delete(idx.data.Mods, id)
	}
	for _, m := range idx.data.Mods {
		for _, id := range ids {
			delete(m.Dependencies, id)
			delete(m.Dependents, id)
		}
	}
}

// Fix reconciles the index with the mods directory. File entries whose file (or
// its .disabled twin) is gone are dropped, mods left without files are removed,
// and removed ids are scrubbed from the remaining graph. It returns the removed ids.
func (idx *Index) Fix() ([]string, error) {
	modsDir := idx.ModsDir()
	if err := fsutil.EnsureDir(modsDir); err != nil {
		return nil, errutils.FS("mkdir", modsDir, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var removed []string
	for id, m := range idx.data.Mods {
		kept := m.Files[:0]
		for _, f := range m.Files {
			if fileOnDisk(modsDir, f.Filename) {
				kept = append(kept, f)
			}
		}
		m.Files = kept
		if len(m.Files) == 0 {
			logger.Info("Cleaning deleted mod", logger.Fields{"mod": m.Name, "id": id})
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	idx.removeLocked(removed)
	return removed, nil
}

func fileOnDisk(modsDir, name string) bool {
	if name == "" {
		return false
	}
	for _, candidate := range []string{name, name + disabledSuffix} {
		if st, err := os.Stat(filepath.Join(modsDir, candidate)); err == nil && st.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// Save runs Fix and writes the index atomically.
func (idx *Index) Save() error {
	if _, err := idx.Fix(); err != nil {
		return err
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return errutils.Wrap(fsutil.WriteJSONAtomic(idx.Path(), &idx.data), "saving mod index")
}
