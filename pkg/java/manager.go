//go:generate mockgen -destination=mocks/java.go . Manager
package java

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // the runtime catalog publishes SHA-1 digests
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz/lzma"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

const (
	// LockFileName marks an install that has not completed.
	LockFileName = "install.lock"
	lockMessage  = "If you see this, java hasn't finished installing."

	// Phase tags progress events emitted while installing a runtime.
	Phase = "java"

	defaultFileConcurrency = 64
	darwinFileConcurrency  = 16
)

// binaryLocations are tried in order, each with and without ".exe".
var binaryLocations = []string{
	"bin",
	"Contents/Home/bin",
	"jre.bundle/Contents/Home/bin",
	"jdk1.8.0_231",
	"jdk1.8.0_231/bin",
}

// Manager provisions Java runtimes.
type Manager interface {
	// EnsureInstalled installs v if needed and returns the path of its java binary.
	EnsureInstalled(ctx context.Context, v Version, progress chan<- orchestrator.Event) (string, error)

	// GetBinary installs v if needed and returns the path of the named tool,
	// e.g. "java", "javaw" or "javac".
	GetBinary(ctx context.Context, v Version, name string, progress chan<- orchestrator.Event) (string, error)
}

// Options configure a ManagerImpl.
type Options struct {
	InstallsDir     string
	Platform        platform.Platform
	FileConcurrency int
	CatalogURL      string
	Alternates      AlternateTable
}

// ManagerImpl installs runtimes under Options.InstallsDir.
type ManagerImpl struct {
	client     http.Client
	downloads  download.Manager
	archives   *archive.Manager
	platform   platform.Platform
	dir        string
	limit      int
	catalogURL string
	alternates AlternateTable
}

var _ Manager = (*ManagerImpl)(nil)

// NewManager creates a runtime manager.
func NewManager(client http.Client, downloads download.Manager, opts Options) *ManagerImpl {
	if opts.FileConcurrency <= 0 {
		opts.FileConcurrency = defaultFileConcurrency
		if opts.Platform.OS == platform.OSDarwin {
			opts.FileConcurrency = darwinFileConcurrency
		}
	}
	if opts.CatalogURL == "" {
		opts.CatalogURL = CatalogURL
	}
	if opts.Alternates == nil {
		opts.Alternates = DefaultAlternates
	}
	return &ManagerImpl{
		client:     client,
		downloads:  downloads,
		archives:   archive.NewManager(),
		platform:   opts.Platform,
		dir:        opts.InstallsDir,
		limit:      opts.FileConcurrency,
		catalogURL: opts.CatalogURL,
		alternates: opts.Alternates,
	}
}

// DefaultBinary is the launcher binary name: javaw on Windows, java elsewhere.
func DefaultBinary(p platform.Platform) string {
	if p.OS == platform.OSWindows {
		return "javaw"
	}
	return "java"
}

// EnsureInstalled installs v if needed and returns the path of its java binary.
func (m *ManagerImpl) EnsureInstalled(ctx context.Context, v Version, progress chan<- orchestrator.Event) (string, error) {
	return m.GetBinary(ctx, v, "java", progress)
}

// GetBinary installs v if needed and returns the path of the named tool.
func (m *ManagerImpl) GetBinary(ctx context.Context, v Version, name string, progress chan<- orchestrator.Event) (string, error) {
	v = m.effectiveVersion(v)
	installDir := m.InstallDir(v)

	if !m.isComplete(installDir) {
		logger.Info("Installing Java", logger.Fields{"version": v.String(), "platform": m.platform.String()})
		if err := m.install(ctx, v, installDir, progress); err != nil {
			return "", errutils.Wrapf(err, "installing %s (%s)", v, m.platform)
		}
		logger.Success("Installed Java", logger.Fields{"version": v.String()})
	}

	bin, err := FindBinary(installDir, name)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(bin); err == nil {
		bin = abs
	}
	return bin, nil
}

// InstallDir is where v lives.
func (m *ManagerImpl) InstallDir(v Version) string {
	return filepath.Join(m.dir, v.String())
}

// effectiveVersion upgrades requests the platform cannot satisfy. Windows on ARM64
// has no Java 8 or 16 builds.
func (m *ManagerImpl) effectiveVersion(v Version) Version {
	if m.platform.OS == platform.OSWindows && m.platform.Arch == platform.ArchARM64 && (v == Java8 || v == Java16) {
		logger.Debug("upgrading java request on windows/arm64", logger.Fields{"requested": v.String()})
		return Java17
	}
	return v
}

func (m *ManagerImpl) isComplete(installDir string) bool {
	if !fsutil.Exists(installDir) || fsutil.Exists(filepath.Join(installDir, LockFileName)) {
		return false
	}
	_, err := FindBinary(installDir, "java")
	return err == nil
}

// FindBinary looks up the named tool inside a runtime directory.
func FindBinary(installDir, name string) (string, error) {
	for _, loc := range binaryLocations {
		candidate := filepath.Join(installDir, filepath.FromSlash(loc), name)
		if fileExists(candidate) {
			return candidate, nil
		}
		if fileExists(candidate + ".exe") {
			return candidate + ".exe", nil
		}
	}
	entries, _ := os.ReadDir(installDir)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return "", fmt.Errorf("no %s binary in %s (contents: %s): %w", name, installDir, strings.Join(names, ", "), os.ErrNotExist)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func (m *ManagerImpl) install(ctx context.Context, v Version, installDir string, progress chan<- orchestrator.Event) error {
	if err := fsutil.EnsureDir(installDir); err != nil {
		return errutils.FS("mkdir", installDir, err)
	}
	lockPath := filepath.Join(installDir, LockFileName)
	if err := os.WriteFile(lockPath, []byte(lockMessage), fsutil.FileModeDefault); err != nil {
		return errutils.FS("write", lockPath, err)
	}

	orchestrator.Send(progress, orchestrator.Event{Phase: Phase, Message: "Installing " + v.String()})

	manifestURL, err := m.officialManifest(ctx, v)
	if err != nil {
		return err
	}
	if manifestURL != "" {
		err = m.installOfficial(ctx, manifestURL, installDir, progress)
	} else {
		err = m.installAlternate(ctx, v, installDir, progress)
	}
	if err != nil {
		return err
	}

	if err := os.Remove(lockPath); err != nil {
		return errutils.FS("remove", lockPath, err)
	}
	orchestrator.Finish(progress, Phase, "Installed "+v.String())
	return nil
}

// officialManifest returns the file table URL, or "" when the catalog does not
// cover the platform.
func (m *ManagerImpl) officialManifest(ctx context.Context, v Version) (string, error) {
	key, ok := m.platform.JavaRuntimeKey()
	if !ok {
		return "", nil
	}
	var catalog Catalog
	if err := m.client.FetchJSON(ctx, m.catalogURL, &catalog); err != nil {
		return "", errutils.Wrap(err, "fetching java runtime catalog")
	}
	url, _ := catalog.ManifestURL(key, v)
	return url, nil
}

func (m *ManagerImpl) installOfficial(ctx context.Context, manifestURL, installDir string, progress chan<- orchestrator.Event) error {
	var table FileTable
	if err := m.client.FetchJSON(ctx, manifestURL, &table); err != nil {
		return errutils.Wrap(err, "fetching java file table")
	}

	names := make([]string, 0, len(table.Files))
	for name := range table.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var jobs []orchestrator.Job[struct{}]
	links := 0
	for _, name := range names {
		f := table.Files[name]
		target := filepath.Join(installDir, filepath.FromSlash(name))
		if !fsutil.IsWithin(installDir, target) {
			return fmt.Errorf("runtime file %q: %w", name, errutils.ErrInvalidPath)
		}

		switch f.Type {
		case FileTypeDirectory:
			if err := fsutil.EnsureDir(target); err != nil {
				return errutils.FS("mkdir", target, err)
			}
		case FileTypeLink:
			links++
			logger.Debug("skipping runtime link", logger.Fields{"path": name, "target": f.Target})
		case FileTypeFile:
			if f.Downloads == nil {
				continue
			}
			jobs = append(jobs, orchestrator.Job[struct{}]{
				Name: name,
				Run: func(ctx context.Context) (struct{}, error) {
					return struct{}{}, m.installFile(ctx, f, target)
				},
			})
		}
	}

	_, err := orchestrator.Run(ctx, jobs, orchestrator.Options{
		Limit:    m.limit,
		Mode:     orchestrator.FailFast,
		Progress: progress,
		Phase:    Phase,
		Label:    "Installed file",
	})
	if links > 0 {
		logger.Debug("runtime links were not created", logger.Fields{"count": links})
	}
	return err
}

func (m *ManagerImpl) installFile(ctx context.Context, f RuntimeFile, target string) error {
	if f.Downloads.LZMA != nil {
		data, err := m.fetchLZMA(ctx, f.Downloads)
		if err == nil {
			mode := os.FileMode(fsutil.FileModeDefault)
			if f.Executable {
				mode = fsutil.FileModeExec
			}
			if err := fsutil.EnsureFileDir(target); err != nil {
				return errutils.FS("mkdir", filepath.Dir(target), err)
			}
			return fsutil.WriteFileAtomic(target, data, mode)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("could not use lzma download, falling back to raw", logger.Fields{
			"url":   f.Downloads.Raw.URL,
			"error": err.Error(),
		})
	}

	_, err := m.downloads.Fetch(ctx, download.Item{
		ID:         filepath.Base(target),
		URL:        f.Downloads.Raw.URL,
		Path:       target,
		Checksum:   f.Downloads.Raw.SHA1,
		Executable: f.Executable,
	})
	return err
}

// fetchLZMA downloads and decodes the compressed copy, checking the result
// against the raw digest when one is published.
func (m *ManagerImpl) fetchLZMA(ctx context.Context, d *FileDownloads) ([]byte, error) {
	compressed, err := m.client.FetchBytes(ctx, d.LZMA.URL)
	if err != nil {
		return nil, err
	}
	r, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &errutils.ParseError{Source: d.LZMA.URL, Err: err}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &errutils.ParseError{Source: d.LZMA.URL, Err: err}
	}
	if d.Raw.SHA1 != "" {
		sum := sha1.Sum(data) //nolint:gosec
		if !strings.EqualFold(hex.EncodeToString(sum[:]), d.Raw.SHA1) {
			return nil, fmt.Errorf("%s: %w", d.LZMA.URL, errutils.ErrChecksumMismatch)
		}
	}
	return data, nil
}

func (m *ManagerImpl) installAlternate(ctx context.Context, v Version, installDir string, progress chan<- orchestrator.Event) error {
	url, ok := m.alternates.Lookup(m.platform, v)
	if !ok {
		return m.unsupported(v)
	}
	format, err := archive.FormatFromName(url)
	if err != nil {
		return err
	}

	orchestrator.Send(progress, orchestrator.Event{Phase: Phase, Done: 0, Total: 2, Message: "Getting compressed archive"})
	archivePath := installDir + ".archive"
	if _, err := m.downloads.Fetch(ctx, download.Item{ID: v.String(), URL: url, Path: archivePath}); err != nil {
		return err
	}
	defer func() { _ = os.Remove(archivePath) }()

	orchestrator.Send(progress, orchestrator.Event{Phase: Phase, Done: 1, Total: 2, Message: "Extracting archive"})
	return m.archives.ExtractAll(ctx, archivePath, installDir, archive.ExtractOptions{
		StripComponents: 1,
		Format:          format,
	})
}

func (m *ManagerImpl) unsupported(v Version) error {
	if v != Java8 {
		if _, ok := m.alternates.Lookup(m.platform, Java8); ok {
			return fmt.Errorf("%w (%s)", errutils.ErrUnsupportedOnlyJava8, m.platform)
		}
	}
	return fmt.Errorf("%w (%s)", errutils.ErrUnsupportedPlatform, m.platform)
}

// Installed describes a runtime found on disk.
type Installed struct {
	Version  Version
	Dir      string
	Complete bool
}

// List reports the runtimes present under the installs directory.
func (m *ManagerImpl) List() []Installed {
	var out []Installed
	for _, v := range Versions {
		dir := m.InstallDir(v)
		if !fsutil.Exists(dir) {
			continue
		}
		out = append(out, Installed{Version: v, Dir: dir, Complete: m.isComplete(dir)})
	}
	return out
}
