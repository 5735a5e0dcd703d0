package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

const (
	// Phase tags progress events emitted while downloading libraries.
	Phase = "libraries"

	// NativesDirName is the extraction target inside the libraries directory.
	NativesDirName = "natives"

	objcBridge = "ca.weblite:java-objc-bridge:1.0.0"
)

// Options control a library download run.
type Options struct {
	LibrariesDir string
	Progress     chan<- orchestrator.Event
	Concurrency  int
	// SkipLWJGL2 drops 2.x LWJGL artifacts; Download sets it for versions up to 1.12.2.
	SkipLWJGL2 bool
}

// Result lists the downloaded main artifacts in library order.
type Result struct {
	Paths []string
}

// Resolver downloads libraries for one platform.
type Resolver struct {
	downloads download.Manager
	archives  *archive.Manager
	platform  platform.Platform
}

// NewResolver creates a resolver.
func NewResolver(downloads download.Manager, p platform.Platform) *Resolver {
	return &Resolver{downloads: downloads, archives: archive.NewManager(), platform: p}
}

// Download fetches every applicable library of details into opts.LibrariesDir
// and unpacks natives into its natives directory.
func (r *Resolver) Download(ctx context.Context, details *model.VersionDetails, opts Options) (Result, error) {
	opts.SkipLWJGL2 = opts.SkipLWJGL2 || details.IsAtOrBefore(model.ReleaseTime1_12_2)
	return r.DownloadLibraries(ctx, details.Libraries, opts)
}

// DownloadLibraries is Download for a bare library list, as used by mod loaders.
// The first failure cancels the remaining downloads.
func (r *Resolver) DownloadLibraries(ctx context.Context, libs []model.Library, opts Options) (Result, error) {
	nativesDir := filepath.Join(opts.LibrariesDir, NativesDirName)
	if err := fsutil.EnsureDir(nativesDir); err != nil {
		return Result{}, errutils.FS("mkdir", nativesDir, err)
	}

	run := &runState{
		Resolver:   r,
		opts:       opts,
		nativesDir: nativesDir,
		seen:       make(map[string]struct{}),
	}

	jobs := make([]orchestrator.Job[string], 0, len(libs))
	for _, lib := range libs {
		jobs = append(jobs, orchestrator.Job[string]{
			Name: lib.Name,
			Run: func(ctx context.Context) (string, error) {
				return run.library(ctx, lib)
			},
		})
	}

	results, err := orchestrator.Run(ctx, jobs, orchestrator.Options{
		Limit:    opts.Concurrency,
		Mode:     orchestrator.FailFast,
		Progress: opts.Progress,
		Phase:    Phase,
		Label:    "Downloaded library",
	})
	if err != nil {
		return Result{}, errutils.Wrap(err, "downloading libraries")
	}

	var out Result
	for _, res := range results {
		if res.Value != "" {
			out.Paths = append(out.Paths, res.Value)
		}
	}
	return out, nil
}

// runState is shared by the jobs of one run.
type runState struct {
	*Resolver
	opts       Options
	nativesDir string

	mu   sync.Mutex
	seen map[string]struct{}
}

// library downloads one library and returns its main artifact path, or "" if it
// contributes no classpath entry.
func (s *runState) library(ctx context.Context, lib model.Library) (string, error) {
	if !IsAllowed(lib, s.platform) {
		logger.Debug("skipping library", logger.Fields{"library": lib.Name, "reason": "rules"})
		return "", nil
	}
	if s.opts.SkipLWJGL2 && IsLWJGL2(lib.Name) {
		logger.Debug("skipping library", logger.Fields{"library": lib.Name, "reason": "lwjgl2"})
		return "", nil
	}

	artifact, hasArtifact := ArtifactFor(lib)
	hasClassifiers := lib.Downloads != nil && len(lib.Downloads.Classifiers) > 0
	if !hasArtifact && !hasClassifiers {
		logger.Debug("skipping library", logger.Fields{"library": lib.Name, "reason": "no url"})
		return "", nil
	}

	var jarPath string
	if hasArtifact {
		p, err := s.fetchArtifact(ctx, lib.Name, artifact)
		if err != nil {
			return "", err
		}
		jarPath = p
	}

	if err := s.natives(ctx, lib, artifact, jarPath); err != nil {
		return "", errutils.Wrapf(err, "natives of %s", lib.Name)
	}
	return jarPath, nil
}

func (s *runState) fetchArtifact(ctx context.Context, id string, a model.Artifact) (string, error) {
	dest := filepath.Join(s.opts.LibrariesDir, filepath.FromSlash(ArtifactPath(a)))
	if !fsutil.IsWithin(s.opts.LibrariesDir, dest) {
		return "", fmt.Errorf("library %s: %w", id, errutils.ErrInvalidPath)
	}
	return s.downloads.Fetch(ctx, download.Item{ID: id, URL: a.URL, Path: dest, Checksum: a.SHA1})
}

// natives handles the three ways a library can declare native components.
func (s *runState) natives(ctx context.Context, lib model.Library, artifact model.Artifact, jarPath string) error {
	var classifiers map[string]model.Artifact
	if lib.Downloads != nil {
		classifiers = lib.Downloads.Classifiers
	}

	// natives map: {"linux": "natives-linux", "windows": "natives-windows-${arch}"}
	if classifier, ok := s.nativesClassifier(lib); ok {
		if jarPath != "" && lib.Name != objcBridge {
			if err := s.extract(ctx, jarPath); err != nil {
				logger.Warn("could not extract main jar", logger.Fields{"library": lib.Name, "error": err.Error()})
			}
		}
		if native, found := classifiers[classifier]; found {
			if err := s.extractRemote(ctx, lib.Name, native); err != nil {
				return err
			}
		} else if jarPath != "" && strings.HasSuffix(artifact.URL, ".jar") {
			url := strings.TrimSuffix(artifact.URL, ".jar") + "-" + classifier + ".jar"
			if err := s.extractRemote(ctx, lib.Name, model.Artifact{URL: url}); err != nil {
				return err
			}
		}
	}

	// classifiers keyed by platform: "natives-linux", "natives-macos-arm64"
	for key, native := range classifiers {
		if !s.platform.MatchesNativeClassifier(key) {
			continue
		}
		if err := s.extractRemote(ctx, lib.Name, native); err != nil {
			return err
		}
	}

	// separate library named after the platform: "org.lwjgl:lwjgl:3.3.1:natives-linux"
	if jarPath != "" && s.isPlatformNativeName(lib.Name) {
		if err := s.extractOnce(ctx, artifact.URL, jarPath); err != nil {
			return err
		}
	}

	if lib.Extract != nil {
		return s.applyExcludes(lib.Extract.Exclude)
	}
	return nil
}

func (s *runState) nativesClassifier(lib model.Library) (string, bool) {
	if len(lib.Natives) == 0 {
		return "", false
	}
	classifier, ok := lib.Natives[s.platform.RuleName()]
	if !ok {
		return "", false
	}
	bits := "64"
	if s.platform.Arch == platform.Arch386 || s.platform.Arch == platform.ArchARM {
		bits = "32"
	}
	return strings.ReplaceAll(classifier, "${arch}", bits), true
}

func (s *runState) isPlatformNativeName(name string) bool {
	if !strings.Contains(name, "natives-") {
		return false
	}
	for _, osName := range s.platform.MinecraftOSNames() {
		if strings.Contains(name, "natives-"+osName) {
			return s.platform.NativeNameCompatible(name)
		}
	}
	return false
}

// extractRemote downloads a native jar into the libraries directory and unpacks it.
func (s *runState) extractRemote(ctx context.Context, id string, a model.Artifact) error {
	a.URL = rewriteNativeURL(a.URL, s.platform)
	if !s.claim(a.URL) {
		return nil
	}
	jar, err := s.fetchArtifact(ctx, id, a)
	if err != nil {
		return err
	}
	return s.extract(ctx, jar)
}

func (s *runState) extractOnce(ctx context.Context, url, jarPath string) error {
	if !s.claim(url) {
		return nil
	}
	return s.extract(ctx, jarPath)
}

// claim records url and reports whether this is its first use in the run.
func (s *runState) claim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[url]; dup {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

func (s *runState) extract(ctx context.Context, jarPath string) error {
	return s.archives.ExtractAll(ctx, jarPath, s.nativesDir, archive.ExtractOptions{
		Format: archive.JarFormat,
		Skip: func(name string) bool {
			return name == "META-INF" || strings.HasPrefix(name, "META-INF/")
		},
	})
}

func (s *runState) applyExcludes(excludes []string) error {
	for _, exclusion := range excludes {
		target := filepath.Join(s.nativesDir, filepath.FromSlash(exclusion))
		if !fsutil.IsWithin(s.nativesDir, target) {
			return fmt.Errorf("%s: %w", exclusion, errutils.ErrNativesOutsideDir)
		}
		if filepath.Clean(target) == filepath.Clean(s.nativesDir) {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			return errutils.FS("remove", target, err)
		}
	}
	return nil
}

const (
	jemallocNatives        = "https://github.com/theofficialgman/lwjgl3-binaries-arm64/raw/lwjgl-3.1.6/lwjgl-jemalloc-natives-linux.jar"
	jemallocPatchedNatives = "https://github.com/theofficialgman/lwjgl3-binaries-arm64/raw/lwjgl-3.1.6/lwjgl-jemalloc-patched-natives-linux-arm64.jar"
	macLWJGL294            = "https://libraries.minecraft.net/org/lwjgl/lwjgl/lwjgl-platform/2.9.4-nightly-20150209/lwjgl-platform-2.9.4-nightly-20150209-natives-osx.jar"
	macLWJGL294Machina     = "https://github.com/MinecraftMachina/lwjgl/releases/download/2.9.4-20150209-mmachina.2/lwjgl-platform-2.9.4-nightly-20150209-natives-osx.jar"
	macLWJGL294ARM64       = "https://github.com/Dungeons-Guide/lwjgl/releases/download/2.9.4-20150209-mmachina.2-syeyoung.1/lwjgl-platform-2.9.4-nightly-20150209-natives-osx-arm64.jar"
)

// rewriteNativeURL swaps known natives for builds that work on ARM.
func rewriteNativeURL(url string, p platform.Platform) string {
	switch {
	case url == jemallocNatives:
		return jemallocPatchedNatives
	case url == macLWJGL294Machina, url == macLWJGL294 && p.OS == platform.OSDarwin && p.Arch == platform.ArchARM64:
		return macLWJGL294ARM64
	case p.OS == platform.OSLinux && p.Arch == platform.ArchARM64 && strings.HasSuffix(url, "lwjgl-core-natives-linux.jar"):
		return strings.TrimSuffix(url, "lwjgl-core-natives-linux.jar") + "lwjgl-natives-linux-arm64.jar"
	}
	return url
}

// ClasspathFor lists the artifact paths of details' libraries that apply to p,
// in declaration order, without duplicates.
func ClasspathFor(details *model.VersionDetails, librariesDir string, p platform.Platform) []string {
	skipLWJGL2 := details.IsAtOrBefore(model.ReleaseTime1_12_2)
	seen := make(map[string]struct{})
	var out []string
	for _, lib := range details.Libraries {
		if !IsAllowed(lib, p) || (skipLWJGL2 && IsLWJGL2(lib.Name)) {
			continue
		}
		a, ok := ArtifactFor(lib)
		if !ok {
			continue
		}
		path := filepath.Join(librariesDir, filepath.FromSlash(ArtifactPath(a)))
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}
