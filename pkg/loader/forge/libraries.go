package forge

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/glorpus-work/lodestone/pkg/library"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

const (
	// ClasspathFileName lists classpath entries relative to the launch directory.
	ClasspathFileName = "classpath.txt"
	// CleanClasspathFileName lists the group:artifact of every library, one per line.
	CleanClasspathFileName = "clean_classpath.txt"

	forgeCoordinate = "net.minecraftforge:forge"
)

// libraryFile is one library of an installer profile.
type libraryFile struct {
	Name          string
	GroupArtifact string
	// Path is slash separated and relative to the libraries directory.
	Path string
	URL  string
	SHA1 string
}

// selectLibraries applies the profile filters. Libraries marked clientreq=false
// are dropped from client installs; skipForge drops the forge jar the installer
// builds locally.
func selectLibraries(libs []model.Library, skipForge, isServer bool) []libraryFile {
	out := make([]libraryFile, 0, len(libs))
	for _, lib := range libs {
		if !isServer && lib.ClientReq != nil && !*lib.ClientReq {
			continue
		}
		coord, ok := library.ParseCoordinate(lib.Name)
		if !ok {
			logger.Debug("skipping library", logger.Fields{"library": lib.Name, "reason": "bad coordinate"})
			continue
		}
		if skipForge && coord.GroupArtifact() == forgeCoordinate {
			continue
		}

		f := libraryFile{Name: lib.Name, GroupArtifact: coord.GroupArtifact(), Path: coord.Path()}
		if lib.Downloads != nil && lib.Downloads.Artifact != nil {
			a := lib.Downloads.Artifact
			f.URL, f.SHA1 = a.URL, a.SHA1
			if a.Path != "" {
				f.Path = a.Path
			}
		} else {
			base := lib.URL
			if base == "" {
				base = library.DefaultRepository
			}
			f.URL = strings.TrimSuffix(base, "/") + "/" + f.Path
		}
		out = append(out, f)
	}
	return out
}

// downloadLibraries fetches files into librariesDir and returns those present
// afterwards, in input order. A library without a URL counts only when the
// installer already produced it; a 404 is skipped with a warning.
func downloadLibraries(ctx context.Context, downloads download.Manager, files []libraryFile, librariesDir string, concurrency int, progress chan<- orchestrator.Event) ([]libraryFile, error) {
	jobs := make([]orchestrator.Job[bool], 0, len(files))
	for _, f := range files {
		dest := filepath.Join(librariesDir, filepath.FromSlash(f.Path))
		jobs = append(jobs, orchestrator.Job[bool]{
			Name: f.Name,
			Run: func(ctx context.Context) (bool, error) {
				if f.URL == "" {
					return fsutil.Exists(dest), nil
				}
				_, err := downloads.Fetch(ctx, download.Item{ID: f.Name, URL: f.URL, Path: dest, Checksum: f.SHA1})
				if errutils.IsNotFound(err) {
					logger.Warn("library not found, skipping", logger.Fields{"library": f.Name, "url": f.URL})
					return false, nil
				}
				return err == nil, err
			},
		})
	}

	results, err := orchestrator.Run(ctx, jobs, orchestrator.Options{
		Limit:    concurrency,
		Mode:     orchestrator.FailFast,
		Progress: progress,
		Phase:    library.Phase,
		Label:    "Downloaded library",
	})
	if err != nil {
		return nil, err
	}

	present := make([]libraryFile, 0, len(files))
	for i, r := range results {
		if r.Value {
			present = append(present, files[i])
		}
	}
	return present, nil
}

// writeClasspath writes classpath.txt from the present files and
// clean_classpath.txt from every selected one, into dir. Every classpath entry
// is prefix + path and is followed by sep.
func writeClasspath(dir, prefix, sep string, head []string, selected, present []libraryFile) error {
	var cp, clean strings.Builder
	for _, h := range head {
		cp.WriteString(prefix + h + sep)
	}
	for _, f := range present {
		cp.WriteString(prefix + "libraries/" + f.Path + sep)
	}
	for _, f := range selected {
		clean.WriteString(f.GroupArtifact + "\n")
	}

	for name, body := range map[string]string{
		ClasspathFileName:      cp.String(),
		CleanClasspathFileName: clean.String(),
	} {
		path := filepath.Join(dir, name)
		if err := fsutil.WriteFileAtomic(path, []byte(body), fsutil.FileModeDefault); err != nil {
			return errutils.FS("write", path, err)
		}
	}
	return nil
}
