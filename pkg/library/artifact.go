package library

import (
	"strings"

	"github.com/glorpus-work/lodestone/pkg/model"
)

// DefaultRepository serves libraries that only name a coordinate.
const DefaultRepository = "https://libraries.minecraft.net/"

// ArtifactFor returns the main artifact of lib. When downloads.artifact is
// absent it is derived from the coordinate and the library's repository URL.
// ok is false when no URL can be associated.
func ArtifactFor(lib model.Library) (model.Artifact, bool) {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil {
		a := *lib.Downloads.Artifact
		return a, a.URL != ""
	}
	if lib.Name == "" || lib.URL == "" {
		return model.Artifact{}, false
	}
	p := MavenPath(lib.Name)
	if p == "" {
		return model.Artifact{}, false
	}
	return model.Artifact{Path: p, URL: joinURL(lib.URL, p)}, true
}

// ArtifactPath is the location of a inside the libraries directory: the
// declared path, or the URL without scheme and host.
func ArtifactPath(a model.Artifact) string {
	if a.Path != "" {
		return a.Path
	}
	u := a.URL
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		u = rest
	} else if rest, ok := strings.CutPrefix(u, "http://"); ok {
		u = rest
	}
	if i := strings.IndexByte(u, '/'); i >= 0 {
		return u[i+1:]
	}
	return u
}

func joinURL(base, p string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + p
}
