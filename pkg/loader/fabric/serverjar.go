package fabric

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/hashicorp/go-version"
)

const (
	// ServerJarName is the launch jar written into server directories.
	ServerJarName = "fabric-server-launch.jar"

	launchPropertiesName = "fabric-server-launch.properties"
	manifestName         = "META-INF/MANIFEST.MF"
	manifestLineLimit    = 72

	fabricLauncherLegacy = "net.fabricmc.loader.launch.server.FabricServerLauncher"
	fabricLauncher       = "net.fabricmc.loader.impl.launch.server.FabricServerLauncher"
	quiltLauncher        = "org.quiltmc.loader.impl.launch.server.QuiltServerLauncher"
)

var (
	lastShadedLoader = version.Must(version.NewVersion("0.12.5"))
	implPackageSince = version.Must(version.NewVersion("0.12.0"))
)

// ShouldShade reports whether the server jar must embed every library. Early
// Fabric server launchers cannot follow a Class-Path manifest.
func ShouldShade(backend, loaderVersion string) bool {
	switch backend {
	case BackendCursedLegacy:
		return true
	case BackendFabric, BackendLegacyFabric:
		v, err := version.NewVersion(loaderVersion)
		return err == nil && v.LessThanOrEqual(lastShadedLoader)
	default:
		return false
	}
}

// launcherClass names the bootstrap that reads fabric-server-launch.properties.
func launcherClass(backend, loaderVersion string) string {
	if IsQuiltBackend(backend) {
		return quiltLauncher
	}
	v, err := version.NewVersion(loaderVersion)
	if err != nil || v.LessThan(implPackageSince) {
		return fabricLauncherLegacy
	}
	return fabricLauncher
}

// ServerJar describes fabric-server-launch.jar.
type ServerJar struct {
	Path      string
	BaseDir   string
	Backend   string
	Loader    string
	MainClass string
	Libraries []string
	Shaded    bool
}

// Write builds the jar. A shaded jar merges every library and starts MainClass
// directly; otherwise the jar references the libraries through Class-Path and a
// launcher reads the real main class from the properties file.
func (j ServerJar) Write(ctx context.Context, am *archive.Manager) error {
	if j.MainClass == "" {
		return fmt.Errorf("loader profile has no main class")
	}
	if j.Shaded {
		manifest := Manifest([][2]string{
			{"Manifest-Version", "1.0"},
			{"Main-Class", j.MainClass},
		})
		return am.MergeJars(ctx, j.Path, []archive.Entry{{Name: manifestName, Data: manifest}}, j.Libraries)
	}

	classPath := make([]string, 0, len(j.Libraries))
	for _, lib := range j.Libraries {
		rel, err := filepath.Rel(j.BaseDir, lib)
		if err != nil {
			return err
		}
		classPath = append(classPath, filepath.ToSlash(rel))
	}

	manifest := Manifest([][2]string{
		{"Manifest-Version", "1.0"},
		{"Main-Class", launcherClass(j.Backend, j.Loader)},
		{"Class-Path", strings.Join(classPath, " ")},
	})
	props := "launch.mainClass=" + j.MainClass + "\n"
	return am.CreateJar(ctx, j.Path, []archive.Entry{
		{Name: manifestName, Data: manifest},
		{Name: launchPropertiesName, Data: []byte(props)},
	})
}

// Manifest renders jar manifest attributes, folding lines longer than 72 bytes
// onto continuation lines that start with a space.
func Manifest(attrs [][2]string) []byte {
	var b strings.Builder
	for _, kv := range attrs {
		line := kv[0] + ": " + kv[1]
		limit := manifestLineLimit
		for len(line) > limit {
			b.WriteString(line[:limit])
			b.WriteString("\r\n ")
			line = line[limit:]
			limit = manifestLineLimit - 1
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}
