package forge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/glorpus-work/lodestone/pkg/errutils"
)

// Forge majors that change how the installer is laid out.
const (
	// installerSinceMajor is the first major whose installer jar must be run.
	installerSinceMajor = 14
	// forgeJarOnClasspathUntil is the last major that launches from forge-<short>.jar.
	forgeJarOnClasspathUntil = 38
	// forgeLibraryUntil is the last major whose profile lists a forge library the
	// installer generates rather than publishes.
	forgeLibraryUntil = 48
)

// Versions names one Forge build in the shapes its maven layout uses.
type Versions struct {
	Game  string
	Forge string
	// Short is "<game>-<forge>".
	Short string
	// Normalized pads a two-component game version with ".0".
	Normalized string
	Major      int
}

// NewVersions derives the maven names of forge for game. A forge version that
// already carries the "<game>-" prefix is accepted.
func NewVersions(game, forge string) (Versions, error) {
	forge = strings.TrimPrefix(forge, game+"-")
	head, _, _ := strings.Cut(forge, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return Versions{}, &errutils.ParseError{Source: "forge version " + forge, Err: err}
	}
	v := Versions{
		Game:       game,
		Forge:      forge,
		Short:      game + "-" + forge,
		Normalized: game + "-" + forge,
		Major:      major,
	}
	if strings.Count(game, ".") == 1 {
		v.Normalized = game + ".0-" + forge
	}
	return v, nil
}

type candidate struct {
	Name string
	URL  string
}

// InstallerCandidates lists the downloads that may hold the installer, in the
// order they are tried. Old builds publish a universal jar first.
func (v Versions) InstallerCandidates(base string) []candidate {
	base = strings.TrimSuffix(base, "/")
	kinds := []string{"installer", "universal"}
	if v.Major < installerSinceMajor {
		kinds = []string{"universal", "installer"}
	}
	names := []string{v.Short}
	if v.Normalized != v.Short {
		names = append(names, v.Normalized)
	}

	var out []candidate
	for _, kind := range kinds {
		for _, name := range names {
			file := fmt.Sprintf("forge-%s-%s.jar", name, kind)
			out = append(out, candidate{Name: file, URL: base + "/" + name + "/" + file})
		}
	}
	for _, kind := range []string{"client", "universal"} {
		file := fmt.Sprintf("forge-%s-%s.zip", v.Short, kind)
		out = append(out, candidate{Name: file, URL: base + "/" + v.Short + "/" + file})
	}
	return out
}

// classpathHead returns the forge jar that precedes the libraries on the
// classpath, relative to the forge directory.
func (v Versions) classpathHead(installerName string) []string {
	switch {
	case v.Major < installerSinceMajor:
		return []string{installerName}
	case v.Major <= forgeJarOnClasspathUntil:
		return []string{fmt.Sprintf("libraries/net/minecraftforge/forge/%s/forge-%s.jar", v.Short, v.Short)}
	default:
		return nil
	}
}

type promotions struct {
	Promos map[string]string `json:"promos"`
}

// Recommended returns the recommended forge build for game, or the latest one
// when nothing is recommended.
func (i *Installer) Recommended(ctx context.Context, game string) (string, error) {
	var p promotions
	if err := i.client.FetchJSON(ctx, i.opts.PromotionsURL, &p); err != nil {
		return "", errutils.Wrap(err, "fetching forge promotions")
	}
	for _, suffix := range []string{"-recommended", "-latest"} {
		if v := p.Promos[game+suffix]; v != "" {
			return v, nil
		}
	}
	return "", errutils.ErrNoLoaderVersionFor("Forge", game)
}

var snapshotID = regexp.MustCompile(`^\d{2}w\d+[a-z]+$`)

// NeoForgePrefix is the version prefix NeoForge builds for game start with:
// "20.4." for 1.20.4, "21.0." for 1.21 and "0.24w14a." for snapshots.
func NeoForgePrefix(game string) string {
	if snapshotID.MatchString(game) {
		return "0." + game + "."
	}
	v := strings.TrimPrefix(game, "1.")
	if !strings.Contains(v, ".") {
		v += ".0"
	}
	return v + "."
}

// PickNeoForge returns the newest entry of versions built for game. The maven
// listing is oldest first.
func PickNeoForge(versions []string, game string) (string, bool) {
	prefix := NeoForgePrefix(game)
	for i := len(versions) - 1; i >= 0; i-- {
		if strings.HasPrefix(versions[i], prefix) {
			return versions[i], true
		}
	}
	return "", false
}
