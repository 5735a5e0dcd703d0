// Package library resolves the libraries of a version against the current
// platform, downloads them and unpacks their native components.
package library

import (
	"path"
	"strings"
)

// Coordinate is a parsed "group:artifact:version[:classifier][@ext]" name.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate splits a Maven coordinate. ok is false when fewer than three
// components are present.
func ParseCoordinate(name string) (Coordinate, bool) {
	c := Coordinate{Extension: "jar"}
	if base, ext, found := strings.Cut(name, "@"); found {
		name, c.Extension = base, ext
	}
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return Coordinate{}, false
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) > 3 {
		c.Classifier = parts[3]
	}
	return c, true
}

// Path is the repository-relative location of the artifact.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	file += "." + c.Extension
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, file)
}

// GroupArtifact is "group:artifact".
func (c Coordinate) GroupArtifact() string {
	return c.Group + ":" + c.Artifact
}

// MavenPath maps a coordinate onto its repository path, e.g.
// "net.fabricmc:intermediary:1.20.1" becomes
// "net/fabricmc/intermediary/1.20.1/intermediary-1.20.1.jar". Invalid
// coordinates yield "".
func MavenPath(coordinate string) string {
	c, ok := ParseCoordinate(coordinate)
	if !ok {
		return ""
	}
	return c.Path()
}

// IsLWJGL2 reports whether name is a 2.x LWJGL artifact, the legacy graphics
// binding that newer launchers substitute.
func IsLWJGL2(name string) bool {
	c, ok := ParseCoordinate(name)
	return ok && c.Group == "org.lwjgl.lwjgl" && strings.HasPrefix(c.Version, "2.")
}
