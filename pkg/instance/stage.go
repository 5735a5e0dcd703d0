package instance

import (
	"fmt"
	"strings"
)

// Stage is a part of instance creation that RedoStage can repeat.
type Stage string

const (
	StageManifest    Stage = "manifest"
	StageVersionJSON Stage = "version_json"
	StageLibraries   Stage = "libraries"
	StageAssets      Stage = "assets"
	StageJar         Stage = "jar"
)

// ParseStage accepts the stage names used on the command line.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(strings.ToLower(strings.TrimSpace(s))); st {
	case StageManifest, StageVersionJSON, StageLibraries, StageAssets, StageJar:
		return st, nil
	default:
		return "", fmt.Errorf("unknown stage %q, must be one of: libraries, assets, jar", s)
	}
}
