package model

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
)

// DetailsFileName is the per-instance copy of the version JSON.
const DetailsFileName = "details.json"

// VersionDetails is the fully resolved descriptor of one game version.
type VersionDetails struct {
	AssetIndex             AssetIndexInfo   `json:"assetIndex"`
	Assets                 string           `json:"assets"`
	Downloads              Downloads        `json:"downloads"`
	ID                     string           `json:"id"`
	JavaVersion            *JavaVersionInfo `json:"javaVersion,omitempty"`
	Libraries              []Library        `json:"libraries"`
	Logging                json.RawMessage  `json:"logging,omitempty"`
	MainClass              string           `json:"mainClass"`
	MinecraftArguments     string           `json:"minecraftArguments,omitempty"`
	Arguments              *Arguments       `json:"arguments,omitempty"`
	MinimumLauncherVersion *int             `json:"minimumLauncherVersion,omitempty"`
	ReleaseTime            string           `json:"releaseTime"`
	Time                   string           `json:"time"`
	Type                   string           `json:"type"`
}

// Arguments are the 1.13+ launch arguments, kept verbatim.
type Arguments struct {
	Game []json.RawMessage `json:"game"`
	JVM  []json.RawMessage `json:"jvm"`
}

// AssetIndexInfo points at the asset index of a version.
type AssetIndexInfo struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// Downloads lists the game jars.
type Downloads struct {
	Client Download  `json:"client"`
	Server *Download `json:"server,omitempty"`
}

// Download is a single downloadable file.
type Download struct {
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// JavaVersionInfo is the runtime a version asks for.
type JavaVersionInfo struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// GameID strips the "-lwjgl3" suffix some curated entries carry.
func (d *VersionDetails) GameID() string {
	return strings.TrimSuffix(d.ID, "-lwjgl3")
}

// IsSpecialLWJGL3 reports whether the curated entry swapped in LWJGL 3.
func (d *VersionDetails) IsSpecialLWJGL3() bool {
	return strings.HasSuffix(d.ID, "-lwjgl3")
}

// Fix fills fields older manifests leave out.
func (d *VersionDetails) Fix() {
	if d.MinimumLauncherVersion == nil {
		v := 3
		d.MinimumLauncherVersion = &v
	}
}

// IsLegacy reports whether the version is 1.5.2 or older.
func (d *VersionDetails) IsLegacy() bool {
	return d.IsAtOrBefore(ReleaseTime1_5_2)
}

// IsAtOrBefore compares the release time with cutoff. Unparseable times are logged
// and compare false.
func (d *VersionDetails) IsAtOrBefore(cutoff string) bool {
	released, limit, ok := parseTimes(d.ReleaseTime, cutoff)
	return ok && !released.After(limit)
}

// IsAtOrAfter compares the release time with cutoff. Unparseable times are logged
// and compare false.
func (d *VersionDetails) IsAtOrAfter(cutoff string) bool {
	released, limit, ok := parseTimes(d.ReleaseTime, cutoff)
	return ok && !released.Before(limit)
}

func parseTimes(a, b string) (time.Time, time.Time, bool) {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA != nil || errB != nil {
		logger.Error("could not parse date/time", logger.Fields{"left": a, "right": b})
		return time.Time{}, time.Time{}, false
	}
	return ta, tb, true
}

// JavaMajor returns the requested runtime major version, defaulting to 8.
func (d *VersionDetails) JavaMajor() int {
	if d.JavaVersion == nil || d.JavaVersion.MajorVersion == 0 {
		return 8
	}
	return d.JavaVersion.MajorVersion
}

// LoadVersionDetails reads <dir>/details.json and applies Fix.
func LoadVersionDetails(dir string) (*VersionDetails, error) {
	path := filepath.Join(dir, DetailsFileName)
	var d VersionDetails
	if err := readJSONFile(path, &d); err != nil {
		return nil, err
	}
	d.Fix()
	return &d, nil
}

// Save writes details.json into dir.
func (d *VersionDetails) Save(dir string) error {
	return fsutil.WriteJSONAtomic(filepath.Join(dir, DetailsFileName), d)
}
