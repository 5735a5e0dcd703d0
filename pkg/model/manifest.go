// Package model holds the JSON shapes lodestone exchanges with upstream services
// and persists inside instance directories.
package model

import (
	"strings"
	"time"

	"github.com/glorpus-work/lodestone/internal/logger"
)

// Version types found in manifests.
const (
	TypeRelease  = "release"
	TypeSnapshot = "snapshot"
	TypeOldBeta  = "old_beta"
	TypeOldAlpha = "old_alpha"
)

// Release times used as historical cutoffs.
const (
	ReleaseTimeAlphaMultiplayer = "2010-08-03T19:47:25+00:00" // a1.0.15
	ReleaseTime1_5_2            = "2013-04-25T15:45:00+00:00"
	ReleaseTime1_12_2           = "2017-09-18T08:39:46+00:00"
	ReleaseTimeOfficialFabric   = "2018-10-24T10:52:16+00:00"
	ReleaseTimeNeoForge         = "2023-09-20T09:02:57+00:00"
)

// Manifest is the merged list of installable versions.
type Manifest struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

// Latest names the newest release and snapshot ids.
type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Version is one manifest entry.
type Version struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

// Find looks up a version by exact id.
func (m *Manifest) Find(id string) (*Version, bool) {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i], true
		}
	}
	return nil, false
}

// LatestRelease returns the entry named by latest.release.
func (m *Manifest) LatestRelease() (*Version, bool) {
	return m.Find(m.Latest.Release)
}

// LatestSnapshot returns the entry named by latest.snapshot.
func (m *Manifest) LatestSnapshot() (*Version, bool) {
	return m.Find(m.Latest.Snapshot)
}

// GuessSupportsServer reports whether a version id can have a dedicated server,
// judging by the id alone.
func GuessSupportsServer(id string) bool {
	if strings.HasPrefix(id, "inf-") || strings.HasPrefix(id, "in-") || strings.HasPrefix(id, "pc-") {
		return false
	}
	if name, ok := strings.CutPrefix(id, "c0."); ok {
		if strings.Contains(name, "_st") || strings.Contains(name, "-s") {
			return false
		}
		for _, p := range []string{"0.11", "0.12", "0.13", "0.14", "0.15"} {
			if strings.HasPrefix(name, p) {
				return false
			}
		}
	}
	return true
}

// SupportsServer reports whether a dedicated server exists for the version.
// Alpha builds before multiplayer was added have none; an unparseable release
// time on an alpha counts as unsupported.
func (v *Version) SupportsServer() bool {
	if !GuessSupportsServer(v.ID) {
		return false
	}
	if !strings.HasPrefix(v.ID, "a1.") {
		return true
	}

	cutoff, _ := time.Parse(time.RFC3339, ReleaseTimeAlphaMultiplayer)
	released, err := time.Parse(time.RFC3339, v.ReleaseTime)
	if err != nil {
		logger.Error("could not parse release time", logger.Fields{"version": v.ID, "error": err.Error()})
		return false
	}
	return !released.Before(cutoff)
}
