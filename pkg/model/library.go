package model

// Library is one entry of a version's libraries list. Fabric-style entries carry
// only Name and URL; Mojang-style entries carry Downloads.
type Library struct {
	Name      string            `json:"name,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Extract   *LibraryExtract   `json:"extract,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	URL       string            `json:"url,omitempty"`
	// ClientReq is set by legacy Forge profiles; false marks server-only libraries.
	ClientReq *bool `json:"clientreq,omitempty"`
}

// LibraryDownloads holds the primary artifact and classifier artifacts.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a downloadable library file.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// LibraryExtract lists path prefixes removed after unpacking natives.
type LibraryExtract struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Rule allows or disallows a library, optionally only on a given OS.
type Rule struct {
	Action string  `json:"action"`
	OS     *RuleOS `json:"os,omitempty"`
}

// RuleOS constrains a rule to an OS name and optionally an architecture.
type RuleOS struct {
	Name string `json:"name,omitempty"`
	Arch string `json:"arch,omitempty"`
}

const (
	RuleAllow    = "allow"
	RuleDisallow = "disallow"
)
