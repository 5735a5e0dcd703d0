package fabric

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/tidwall/gjson"
)

// Backend names, as accepted by --backend.
const (
	BackendFabric        = "fabric"
	BackendQuilt         = "quilt"
	BackendLegacyFabric  = "legacyfabric"
	BackendBabric        = "babric"
	BackendOrnitheFabric = "ornithemc"
	BackendOrnitheQuilt  = "ornithemc-quilt"
	BackendCursedLegacy  = "cursedlegacy"
)

// Meta API roots.
const (
	FabricMetaURL       = "https://meta.fabricmc.net/v2"
	QuiltMetaURL        = "https://meta.quiltmc.org/v3"
	LegacyFabricMetaURL = "https://meta.legacyfabric.net/v2"
	BabricMetaURL       = "https://meta.babric.glass-launcher.net/v2"
	OrnitheMetaURL      = "https://meta.ornithemc.net/v3"

	CursedLegacyCommitsURL = "https://api.github.com/repos/minecraft-cursed-legacy/Cursed-fabric-loader/commits"
	CursedLegacyGame       = "b1.7.3"
	defaultCursedCommit    = "5e8a1e8"
)

var displayNames = map[string]string{
	BackendFabric:        "Fabric",
	BackendQuilt:         "Quilt",
	BackendLegacyFabric:  "Fabric (Legacy)",
	BackendBabric:        "Fabric (Babric)",
	BackendOrnitheFabric: "Fabric (OrnitheMC)",
	BackendOrnitheQuilt:  "Quilt (OrnitheMC)",
	BackendCursedLegacy:  "Fabric (Cursed Legacy)",
}

// DisplayName is the human name recorded in mod_type_info.backend_implementation.
func DisplayName(backend string) string {
	if n, ok := displayNames[backend]; ok {
		return n
	}
	return backend
}

// IsQuiltBackend reports whether backend serves Quilt rather than Fabric.
func IsQuiltBackend(backend string) bool {
	return backend == BackendQuilt || backend == BackendOrnitheQuilt
}

// Backend is one loader metadata service.
type Backend interface {
	Name() string
	// ListLoaderVersions returns loader versions for game, newest first.
	ListLoaderVersions(ctx context.Context, game string, isServer bool) ([]string, error)
	// FetchProfile returns the launch profile JSON for a loader version.
	FetchProfile(ctx context.Context, game, loaderVersion string, isServer bool) ([]byte, error)
}

type listEntry struct {
	Loader struct {
		Version string `json:"version"`
	} `json:"loader"`
}

func side(isServer bool) string {
	if isServer {
		return "server"
	}
	return "client"
}

func profileKind(isServer bool) string {
	if isServer {
		return "server"
	}
	return "profile"
}

func fetchListing(ctx context.Context, client http.Client, url string) ([]string, error) {
	var entries []listEntry
	if err := client.FetchJSON(ctx, url, &entries); err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Loader.Version != "" {
			versions = append(versions, e.Loader.Version)
		}
	}
	return versions, nil
}

// metaBackend speaks the fabric-meta API shared by Fabric, Quilt, LegacyFabric and Babric.
type metaBackend struct {
	name    string
	baseURL string
	client  http.Client
}

// NewMetaBackend creates a backend for a fabric-meta compatible service.
func NewMetaBackend(name, baseURL string, client http.Client) Backend {
	return &metaBackend{name: name, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *metaBackend) Name() string { return b.name }

func (b *metaBackend) ListLoaderVersions(ctx context.Context, game string, _ bool) ([]string, error) {
	return fetchListing(ctx, b.client, fmt.Sprintf("%s/versions/loader/%s", b.baseURL, game))
}

func (b *metaBackend) FetchProfile(ctx context.Context, game, loaderVersion string, isServer bool) ([]byte, error) {
	url := fmt.Sprintf("%s/versions/loader/%s/%s/%s/json", b.baseURL, game, loaderVersion, profileKind(isServer))
	return b.client.FetchBytes(ctx, url)
}

// ornitheBackend serves old versions whose metadata is split per side, so every
// request is tried against /<game> and then /<game>-<side>.
type ornitheBackend struct {
	name    string
	flavor  string
	baseURL string
	client  http.Client
}

// NewOrnitheBackend creates an OrnitheMC backend; flavor is "fabric" or "quilt".
func NewOrnitheBackend(name, flavor, baseURL string, client http.Client) Backend {
	return &ornitheBackend{name: name, flavor: flavor, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *ornitheBackend) Name() string { return b.name }

func (b *ornitheBackend) gameKeys(game string, isServer bool) []string {
	return []string{game, game + "-" + side(isServer)}
}

func (b *ornitheBackend) ListLoaderVersions(ctx context.Context, game string, isServer bool) ([]string, error) {
	var lastErr error
	for _, key := range b.gameKeys(game, isServer) {
		url := fmt.Sprintf("%s/versions/%s-loader/%s", b.baseURL, b.flavor, key)
		versions, err := fetchListing(ctx, b.client, url)
		switch {
		case err == nil && len(versions) > 0:
			return versions, nil
		case err != nil && !errutils.IsNotFound(err):
			return nil, err
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (b *ornitheBackend) FetchProfile(ctx context.Context, game, loaderVersion string, isServer bool) ([]byte, error) {
	var lastErr error
	for _, key := range b.gameKeys(game, isServer) {
		url := fmt.Sprintf("%s/versions/%s-loader/%s/%s/%s/json", b.baseURL, b.flavor, key, loaderVersion, profileKind(isServer))
		body, err := b.client.FetchBytes(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

//go:embed cursed_legacy.json
var cursedLegacyTemplate string

const commitPlaceholder = "INSERT_COMMIT"

// cursedBackend has no meta service. It offers a single build for b1.7.3, pinned
// to the newest commit of the loader repository.
type cursedBackend struct {
	commitsURL string
	client     http.Client
}

// NewCursedLegacyBackend creates the commit-pinned Cursed Legacy backend.
func NewCursedLegacyBackend(commitsURL string, client http.Client) Backend {
	return &cursedBackend{commitsURL: commitsURL, client: client}
}

func (b *cursedBackend) Name() string { return BackendCursedLegacy }

func (b *cursedBackend) ListLoaderVersions(_ context.Context, game string, _ bool) ([]string, error) {
	if game != CursedLegacyGame {
		return nil, nil
	}
	return []string{CursedLegacyGame}, nil
}

func (b *cursedBackend) FetchProfile(ctx context.Context, _, _ string, _ bool) ([]byte, error) {
	commit := b.latestCommit(ctx)
	return []byte(strings.ReplaceAll(cursedLegacyTemplate, commitPlaceholder, commit)), nil
}

func (b *cursedBackend) latestCommit(ctx context.Context) string {
	body, err := b.client.FetchString(ctx, b.commitsURL)
	if err != nil {
		logger.Warn("could not fetch cursed legacy commits, using pinned commit", logger.Fields{"error": err.Error()})
		return defaultCursedCommit
	}
	sha := gjson.Get(body, "0.sha").String()
	if len(sha) < 7 {
		logger.Warn("unexpected commits response, using pinned commit")
		return defaultCursedCommit
	}
	return sha[:7]
}
