package instance

import (
	"context"

	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// VersionSource finds manifest entries and their version JSON. It is
// implemented by *manifest.Resolver.
type VersionSource interface {
	Lookup(ctx context.Context, id string) (*model.Version, error)
	FetchDetails(ctx context.Context, v *model.Version) (*model.VersionDetails, error)
}

// LoaderRequest selects a mod loader to install. Empty Backend and Version
// let the installer choose.
type LoaderRequest struct {
	Kind    string
	Backend string
	Version string
}

// CreateOptions describe a new client instance.
type CreateOptions struct {
	Name           string
	VersionID      string
	DownloadAssets bool
	Loader         *LoaderRequest
	Progress       chan<- orchestrator.Event
}

// ServerOptions describe a new server.
type ServerOptions struct {
	Name      string
	VersionID string
	Loader    *LoaderRequest
	Progress  chan<- orchestrator.Event
}

// LoaderOptions install a loader into an existing instance or server.
type LoaderOptions struct {
	Name     string
	IsServer bool
	LoaderRequest
	Progress chan<- orchestrator.Event
}
