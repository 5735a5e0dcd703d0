package download

import (
	"context"

	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

// Manager downloads remote files to fixed destinations, verifying checksums and
// reusing files that are already present and intact.
type Manager interface {
	// FetchAll downloads all items through the orchestrator and returns a map
	// from Item.ID to the local file path.
	FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error)

	// Fetch downloads a single item and returns its local file path.
	Fetch(ctx context.Context, item Item) (string, error)
}

// Item represents one remote file to download.
type Item struct {
	ID         string // stable identifier, unique within a batch
	URL        string // source URL
	Path       string // destination file path
	Checksum   string // optional hex SHA-1 (40 chars) or SHA-256 (64 chars)
	Executable bool   // mark the file executable once in place
}

// Options control a FetchAll batch.
type Options struct {
	Concurrency int // parallel downloads; orchestrator.DefaultLimit when <= 0
	Mode        orchestrator.Mode
	Progress    chan<- orchestrator.Event
	Phase       string
	Label       string
}
