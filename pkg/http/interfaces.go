//go:generate mockgen -destination=mocks/http.go . Client
package http

import (
	"context"
)

// Client defines the interface for HTTP operations.
type Client interface {
	// FetchBytes downloads url into memory.
	FetchBytes(ctx context.Context, url string) ([]byte, error)

	// FetchString downloads url and returns the body as text.
	FetchString(ctx context.Context, url string) (string, error)

	// FetchJSON downloads url and decodes the JSON body into v.
	FetchJSON(ctx context.Context, url string, v any) error

	// FetchToFile streams url into filePath, replacing it only once the body is complete.
	FetchToFile(ctx context.Context, url string, filePath string) error
}
