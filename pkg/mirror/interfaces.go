//go:generate mockgen -destination=mocks/mirror.go . Fetcher

package mirror

import "context"

// Fetcher defines the interface for retrieving a single raw file pinned to a
// commit from a chain of content-delivery mirrors.
type Fetcher interface {
	// Fetch returns the file bytes for (repo, ref, path). It returns
	// errors.ErrNotFound once every mirror has been exhausted without a
	// success, and the context error when cancellation is observed.
	Fetch(ctx context.Context, repo, ref, path string) ([]byte, error)
}
