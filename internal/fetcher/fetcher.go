// Package fetcher downloads remote resources politely: per-host rate limits,
// a descriptive User-Agent and retries on throttling or server errors.
package fetcher

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when the server answers 404 or 410.
var ErrNotFound = eris.New("fetcher: not found")

// Payload is a fully read response.
type Payload struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// Fetch fetches the URL and reads the whole body.
	Fetch(ctx context.Context, url string) (*Payload, error)
}
