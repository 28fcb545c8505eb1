package fetcher

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// FetchJSON downloads url and decodes the body into a T.
func FetchJSON[T any](ctx context.Context, f Fetcher, url string) (*T, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	var obj T
	if err := json.NewDecoder(body).Decode(&obj); err != nil {
		return nil, eris.Wrapf(err, "json: decode %s", url)
	}
	return &obj, nil
}
