package packman

import (
	"context"
	"fmt"

	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

// Registry fetches the published registry document from url.
func (d *Downloader) Registry(ctx context.Context, url string) (pack.Registry, error) {
	var registry pack.Registry
	res, err := d.client.R().
		SetContext(ctx).
		SetResult(&registry).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch registry %s: %s", url, res.Status())
	}
	return registry, nil
}
