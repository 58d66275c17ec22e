package digitalocean

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digitalocean/godo"
)

// ListImages returns every image visible to the account.
func (c *RealClient) ListImages(ctx context.Context) ([]Image, error) {
	images, err := listAll(ctx, c.timeouts.PageSize, c.client.Images.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	out := make([]Image, 0, len(images))
	for _, img := range images {
		out = append(out, Image{
			ID:           strconv.Itoa(img.ID),
			Name:         img.Name,
			Distribution: img.Distribution,
			Slug:         img.Slug,
		})
	}
	return out, nil
}

// ListFlavors returns every droplet size.
func (c *RealClient) ListFlavors(ctx context.Context) ([]Flavor, error) {
	sizes, err := listAll(ctx, c.timeouts.PageSize, c.client.Sizes.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	out := make([]Flavor, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, Flavor{
			ID:     s.Slug,
			Name:   FlavorName(s.Memory),
			Memory: s.Memory,
			VCPUs:  s.Vcpus,
		})
	}
	return out, nil
}

// ListRegions returns every region.
func (c *RealClient) ListRegions(ctx context.Context) ([]Region, error) {
	regions, err := listAll(ctx, c.timeouts.PageSize, c.client.Regions.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, Region{ID: r.Slug, Name: r.Name, Available: r.Available})
	}
	return out, nil
}

// ListKeys returns every SSH key registered with the account.
func (c *RealClient) ListKeys(ctx context.Context) ([]Key, error) {
	keys, err := listAll(ctx, c.timeouts.PageSize, c.client.Keys.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list ssh keys: %w", err)
	}
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		out = append(out, fromGodoKey(k))
	}
	return out, nil
}

// FlavorName names a size after its memory in MB: 512 -> "512MB", 2048 -> "2GB".
func FlavorName(memoryMB int) string {
	if memoryMB >= 1024 && memoryMB%1024 == 0 {
		return fmt.Sprintf("%dGB", memoryMB/1024)
	}
	return fmt.Sprintf("%dMB", memoryMB)
}

func fromGodoKey(k godo.Key) Key {
	return Key{
		ID:          strconv.Itoa(k.ID),
		Name:        k.Name,
		Fingerprint: k.Fingerprint,
		PublicKey:   k.PublicKey,
	}
}

// listAll walks every page of a godo list call.
func listAll[T any](
	ctx context.Context,
	perPage int,
	list func(context.Context, *godo.ListOptions) ([]T, *godo.Response, error),
) ([]T, error) {
	var all []T
	opt := &godo.ListOptions{Page: 1, PerPage: perPage}
	for {
		items, resp, err := list(ctx, opt)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			return all, nil
		}
		page, err := resp.Links.CurrentPage()
		if err != nil {
			return nil, fmt.Errorf("failed to read page number: %w", err)
		}
		opt.Page = page + 1
	}
}
