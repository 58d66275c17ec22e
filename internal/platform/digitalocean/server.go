package digitalocean

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digitalocean/godo"
)

// GetServer returns the droplet with the given id, or nil if it does not exist.
func (c *RealClient) GetServer(ctx context.Context, id string) (*Server, error) {
	dropletID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	droplet, _, err := c.client.Droplets.Get(ctx, dropletID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get droplet %s: %w", id, err)
	}
	return fromDroplet(droplet), nil
}

// CreateServer creates a droplet. It returns as soon as the API accepted
// the request; the droplet is usually still in the "new" state.
func (c *RealClient) CreateServer(ctx context.Context, opts ServerCreateOpts) (*Server, error) {
	req, err := buildDropletCreateRequest(opts)
	if err != nil {
		return nil, err
	}

	droplet, _, err := c.client.Droplets.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create droplet: %w", err)
	}
	return fromDroplet(droplet), nil
}

// DestroyServer deletes the droplet. A droplet that is already gone is not an error.
func (c *RealClient) DestroyServer(ctx context.Context, id string) error {
	dropletID, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := c.client.Droplets.Delete(ctx, dropletID); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete droplet %s: %w", id, err)
	}
	return nil
}

func buildDropletCreateRequest(opts ServerCreateOpts) (*godo.DropletCreateRequest, error) {
	imageID, err := parseID(opts.ImageID)
	if err != nil {
		return nil, fmt.Errorf("invalid image id: %w", err)
	}

	keys := make([]godo.DropletCreateSSHKey, 0, len(opts.SSHKeyIDs))
	for _, kid := range opts.SSHKeyIDs {
		id, err := parseID(kid)
		if err != nil {
			// Not numeric: DigitalOcean also accepts fingerprints.
			keys = append(keys, godo.DropletCreateSSHKey{Fingerprint: kid})
			continue
		}
		keys = append(keys, godo.DropletCreateSSHKey{ID: id})
	}

	return &godo.DropletCreateRequest{
		Name:              opts.Name,
		Region:            opts.Region,
		Size:              opts.Size,
		Image:             godo.DropletCreateImage{ID: imageID},
		SSHKeys:           keys,
		Backups:           opts.Backups,
		PrivateNetworking: opts.PrivateNetworking,
		UserData:          opts.UserData,
		Tags:              opts.Tags,
	}, nil
}

func fromDroplet(d *godo.Droplet) *Server {
	if d == nil {
		return nil
	}
	s := &Server{
		ID:    strconv.Itoa(d.ID),
		Name:  d.Name,
		State: d.Status,
	}
	if d.Region != nil {
		s.Region = d.Region.Slug
	}
	return s
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	return n, nil
}
