package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"
)

// CreateKey registers a public key under name.
func (c *RealClient) CreateKey(ctx context.Context, name, publicKey string) (*Key, error) {
	key, _, err := c.client.Keys.Create(ctx, &godo.KeyCreateRequest{
		Name:      name,
		PublicKey: publicKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh key: %w", err)
	}
	k := fromGodoKey(*key)
	return &k, nil
}

// DeleteKey deletes the SSH key with the given id.
func (c *RealClient) DeleteKey(ctx context.Context, id string) error {
	keyID, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := c.client.Keys.DeleteByID(ctx, keyID); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete ssh key %s: %w", id, err)
	}
	return nil
}
