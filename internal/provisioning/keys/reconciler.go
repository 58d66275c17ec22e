package keys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/util/keygen"
	"github.com/imamik/dodriver/internal/util/naming"
)

const phase = "keys"

// ErrKeyMismatch is returned when a remote key with the requested name
// exists but holds different key material.
var ErrKeyMismatch = errors.New("remote key does not match the local private key")

// Reconciler ensures a named key pair exists remotely.
type Reconciler struct {
	// AllowOverwrite replaces a mismatching remote key instead of failing.
	AllowOverwrite bool
}

// Ensure makes the remote key called name match the private key at
// privateKeyPath. A missing private key is generated first. All mutations
// go through the context's action handler.
func (r *Reconciler) Ensure(ctx *provisioning.Context, name, privateKeyPath string) error {
	present, err := fileExists(privateKeyPath)
	if err != nil {
		return err
	}
	if !present {
		err := ctx.Actions.PerformAction(ctx, naming.GenerateKey(privateKeyPath), func(context.Context) error {
			_, err := keygen.EnsurePrivateKey(privateKeyPath)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to generate private key: %w", err)
		}
		if present, err = fileExists(privateKeyPath); err != nil || !present {
			// Dry run: there is no key material to compare against.
			return err
		}
	}

	local, err := keygen.LoadPublicKey(privateKeyPath)
	if err != nil {
		return err
	}

	remoteKeys, err := ctx.Infra.ListKeys(ctx)
	if err != nil {
		return err
	}
	remote := findByName(remoteKeys, name)
	ctx.Metrics.CatalogLookup("keys", remote != nil)

	if remote == nil {
		return ctx.Actions.PerformAction(ctx, naming.CreateKey(name, ctx.DriverURL), func(c context.Context) error {
			return createKey(ctx.WithContext(c), name, local.AuthorizedKey)
		})
	}

	if remoteFingerprint(remote) == local.Fingerprint {
		provisioning.LogResourceExists(ctx.Observer, phase, "ssh key", name, remote.ID)
		return nil
	}
	if !r.AllowOverwrite {
		return fmt.Errorf("%w: key %q on %s has fingerprint %s, %s has %s",
			ErrKeyMismatch, name, ctx.DriverURL, remoteFingerprint(remote), privateKeyPath, local.Fingerprint)
	}

	return ctx.Actions.PerformAction(ctx, naming.ReplaceKey(name, ctx.DriverURL), func(c context.Context) error {
		pctx := ctx.WithContext(c)
		provisioning.LogResourceDeleting(pctx.Observer, phase, "ssh key", name)
		if err := pctx.Infra.DeleteKey(pctx, remote.ID); err != nil {
			return err
		}
		provisioning.LogResourceDeleted(pctx.Observer, phase, "ssh key", name)
		return createKey(pctx, name, local.AuthorizedKey)
	})
}

func createKey(ctx *provisioning.Context, name, publicKey string) error {
	provisioning.LogResourceCreating(ctx.Observer, phase, "ssh key", name)
	key, err := ctx.Infra.CreateKey(ctx, name, publicKey)
	if err != nil {
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "ssh key", name, key.ID)
	return nil
}

func findByName(keys []digitalocean.Key, name string) *digitalocean.Key {
	for i := range keys {
		if keys[i].Name == name {
			return &keys[i]
		}
	}
	return nil
}

// remoteFingerprint prefers the fingerprint reported by the API and falls
// back to hashing the registered public key.
func remoteFingerprint(k *digitalocean.Key) string {
	if k.Fingerprint != "" || k.PublicKey == "" {
		return k.Fingerprint
	}
	pub, err := keygen.ParseAuthorizedKey(k.PublicKey)
	if err != nil {
		return ""
	}
	return pub.Fingerprint
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat private key %s: %w", path, err)
	}
}
