package compute

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/util/naming"
	"github.com/imamik/dodriver/internal/util/tags"
)

const phase = "compute"

// Defaults applied when the options leave a lookup unspecified.
const (
	DefaultImageDistribution = "CentOS"
	DefaultImageName         = "6.5 x64"
	DefaultFlavorName        = "512MB"
	DefaultRegionName        = "San Francisco 1"
)

// KeyEnsurer reconciles a named key against a local private key file.
type KeyEnsurer interface {
	Ensure(ctx *provisioning.Context, name, privateKeyPath string) error
}

// DefaultKeySource supplies a key name when no key file is configured.
type DefaultKeySource interface {
	EnsureDefault(ctx *provisioning.Context, preferred string) (string, error)
}

// Resolver resolves bootstrap options to provider ids.
type Resolver struct {
	Keys       KeyEnsurer
	DefaultKey DefaultKeySource

	// Host and User feed the BootstrapHost and BootstrapUser default tags.
	Host string
	User string
}

// NewResolver creates a resolver tagging machines with the local host and user.
func NewResolver(keys KeyEnsurer, defaultKey DefaultKeySource) *Resolver {
	host, user := tags.Local()
	return &Resolver{
		Keys:       keys,
		DefaultKey: defaultKey,
		Host:       host,
		User:       user,
	}
}

// Resolve returns a copy of opts.Bootstrap in which image, flavor, region and
// SSH keys are concrete ids and the name is the machine's name. Catalogs are
// queried on every call. On failure the zero value is returned.
func (r *Resolver) Resolve(ctx *provisioning.Context, spec *provisioning.MachineSpec, opts provisioning.MachineOptions) (config.BootstrapOptions, error) {
	o := opts.Bootstrap.Clone()

	if err := r.resolveKeyName(ctx, &o); err != nil {
		return config.BootstrapOptions{}, err
	}

	machineTags := tags.Default(spec.Name, spec.ID, r.Host, r.User)
	maps.Copy(machineTags, o.Tags)
	o.Tags = machineTags

	steps := []func(*provisioning.Context, *config.BootstrapOptions) error{
		resolveImage,
		resolveFlavor,
		resolveRegion,
		resolveKeyIDs,
	}
	for _, step := range steps {
		if err := step(ctx, &o); err != nil {
			return config.BootstrapOptions{}, err
		}
	}

	if o.Name != "" && o.Name != spec.Name {
		if strictName(ctx) {
			return config.BootstrapOptions{}, fmt.Errorf("%w: %q is not %q", ErrNameConflict, o.Name, spec.Name)
		}
		provisioning.LogWarning(ctx.Observer, phase, "bootstrap option name overridden by machine name", map[string]string{
			"requested": o.Name,
			"machine":   spec.Name,
		})
	}
	o.Name = spec.Name

	return o, nil
}

func (r *Resolver) resolveKeyName(ctx *provisioning.Context, o *config.BootstrapOptions) error {
	if o.KeyPath != "" {
		if o.KeyName == "" {
			o.KeyName = naming.KeyName(o.KeyPath)
		}
		if err := r.Keys.Ensure(ctx, o.KeyName, o.KeyPath); err != nil {
			return fmt.Errorf("failed to ensure key pair %s: %w", o.KeyName, err)
		}
		return nil
	}

	name, err := r.DefaultKey.EnsureDefault(ctx, o.KeyName)
	if err != nil {
		return err
	}
	o.KeyName = name
	return nil
}

func resolveImage(ctx *provisioning.Context, o *config.BootstrapOptions) error {
	if o.ImageID != "" {
		return nil
	}
	if o.ImageDistribution == "" && o.ImageName == "" {
		o.ImageDistribution = DefaultImageDistribution
		o.ImageName = DefaultImageName
	}

	images, err := ctx.Infra.ListImages(ctx)
	if err != nil {
		return err
	}

	// An unset distribution only matches images without one.
	byDistribution := filter(images, func(i digitalocean.Image) bool { return i.Distribution == o.ImageDistribution })
	ctx.Metrics.CatalogLookup("distributions", len(byDistribution) > 0)
	if len(byDistribution) == 0 {
		return &LookupError{
			Kind:       ErrNoMatchingDistribution,
			Field:      "image_distribution",
			Value:      o.ImageDistribution,
			Provider:   ctx.DriverURL,
			Candidates: distinct(images, func(i digitalocean.Image) string { return i.Distribution }),
		}
	}
	images = byDistribution

	if o.ImageName != "" {
		byName := filter(images, func(i digitalocean.Image) bool { return i.Name == o.ImageName })
		ctx.Metrics.CatalogLookup("images", len(byName) > 0)
		if len(byName) == 0 {
			err := &LookupError{
				Kind:       ErrNoMatchingImage,
				Field:      "image_name",
				Value:      o.ImageName,
				Provider:   ctx.DriverURL,
				Candidates: distinct(images, func(i digitalocean.Image) string { return i.Name }),
			}
			err.Scope = fmt.Sprintf("distribution %q", o.ImageDistribution)
			return err
		}
		images = byName
	}

	warnAmbiguous(ctx, "image", images, func(i digitalocean.Image) string { return i.ID })
	o.ImageID = config.ID(images[0].ID)
	return nil
}

func resolveFlavor(ctx *provisioning.Context, o *config.BootstrapOptions) error {
	if o.FlavorID != "" {
		return nil
	}
	// size_id is what the legacy credential file calls a flavor id.
	if o.SizeID != "" {
		o.FlavorID = o.SizeID
		return nil
	}
	if o.FlavorName == "" {
		o.FlavorName = DefaultFlavorName
	}

	flavors, err := ctx.Infra.ListFlavors(ctx)
	if err != nil {
		return err
	}
	matches := filter(flavors, func(f digitalocean.Flavor) bool { return f.Name == o.FlavorName })
	ctx.Metrics.CatalogLookup("flavors", len(matches) > 0)
	if len(matches) == 0 {
		return &LookupError{
			Kind:       ErrNoMatchingFlavor,
			Field:      "flavor_name",
			Value:      o.FlavorName,
			Provider:   ctx.DriverURL,
			Candidates: distinct(flavors, func(f digitalocean.Flavor) string { return f.Name }),
		}
	}

	warnAmbiguous(ctx, "flavor", matches, func(f digitalocean.Flavor) string { return f.ID })
	o.FlavorID = config.ID(matches[0].ID)
	return nil
}

func resolveRegion(ctx *provisioning.Context, o *config.BootstrapOptions) error {
	if o.RegionID != "" {
		return nil
	}
	if o.RegionName == "" {
		o.RegionName = DefaultRegionName
	}

	regions, err := ctx.Infra.ListRegions(ctx)
	if err != nil {
		return err
	}
	matches := filter(regions, func(r digitalocean.Region) bool { return r.Name == o.RegionName })
	ctx.Metrics.CatalogLookup("regions", len(matches) > 0)
	if len(matches) == 0 {
		return &LookupError{
			Kind:       ErrNoMatchingRegion,
			Field:      "region_name",
			Value:      o.RegionName,
			Provider:   ctx.DriverURL,
			Candidates: distinct(regions, func(r digitalocean.Region) string { return r.Name }),
		}
	}

	warnAmbiguous(ctx, "region", matches, func(r digitalocean.Region) string { return r.ID })
	o.RegionID = config.ID(matches[0].ID)
	return nil
}

// resolveKeyIDs checks the resolved key name against the account even when
// ssh_key_ids is already set, so a misnamed key fails early.
func resolveKeyIDs(ctx *provisioning.Context, o *config.BootstrapOptions) error {
	keys, err := ctx.Infra.ListKeys(ctx)
	if err != nil {
		return err
	}
	matches := filter(keys, func(k digitalocean.Key) bool { return k.Name == o.KeyName })
	ctx.Metrics.CatalogLookup("keys", len(matches) > 0)
	if len(matches) == 0 {
		return &LookupError{
			Kind:       ErrNoMatchingKey,
			Field:      "key_name",
			Value:      o.KeyName,
			Provider:   ctx.DriverURL,
			Candidates: distinct(keys, func(k digitalocean.Key) string { return k.Name }),
		}
	}

	if len(o.SSHKeyIDs) == 0 {
		warnAmbiguous(ctx, "key", matches, func(k digitalocean.Key) string { return k.ID })
		o.SSHKeyIDs = []config.ID{config.ID(matches[0].ID)}
	}
	return nil
}

func strictName(ctx *provisioning.Context) bool {
	if ctx.Config == nil {
		return false
	}
	return ctx.Config.Config().DriverOptions.ComputeOptions.StrictName
}

// warnAmbiguous reports a lookup that matched several entries. The first
// entry wins; catalog order is whatever the API returned.
func warnAmbiguous[T any](ctx *provisioning.Context, kind string, matches []T, id func(T) string) {
	if len(matches) < 2 {
		return
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = id(m)
	}
	provisioning.LogWarning(ctx.Observer, phase, fmt.Sprintf("ambiguous %s lookup, using the first match", kind), map[string]string{
		"kind":       kind,
		"chosen":     ids[0],
		"candidates": strings.Join(ids, ","),
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func distinct[T any](items []T, value func(T) string) []string {
	var out []string
	for _, item := range items {
		v := value(item)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
