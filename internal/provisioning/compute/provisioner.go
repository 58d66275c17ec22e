package compute

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/util/naming"
	"github.com/imamik/dodriver/internal/util/ptr"
	"github.com/imamik/dodriver/internal/util/tags"
)

// Creator is recorded in machine locations. DigitalOcean droplets carry no
// creator identity.
const Creator = ""

// BootstrapRecorder keeps the options a droplet was created with.
type BootstrapRecorder interface {
	SaveBootstrap(ctx context.Context, machine string, opts config.BootstrapOptions) error
}

// Provisioner allocates droplets for machine specs.
type Provisioner struct {
	resolver *Resolver
	recorder BootstrapRecorder
	now      func() time.Time
}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner(resolver *Resolver) *Provisioner {
	return &Provisioner{resolver: resolver, now: time.Now}
}

// WithRecorder makes the provisioner record resolved options of every
// droplet it creates.
func (p *Provisioner) WithRecorder(r BootstrapRecorder) *Provisioner {
	p.recorder = r
	return p
}

// Name returns the phase name used in events.
func (p *Provisioner) Name() string {
	return phase
}

// Allocate makes sure spec has a live droplet. A recorded server that still
// exists and is not archived is kept; otherwise the options are resolved and
// a droplet is created through the action handler. On success the location
// is recorded on spec. In dry-run mode nothing is created and spec is left
// as it was.
//
// DigitalOcean has no floating IPs, so none are converged.
func (p *Provisioner) Allocate(ctx *provisioning.Context, spec *provisioning.MachineSpec, opts provisioning.MachineOptions) error {
	if id := spec.ServerID(); id != "" {
		server, err := ctx.Infra.GetServer(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get droplet %s: %w", id, err)
		}
		if server != nil && server.State != digitalocean.StateArchive {
			provisioning.LogResourceExists(ctx.Observer, phase, "droplet", spec.Name, server.ID)
			return nil
		}
	}

	bootstrap, err := p.resolver.Resolve(ctx, spec, opts)
	if err != nil {
		return err
	}
	createOpts := ServerCreateOpts(bootstrap)

	var created *digitalocean.Server
	err = ctx.Actions.PerformAction(ctx, naming.CreateMachine(spec.Name, ctx.DriverURL), func(c context.Context) error {
		provisioning.LogResourceCreating(ctx.Observer, phase, "droplet", spec.Name)
		server, err := ctx.Infra.CreateServer(c, createOpts)
		if err != nil {
			return err
		}
		created = server
		provisioning.LogResourceCreated(ctx.Observer, phase, "droplet", spec.Name, server.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to allocate machine %s: %w", spec.Name, err)
	}
	if created == nil {
		return nil
	}

	spec.Location = &provisioning.Location{
		DriverURL:     ctx.DriverURL,
		DriverVersion: ctx.DriverVersion,
		ServerID:      created.ID,
		Creator:       Creator,
		AllocatedAt:   p.now().UTC(),
	}

	if p.recorder != nil {
		if err := p.recorder.SaveBootstrap(ctx, spec.Name, bootstrap); err != nil {
			// The droplet exists; losing the record only affects reporting.
			provisioning.LogWarning(ctx.Observer, phase, "failed to record bootstrap options", map[string]string{
				"machine": spec.Name,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// ServerCreateOpts converts resolved bootstrap options into a create request.
func ServerCreateOpts(o config.BootstrapOptions) digitalocean.ServerCreateOpts {
	keyIDs := make([]string, len(o.SSHKeyIDs))
	for i, id := range o.SSHKeyIDs {
		keyIDs[i] = string(id)
	}
	return digitalocean.ServerCreateOpts{
		Name:              o.Name,
		Region:            string(o.RegionID),
		Size:              string(o.FlavorID),
		ImageID:           string(o.ImageID),
		SSHKeyIDs:         keyIDs,
		Tags:              tags.Format(o.Tags),
		Backups:           ptr.Deref(o.BackupsEnabled),
		PrivateNetworking: ptr.Deref(o.PrivateNetworking),
		UserData:          o.UserData,
	}
}
